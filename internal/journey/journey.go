// Package journey serves the fixed copy shown along the 30-day program:
// one prompt per day and a milestone card on selected days.
package journey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TotalDays is the length of the journey.
const TotalDays = 30

var (
	// ErrInvalidDay is returned for day parameters outside 1..TotalDays.
	ErrInvalidDay = errors.New("day must be an integer between 1 and 30")

	// ErrNoMilestone is returned for valid days without a milestone.
	ErrNoMilestone = errors.New("no milestone for this day")
)

// Milestone is a celebration card.
type Milestone struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

var dailyPrompts = map[int]string{
	1:  "Day 1: You're not starting over. You're starting from experience. Show up today and let that be enough.",
	3:  "Day 3: The first two days ran on excitement. Today runs on the decision you already made.",
	5:  "Day 5: Notice one thing that felt easier than on Day 1. That is proof, not luck.",
	7:  "Day 7: One full week. Rest, move gently, and write down what kept you going.",
	10: "Day 10: Motivation is fading and that is normal. Keep the promise smaller if you must, but keep it.",
	14: "Day 14: Two weeks in. This is where most people quit and where you find out who you are becoming.",
	18: "Day 18: You are no longer trying a program. You are someone who trains.",
	21: "Day 21: Three weeks of evidence. Look back at Day 1 and tell that person what you know now.",
	25: "Day 25: Finish strong does not mean finish perfect. It means finish present.",
	28: "Day 28: Plan what comes after Day 30 today, while the habit is still loud.",
	30: "Day 30: You did what you said you would do. Remember this feeling the next time you doubt yourself.",
}

var milestones = map[int]Milestone{
	1: {
		Title:   "First Step",
		Message: "You started. Most people never get this far.",
		Icon:    "footprints",
	},
	3: {
		Title:   "Three-Day Streak",
		Message: "Three days in a row. A pattern is starting to form.",
		Icon:    "flame",
	},
	14: {
		Title:   "Halfway Hero",
		Message: "Two weeks of showing up. You are past the point where most people quit.",
		Icon:    "shield",
	},
	21: {
		Title:   "Habit Forged",
		Message: "Twenty-one days. This is not a streak anymore, it is who you are.",
		Icon:    "anvil",
	},
	30: {
		Title:   "Transformation Complete",
		Message: "Thirty days. You kept every promise that mattered. Welcome to the new baseline.",
		Icon:    "trophy",
	},
}

// ParseDay validates a raw path parameter.
func ParseDay(raw string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || day < 1 || day > TotalDays {
		return 0, ErrInvalidDay
	}
	return day, nil
}

// DailyPrompt returns the literal for a day, or a generic prompt when the day
// has none.
func DailyPrompt(day int) (string, error) {
	if day < 1 || day > TotalDays {
		return "", ErrInvalidDay
	}
	if prompt, ok := dailyPrompts[day]; ok {
		return prompt, nil
	}
	return fmt.Sprintf("Day %d: Show up for yourself today. One workout, one honest check-in, one step closer.", day), nil
}

// MilestoneFor returns the milestone card for a day.
func MilestoneFor(day int) (Milestone, error) {
	if day < 1 || day > TotalDays {
		return Milestone{}, ErrInvalidDay
	}
	m, ok := milestones[day]
	if !ok {
		return Milestone{}, ErrNoMilestone
	}
	return m, nil
}

package persona

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Slider is the 1-10 coaching style value. Clients send it as a number or a
// numeric string; anything else leaves it unset.
type Slider struct {
	Value float64
	Valid bool
}

// UnmarshalJSON never fails: a value it cannot read is simply unset.
func (s *Slider) UnmarshalJSON(data []byte) error {
	*s = Slider{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	*s = Slider{Value: value, Valid: true}
	return nil
}

// MarshalJSON writes the number, or null when unset.
func (s Slider) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// OnboardingProfile is everything the user told us during onboarding.
type OnboardingProfile struct {
	Name                string   `json:"name"`
	CoachingStyle       Slider   `json:"coachingStyle"`
	Goal                string   `json:"goal"`
	Equipment           []string `json:"equipment"`
	Injuries            []string `json:"injuries"`
	EmotionalBarriers   string   `json:"emotionalBarriers"`
	WhyStatement        string   `json:"whyStatement"`
	TrainingDaysPerWeek int      `json:"trainingDaysPerWeek"`
	Weight              float64  `json:"weight"`
	Height              float64  `json:"height"`
	Age                 float64  `json:"age"`
	FitnessLevel        string   `json:"fitnessLevel"`
	TimeAvailability    int      `json:"timeAvailability"`
}

// Streak carries the running streak counters.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest,omitempty"`
}

// ProgressSnapshot is where the user currently is in the 30-day program.
type ProgressSnapshot struct {
	CurrentDay int    `json:"currentDay"`
	Streak     Streak `json:"streak"`
}

// JournalEntry is a free-text check-in written by the user.
type JournalEntry struct {
	Content string `json:"content"`
	Date    string `json:"date,omitempty"`
}

// Input bundles the persona request payload.
type Input struct {
	Onboarding *OnboardingProfile
	Progress   *ProgressSnapshot
	Journal    []JournalEntry
}

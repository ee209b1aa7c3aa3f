// Package nutrition derives daily calorie and macro targets from body stats.
package nutrition

import (
	"errors"
	"math"
	"strings"
)

// ErrMissingOnboarding is returned when no onboarding payload was supplied.
var ErrMissingOnboarding = errors.New("onboarding data is required")

// Goal values understood by the calculator. Anything else is treated as reset.
const (
	GoalShred = "shred"
	GoalBuild = "build"
	GoalReset = "reset"
)

// Input is the subset of onboarding data the calculator reads.
// Weight and height must be in the units the protein factors assume (kg, cm).
type Input struct {
	Weight       float64 `json:"weight"`
	Height       float64 `json:"height"`
	Age          float64 `json:"age"`
	FitnessLevel string  `json:"fitnessLevel"`
	Goal         string  `json:"goal"`
}

// Targets are the derived daily targets. Meals is always an empty list.
type Targets struct {
	Calories int      `json:"calories"`
	Protein  int      `json:"protein"`
	Carbs    int      `json:"carbs"`
	Fats     int      `json:"fats"`
	Meals    []string `json:"meals"`
}

// BMR is Mifflin-St Jeor without the sex term.
func BMR(in Input) float64 {
	return 10*in.Weight + 6.25*in.Height - 5*in.Age + 5
}

// ActivityMultiplier maps a fitness level onto a TDEE multiplier.
// Unrecognized levels get the advanced multiplier.
func ActivityMultiplier(level string) float64 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "beginner":
		return 1.3
	case "intermediate":
		return 1.5
	default:
		return 1.7
	}
}

// goalAdjustment returns the calorie factor and protein grams per unit of weight.
func goalAdjustment(goal string) (calorieFactor, proteinPerUnit float64) {
	switch strings.ToLower(strings.TrimSpace(goal)) {
	case GoalShred:
		return 0.8, 1.2
	case GoalBuild:
		return 1.1, 1.0
	default:
		return 1.0, 0.9
	}
}

// Calculate computes calorie and macro targets. Carbs take whatever calories
// protein and fat leave over and are not clamped, so extreme inputs can yield
// negative carb grams.
func Calculate(in *Input) (Targets, error) {
	if in == nil {
		return Targets{}, ErrMissingOnboarding
	}

	maintenance := round(BMR(*in) * ActivityMultiplier(in.FitnessLevel))

	calorieFactor, proteinPerUnit := goalAdjustment(in.Goal)
	target := round(float64(maintenance) * calorieFactor)

	proteinGrams := round(in.Weight * proteinPerUnit)

	fatGrams := round(float64(fatCalories(target)) / 9)
	carbGrams := round(float64(carbCalories(target, proteinGrams)) / 4)

	return Targets{
		Calories: target,
		Protein:  proteinGrams,
		Carbs:    carbGrams,
		Fats:     fatGrams,
		Meals:    []string{},
	}, nil
}

// fatCalories is a fixed quarter of the target.
func fatCalories(target int) int {
	return round(float64(target) * 0.25)
}

// carbCalories is whatever protein and fat leave over. It is not clamped.
func carbCalories(target, proteinGrams int) int {
	return target - proteinGrams*4 - fatCalories(target)
}

// round is half-up toward +Inf, so -2.5 becomes -2 rather than -3.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

/*
Package program generates the fixed-length training block handed to a user
after onboarding. Generation is a pure function of equipment, goal and time
availability: the same onboarding always yields the same 30 workouts, ids included.
*/
package program

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProgramDays is the length of every generated program.
const ProgramDays = 30

const (
	defaultDuration  = 45
	recoveryDuration = 15
	accessorySets    = 3
	maxWorkingSets   = 5
)

// ErrMissingOnboarding is returned when no onboarding payload was supplied.
var ErrMissingOnboarding = errors.New("onboarding data is required")

// WorkoutType is the focus of a single day.
type WorkoutType string

const (
	UpperBody       WorkoutType = "Upper Body"
	LowerBody       WorkoutType = "Lower Body"
	FullBodyCircuit WorkoutType = "Full Body Circuit"
	ActiveRecovery  WorkoutType = "Active Recovery"
)

// Input is the subset of onboarding data the generator reads.
type Input struct {
	Equipment        []string `json:"equipment"`
	Goal             string   `json:"goal"`
	TimeAvailability int      `json:"timeAvailability"`
}

// Exercise is one prescribed movement inside a workout.
type Exercise struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Sets          int      `json:"sets"`
	Reps          string   `json:"reps"`
	Tempo         string   `json:"tempo,omitempty"`
	Rest          int      `json:"rest"`
	Substitutions []string `json:"substitutions,omitempty"`
}

// Workout is a single program day.
type Workout struct {
	ID        string      `json:"id"`
	Day       int         `json:"day"`
	Type      WorkoutType `json:"type"`
	Duration  int         `json:"duration"`
	Exercises []Exercise  `json:"exercises"`
	Completed bool        `json:"completed"`
}

// idNamespace seeds the name-based UUIDs so ids are stable across runs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ascend:program"))

// Generate builds the full program. It either returns all ProgramDays
// workouts or an error; there are no partial programs.
func Generate(in *Input) ([]Workout, error) {
	if in == nil {
		return nil, ErrMissingOnboarding
	}

	tier := classifyEquipment(in.Equipment)
	duration := in.TimeAvailability
	if duration <= 0 {
		duration = defaultDuration
	}

	workouts := make([]Workout, 0, ProgramDays)
	for day := 1; day <= ProgramDays; day++ {
		workouts = append(workouts, buildDay(day, tier, duration))
	}

	return workouts, nil
}

// DayType maps a program day onto the weekly split.
func DayType(day int) WorkoutType {
	switch day % 7 {
	case 1, 4:
		return UpperBody
	case 2, 5:
		return LowerBody
	case 3, 6:
		return FullBodyCircuit
	default:
		return ActiveRecovery
	}
}

// Week is the 1-based program week a day belongs to.
func Week(day int) int {
	return (day + 6) / 7
}

// WorkingSets is the progressive set count for primary movements.
func WorkingSets(week int) int {
	return min(3+week/2, maxWorkingSets)
}

func buildDay(day int, tier equipmentTier, duration int) Workout {
	kind := DayType(day)

	if kind == ActiveRecovery {
		return Workout{
			ID:        workoutID(day),
			Day:       day,
			Type:      ActiveRecovery,
			Duration:  recoveryDuration,
			Exercises: []Exercise{newExercise(day, 0, recoveryMovement, 1)},
		}
	}

	working := WorkingSets(Week(day))
	moves := tier.movementsFor(kind)

	exercises := make([]Exercise, 0, len(moves))
	for slot, m := range moves {
		sets := accessorySets
		if m.primary {
			sets = working
		}
		exercises = append(exercises, newExercise(day, slot, m, sets))
	}

	return Workout{
		ID:        workoutID(day),
		Day:       day,
		Type:      kind,
		Duration:  duration,
		Exercises: exercises,
	}
}

func newExercise(day, slot int, m movement, sets int) Exercise {
	var subs []string
	if len(m.substitutions) > 0 {
		subs = append([]string(nil), m.substitutions...)
	}
	return Exercise{
		ID:            uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("day-%d/exercise-%d/%s", day, slot, m.name))).String(),
		Name:          m.name,
		Sets:          sets,
		Reps:          m.reps,
		Tempo:         m.tempo,
		Rest:          m.rest,
		Substitutions: subs,
	}
}

func workoutID(day int) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("day-%d", day))).String()
}

/* =================================================================================
								EQUIPMENT TIERS
=================================================================================*/

type equipmentTier int

const (
	tierBodyweight equipmentTier = iota
	// tierOther is equipment that is neither barbell nor dumbbell (bands,
	// kettlebells, ...). Strength days stay bodyweight, circuits count it.
	tierOther
	tierDumbbell
	tierBarbell
)

// equipped reports whether anything beyond bodyweight is available.
func (t equipmentTier) equipped() bool {
	return t != tierBodyweight
}

func (t equipmentTier) movementsFor(kind WorkoutType) []movement {
	switch kind {
	case UpperBody:
		switch t {
		case tierBarbell:
			return barbellUpper
		case tierDumbbell:
			return dumbbellUpper
		}
		return bodyweightUpper
	case LowerBody:
		switch t {
		case tierBarbell:
			return barbellLower
		case tierDumbbell:
			return dumbbellLower
		}
		return bodyweightLower
	case FullBodyCircuit:
		if t.equipped() {
			return equippedCircuit
		}
		return bodyweightCircuit
	}
	return []movement{recoveryMovement}
}

// classifyEquipment picks the most capable tier present. Entries that only
// describe bodyweight training still count as "no equipment".
func classifyEquipment(equipment []string) equipmentTier {
	tier := tierBodyweight
	for _, item := range equipment {
		name := strings.ToLower(strings.TrimSpace(item))
		switch {
		case strings.Contains(name, "barbell"):
			return tierBarbell
		case strings.Contains(name, "dumbbell"):
			tier = tierDumbbell
		case isBodyweightOnly(name):
		default:
			if tier == tierBodyweight {
				tier = tierOther
			}
		}
	}
	return tier
}

func isBodyweightOnly(name string) bool {
	switch name {
	case "", "none", "no equipment", "bodyweight", "bodyweight only", "body weight":
		return true
	}
	return false
}

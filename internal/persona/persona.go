/*
Package persona turns a user's onboarding, progress and journal state into the
system prompt that governs the AI coach. The prompt is a single embedded
template; everything dynamic enters through promptData.
*/
package persona

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

// ErrMissingOnboarding is returned when no onboarding payload was supplied.
var ErrMissingOnboarding = errors.New("onboarding data is required")

const (
	defaultCoachingStyle = 5
	journalWindow        = 5
	journalSeparator     = "\n---\n"
	listSeparator        = ", "
	noEquipmentText      = "Bodyweight only"
	noInjuriesText       = "None reported"
)

//go:embed persona_prompt.tmpl
var promptTemplate string

var personaTmpl = template.Must(template.New("persona").Parse(promptTemplate))

// Result is the synthesized persona.
type Result struct {
	SystemPrompt string `json:"systemPrompt"`
	StyleLabel   string `json:"styleLabel"`
}

// promptData holds every interpolation point of persona_prompt.tmpl.
type promptData struct {
	Name              string
	StyleLabel        string
	StyleTitle        string
	StyleDescription  string
	GoalText          string
	EquipmentText     string
	InjuriesText      string
	FitnessLevel      string
	TrainingDays      int
	SessionMinutes    int
	EmotionalBarriers string
	WhyStatement      string
	CurrentDay        int
	Streak            int
	PhaseName         string
	PhaseFocus        string
	JournalContext    string
	StyleLabels       string
	PreferenceFields  string
}

// Synthesize builds the coach's system prompt. Identical input always yields a
// byte-identical prompt.
func Synthesize(in Input) (Result, error) {
	if in.Onboarding == nil {
		return Result{}, ErrMissingOnboarding
	}
	profile := in.Onboarding

	band := BandFor(profile.CoachingStyle)

	day, streak := 1, 0
	if in.Progress != nil {
		day = in.Progress.CurrentDay
		streak = in.Progress.Streak.Current
	}
	phase := PhaseFor(day)

	data := promptData{
		Name:              displayName(profile.Name),
		StyleLabel:        band.Label,
		StyleTitle:        band.Title,
		StyleDescription:  band.Description,
		GoalText:          GoalText(profile.Goal),
		EquipmentText:     joinOrDefault(profile.Equipment, noEquipmentText),
		InjuriesText:      joinOrDefault(profile.Injuries, noInjuriesText),
		FitnessLevel:      fitnessLevelText(profile.FitnessLevel),
		TrainingDays:      profile.TrainingDaysPerWeek,
		SessionMinutes:    profile.TimeAvailability,
		EmotionalBarriers: strings.TrimSpace(profile.EmotionalBarriers),
		WhyStatement:      strings.TrimSpace(profile.WhyStatement),
		CurrentDay:        day,
		Streak:            streak,
		PhaseName:         phase.Name,
		PhaseFocus:        phase.Focus,
		JournalContext:    JournalContext(in.Journal),
		StyleLabels:       strings.Join(StyleLabels(), "|"),
		PreferenceFields:  strings.Join(PreferenceFields, ", "),
	}

	var buf bytes.Buffer
	if err := personaTmpl.Execute(&buf, data); err != nil {
		return Result{}, fmt.Errorf("failed to render persona prompt: %w", err)
	}

	return Result{SystemPrompt: buf.String(), StyleLabel: band.Label}, nil
}

// JournalContext joins the content of the most recent entries, oldest first.
// Blank entries are skipped; no entries yields an empty string.
func JournalContext(entries []JournalEntry) string {
	if len(entries) > journalWindow {
		entries = entries[len(entries)-journalWindow:]
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if content := strings.TrimSpace(e.Content); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, journalSeparator)
}

// GoalText is the human description of a program goal.
func GoalText(goal string) string {
	switch strings.ToLower(strings.TrimSpace(goal)) {
	case "shred":
		return "Shred: lose body fat while keeping strength"
	case "build":
		return "Build: add lean muscle and strength"
	case "reset", "":
		return "Reset: rebuild consistency and energy"
	default:
		return strings.TrimSpace(goal)
	}
}

func fitnessLevelText(level string) string {
	level = strings.TrimSpace(level)
	if level == "" {
		return "Not specified"
	}
	first, size := utf8.DecodeRuneInString(level)
	return string(unicode.ToUpper(first)) + strings.ToLower(level[size:])
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "there"
	}
	return name
}

func joinOrDefault(items []string, fallback string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, listSeparator)
}

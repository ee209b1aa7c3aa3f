package persona

// Style labels returned to the client.
const (
	StyleGentle    = "gentle"
	StyleBalanced  = "balanced"
	StyleHardTruth = "hardtruth"
)

// StyleBand is one coaching tone with its canonical description.
type StyleBand struct {
	Label       string
	Title       string
	Description string
}

var (
	gentleBand = StyleBand{
		Label: StyleGentle,
		Title: "Gentle",
		Description: "Warm, patient and encouraging. Celebrate every small win, normalize setbacks, " +
			"and never use guilt or pressure. Offer choices instead of orders and check in on how the user feels " +
			"before pushing for more.",
	}
	balancedBand = StyleBand{
		Label: StyleBalanced,
		Title: "Balanced",
		Description: "Supportive but honest. Acknowledge effort first, then name what needs to change " +
			"in plain words. Hold the user to what they said they wanted, with empathy for how hard it is.",
	}
	hardTruthBand = StyleBand{
		Label: StyleHardTruth,
		Title: "Direct",
		Description: "Direct, blunt and accountability-first. Call out excuses immediately, keep praise " +
			"short and earned, and always tie the conversation back to the commitment the user made. " +
			"Tough, never cruel: challenge the behavior, never the person.",
	}

	// styleBands is every band in slider order.
	styleBands = []StyleBand{gentleBand, balancedBand, hardTruthBand}
)

// BandFor maps the coaching style slider onto a tone band. Unset values count
// as the default (5). Values outside 1-10 land in the direct band.
func BandFor(style Slider) StyleBand {
	value := float64(defaultCoachingStyle)
	if style.Valid {
		value = style.Value
	}

	switch {
	case value >= 1 && value < 4:
		return gentleBand
	case value >= 4 && value < 8:
		return balancedBand
	default:
		return hardTruthBand
	}
}

// StyleLabels lists the valid style-change targets in slider order.
func StyleLabels() []string {
	labels := make([]string, 0, len(styleBands))
	for _, b := range styleBands {
		labels = append(labels, b.Label)
	}
	return labels
}

// PreferenceFields are the onboarding fields a PREFERENCE_CHANGE directive may name.
var PreferenceFields = []string{
	"trainingDaysPerWeek",
	"timeAvailability",
	"equipment",
	"injuries",
	"goal",
	"fitnessLevel",
}

// Phase is the identity-arc band a program day falls in.
type Phase struct {
	Name  string
	Focus string
}

var phases = []Phase{
	{
		Name:  "Phase 1: Foundation (Days 1-7)",
		Focus: "Prove to yourself that you show up. Consistency beats intensity; the only win that matters this week is not breaking the chain.",
	},
	{
		Name:  "Phase 2: Momentum (Days 8-14)",
		Focus: "The novelty is gone and this is where most people quit. Name the resistance, expect it, and keep the promise anyway.",
	},
	{
		Name:  "Phase 3: Identity (Days 15+)",
		Focus: "Stop trying to become someone who trains. Speak to the user as someone who already is that person and protect that identity.",
	},
}

// PhaseFor classifies a program day. Days before 8, including invalid ones,
// are the foundation phase.
func PhaseFor(day int) Phase {
	switch {
	case day >= 15:
		return phases[2]
	case day >= 8:
		return phases[1]
	default:
		return phases[0]
	}
}

package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateShredIntermediate(t *testing.T) {
	in := &Input{Weight: 75, Height: 175, Age: 30, Goal: "shred", FitnessLevel: "intermediate"}

	assert.InDelta(t, 1698.75, BMR(*in), 1e-9)

	got, err := Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, 2038, got.Calories)
	assert.Equal(t, 90, got.Protein)
	assert.Equal(t, 57, got.Fats)
	assert.Equal(t, 292, got.Carbs)
	assert.NotNil(t, got.Meals)
	assert.Empty(t, got.Meals)
}

func TestCalculateMissingOnboarding(t *testing.T) {
	_, err := Calculate(nil)
	assert.ErrorIs(t, err, ErrMissingOnboarding)
}

func TestActivityMultiplier(t *testing.T) {
	cases := map[string]float64{
		"beginner":     1.3,
		"Intermediate": 1.5,
		"advanced":     1.7,
		"":             1.7,
		"elite":        1.7,
	}
	for level, want := range cases {
		assert.Equal(t, want, ActivityMultiplier(level), "level %q", level)
	}
}

func TestCalculateGoalBranches(t *testing.T) {
	base := Input{Weight: 80, Height: 180, Age: 35, FitnessLevel: "beginner"}
	// BMR = 800 + 1125 - 175 + 5 = 1755; maintenance = round(1755 * 1.3) = 2282 (2281.5 rounds up)
	tests := []struct {
		goal     string
		calories int
		protein  int
	}{
		{goal: "shred", calories: 1826, protein: 96},
		{goal: "build", calories: 2510, protein: 80},
		{goal: "reset", calories: 2282, protein: 72},
		{goal: "", calories: 2282, protein: 72},
	}

	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			in := base
			in.Goal = tt.goal

			got, err := Calculate(&in)
			require.NoError(t, err)
			assert.Equal(t, tt.calories, got.Calories)
			assert.Equal(t, tt.protein, got.Protein)

			remainder := got.Calories - got.Protein*4 - round(float64(got.Calories)*0.25)
			assert.Equal(t, remainder, carbCalories(got.Calories, got.Protein))
			assert.Equal(t, round(float64(remainder)/4), got.Carbs)
		})
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	in := &Input{Weight: 62.5, Height: 168, Age: 41, Goal: "build", FitnessLevel: "advanced"}
	first, err := Calculate(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Calculate(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateKeepsNegativeCarbs(t *testing.T) {
	// Extreme inputs: protein alone outweighs the calorie target.
	in := &Input{Weight: 150, Height: 0, Age: 200, Goal: "shred", FitnessLevel: "beginner"}

	got, err := Calculate(in)
	require.NoError(t, err)

	assert.Less(t, got.Carbs, 0)
	assert.Equal(t, round(float64(carbCalories(got.Calories, got.Protein))/4), got.Carbs)
}

func TestRoundIsHalfUp(t *testing.T) {
	assert.Equal(t, 3, round(2.5))
	assert.Equal(t, -2, round(-2.5))
	assert.Equal(t, -3, round(-2.6))
	assert.Equal(t, 0, round(0.49))
}

package journey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPrompt(t *testing.T) {
	first, err := DailyPrompt(1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "Day 1: You're not starting over"))

	second, err := DailyPrompt(2)
	require.NoError(t, err)
	assert.Contains(t, second, "Day 2")

	for day := 1; day <= TotalDays; day++ {
		prompt, err := DailyPrompt(day)
		require.NoError(t, err)
		assert.NotEmpty(t, prompt)
	}

	_, err = DailyPrompt(0)
	assert.ErrorIs(t, err, ErrInvalidDay)
	_, err = DailyPrompt(31)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestMilestoneFor(t *testing.T) {
	m, err := MilestoneFor(30)
	require.NoError(t, err)
	assert.Equal(t, "Transformation Complete", m.Title)
	assert.NotEmpty(t, m.Icon)

	_, err = MilestoneFor(7)
	assert.ErrorIs(t, err, ErrNoMilestone)

	_, err = MilestoneFor(-1)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, day)

	for _, raw := range []string{"", "abc", "0", "31", "1.5", "-3"} {
		_, err := ParseDay(raw)
		assert.ErrorIs(t, err, ErrInvalidDay, raw)
	}
}

package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthOptions(t *testing.T) {
	months := MonthOptions()
	require.Len(t, months, 12)
	assert.Equal(t, Option{Value: "january", Label: "January"}, months[0])
	assert.Equal(t, Option{Value: "december", Label: "December"}, months[11])
}

func TestWeekOptions_StartsOnMondayBeforeNewYear(t *testing.T) {
	weeks := WeekOptions(2025)
	require.Len(t, weeks, 53)
	assert.Equal(t, Option{Value: "2024-12-30", Label: "30 - December"}, weeks[0])
	assert.Equal(t, Option{Value: "2025-01-06", Label: "6 - January"}, weeks[1])
	assert.Equal(t, "2025-12-29", weeks[52].Value)

	for _, w := range weeks {
		start, err := ParseWeek(w.Value)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, start.Weekday())
	}
}

func TestWeekOptions_YearStartingMonday(t *testing.T) {
	weeks := WeekOptions(2024)
	assert.Equal(t, "2024-01-01", weeks[0].Value)
	assert.Equal(t, "1 - January", weeks[0].Label)
}

func TestDefaults(t *testing.T) {
	sunday := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "june", DefaultMonth(sunday))
	assert.Equal(t, "2025-06-09", DefaultWeek(sunday))

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-09", DefaultWeek(monday))
}

func TestParseWeek_RejectsNonMonday(t *testing.T) {
	_, err := ParseWeek("2025-06-10")
	assert.Error(t, err)
	_, err = ParseWeek("June 9")
	assert.Error(t, err)
}

func TestAllEnums(t *testing.T) {
	e := AllEnums()
	assert.Len(t, e.Priority, 3)
	assert.Len(t, e.Status, 4)
	assert.Equal(t, "cancelled", e.Status[3].Value)
	assert.Len(t, e.Satisfaction, 3)
}

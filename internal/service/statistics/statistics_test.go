package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

func date(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func deletedRoll(id int64, weight float64, added, deleted time.Time) models.Roll {
	return models.Roll{ID: id, Length: 10, Weight: weight, AddedDate: added, State: models.DeletedAt(deleted)}
}

func activeRoll(id int64, weight float64, added time.Time) models.Roll {
	return models.Roll{ID: id, Length: 10, Weight: weight, AddedDate: added}
}

func scenario() []models.Roll {
	return []models.Roll{
		activeRoll(1, 100, date(time.January, 1)),
		deletedRoll(2, 200, date(time.January, 2), date(time.January, 5)),
		activeRoll(3, 300, date(time.January, 10)),
	}
}

func TestCompute_Scenario(t *testing.T) {
	stats, err := Compute(scenario(), date(time.January, 1), date(time.January, 10))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.AddedCount)
	assert.Equal(t, 1, stats.DeletedCount)
	assert.Equal(t, 600.0, stats.TotalWeight)
	assert.Equal(t, 200.0, stats.AverageWeight)
	assert.Equal(t, 100.0, stats.MinWeight)
	assert.Equal(t, 300.0, stats.MaxWeight)
	assert.Equal(t, 3.0, stats.MinStorageDuration)
	assert.Equal(t, 3.0, stats.MaxStorageDuration)

	// Two rolls are in stock from Jan 2 through Jan 5 and again on Jan 10;
	// the earliest of those days wins.
	require.NotNil(t, stats.DayWithMaxRollsCount)
	assert.Equal(t, date(time.January, 2), *stats.DayWithMaxRollsCount)
	assert.Equal(t, 2, stats.MaxRollsCount)

	require.NotNil(t, stats.DayWithMinRollsCount)
	assert.Equal(t, date(time.January, 1), *stats.DayWithMinRollsCount)
	assert.Equal(t, 1, stats.MinRollsCount)

	require.NotNil(t, stats.DayWithMaxTotalWeight)
	assert.Equal(t, date(time.January, 10), *stats.DayWithMaxTotalWeight)
	assert.Equal(t, 400.0, stats.MaxDayTotalWeight)

	require.NotNil(t, stats.DayWithMinTotalWeight)
	assert.Equal(t, date(time.January, 1), *stats.DayWithMinTotalWeight)
	assert.Equal(t, 100.0, stats.MinDayTotalWeight)
}

func TestCompute_InvalidRange(t *testing.T) {
	stats, err := Compute(scenario(), date(time.February, 1), date(time.January, 1))
	require.ErrorIs(t, err, models.ErrInvalidRange)
	assert.Equal(t, models.Statistics{}, stats)

	_, err = DailyBreakdown(scenario(), date(time.February, 1), date(time.January, 1))
	require.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestCompute_EmptySnapshot(t *testing.T) {
	start, end := date(time.March, 1), date(time.March, 4)

	stats, err := Compute(nil, start, end)
	require.NoError(t, err)

	assert.Zero(t, stats.AddedCount)
	assert.Zero(t, stats.DeletedCount)
	assert.Zero(t, stats.AverageLength)
	assert.Zero(t, stats.AverageWeight)
	assert.Zero(t, stats.MinLength)
	assert.Zero(t, stats.MaxWeight)
	assert.Zero(t, stats.TotalWeight)
	assert.Zero(t, stats.MinStorageDuration)
	assert.Zero(t, stats.MaxStorageDuration)

	for _, d := range []*time.Time{
		stats.DayWithMinRollsCount, stats.DayWithMaxRollsCount,
		stats.DayWithMinTotalWeight, stats.DayWithMaxTotalWeight,
	} {
		require.NotNil(t, d)
		assert.Equal(t, start, *d)
	}
}

func TestCompute_SingleDayWindow(t *testing.T) {
	at := time.Date(2024, time.January, 3, 14, 30, 0, 0, time.UTC)

	daily, err := DailyBreakdown(scenario(), at, at)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, date(time.January, 3), daily[0].Date)
	assert.Equal(t, 2, daily[0].RollsCount)
	assert.Equal(t, 300.0, daily[0].TotalWeight)

	stats, err := Compute(scenario(), at, at)
	require.NoError(t, err)
	for _, d := range []*time.Time{
		stats.DayWithMinRollsCount, stats.DayWithMaxRollsCount,
		stats.DayWithMinTotalWeight, stats.DayWithMaxTotalWeight,
	} {
		require.NotNil(t, d)
		assert.Equal(t, date(time.January, 3), *d)
	}
}

func TestCompute_StorageDurationScope(t *testing.T) {
	rolls := []models.Roll{
		// added before the window, deleted inside it
		deletedRoll(1, 50, date(time.January, 1), date(time.January, 11).Add(12*time.Hour)),
		// added and deleted inside the window
		deletedRoll(2, 80, date(time.January, 12), date(time.January, 14)),
		// deleted before the window starts: not present
		deletedRoll(3, 90, date(time.January, 1), date(time.January, 2)),
	}

	stats, err := Compute(rolls, date(time.January, 10), date(time.January, 20))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.AddedCount)
	assert.Equal(t, 2, stats.DeletedCount)
	assert.Equal(t, 2.0, stats.MinStorageDuration)
	assert.Equal(t, 10.5, stats.MaxStorageDuration)
	assert.Equal(t, 130.0, stats.TotalWeight)
}

func TestCompute_DeletedOutsideWindowStillCountsDuration(t *testing.T) {
	rolls := []models.Roll{
		deletedRoll(1, 50, date(time.January, 5), date(time.February, 5)),
	}

	stats, err := Compute(rolls, date(time.January, 10), date(time.January, 20))
	require.NoError(t, err)

	assert.Zero(t, stats.AddedCount)
	assert.Zero(t, stats.DeletedCount)
	assert.Equal(t, 31.0, stats.MaxStorageDuration)
}

func TestCompute_PeriodAggregates(t *testing.T) {
	rolls := []models.Roll{
		{ID: 1, Length: 4, Weight: 40, AddedDate: date(time.January, 1)},
		{ID: 2, Length: 8, Weight: 10, AddedDate: date(time.January, 2)},
		{ID: 3, Length: 12, Weight: 70, AddedDate: date(time.January, 3)},
		// added after the window: excluded from every period aggregate
		{ID: 4, Length: 100, Weight: 1000, AddedDate: date(time.February, 1)},
	}

	stats, err := Compute(rolls, date(time.January, 1), date(time.January, 31))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.AddedCount)
	assert.Equal(t, 8.0, stats.AverageLength)
	assert.Equal(t, 40.0, stats.AverageWeight)
	assert.Equal(t, 4.0, stats.MinLength)
	assert.Equal(t, 12.0, stats.MaxLength)
	assert.Equal(t, 10.0, stats.MinWeight)
	assert.Equal(t, 70.0, stats.MaxWeight)
	assert.Equal(t, 120.0, stats.TotalWeight)
}

func TestDailyBreakdown_UsesWholeSnapshot(t *testing.T) {
	// Roll 1 leaves a few hours before the window opens: it is not part of
	// the period aggregates, yet it is in stock on the window's first day.
	rolls := []models.Roll{
		deletedRoll(1, 25, date(time.January, 1), date(time.January, 3).Add(8*time.Hour)),
		activeRoll(2, 75, date(time.January, 2)),
	}
	start := date(time.January, 3).Add(12 * time.Hour)
	end := date(time.January, 4).Add(12 * time.Hour)

	daily, err := DailyBreakdown(rolls, start, end)
	require.NoError(t, err)

	want := []models.DailyStat{
		{Date: date(time.January, 3), RollsCount: 2, TotalWeight: 100},
		{Date: date(time.January, 4), RollsCount: 1, TotalWeight: 75},
	}
	assert.Equal(t, want, daily)

	stats, err := Compute(rolls, start, end)
	require.NoError(t, err)
	assert.Equal(t, 75.0, stats.TotalWeight)
	assert.Equal(t, 2, stats.MaxRollsCount)
}

func TestDailyBreakdown_TruncatesToDate(t *testing.T) {
	rolls := []models.Roll{
		deletedRoll(1, 10,
			time.Date(2024, time.January, 2, 23, 59, 0, 0, time.UTC),
			time.Date(2024, time.January, 3, 0, 1, 0, 0, time.UTC)),
	}

	daily, err := DailyBreakdown(rolls,
		time.Date(2024, time.January, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 4, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, daily, 4)

	counts := []int{daily[0].RollsCount, daily[1].RollsCount, daily[2].RollsCount, daily[3].RollsCount}
	assert.Equal(t, []int{0, 1, 1, 0}, counts)
}

func TestDailyBreakdown_NoWeightDrift(t *testing.T) {
	rolls := []models.Roll{
		deletedRoll(1, 0.1, date(time.January, 1), date(time.January, 1)),
		activeRoll(2, 0.2, date(time.January, 1)),
		deletedRoll(3, 0.7, date(time.January, 2), date(time.January, 2)),
	}

	daily, err := DailyBreakdown(rolls, date(time.January, 1), date(time.January, 3))
	require.NoError(t, err)

	assert.Equal(t, 0.3, daily[0].TotalWeight)
	assert.Equal(t, 0.9, daily[1].TotalWeight)
	assert.Equal(t, 0.2, daily[2].TotalWeight)
}

func TestApplyExtremes_FirstOccurrenceWins(t *testing.T) {
	daily := []models.DailyStat{
		{Date: date(time.May, 1), RollsCount: 3, TotalWeight: 30},
		{Date: date(time.May, 2), RollsCount: 1, TotalWeight: 10},
		{Date: date(time.May, 3), RollsCount: 3, TotalWeight: 30},
		{Date: date(time.May, 4), RollsCount: 1, TotalWeight: 10},
	}

	var stats models.Statistics
	applyExtremes(&stats, daily)

	assert.Equal(t, date(time.May, 1), *stats.DayWithMaxRollsCount)
	assert.Equal(t, date(time.May, 2), *stats.DayWithMinRollsCount)
	assert.Equal(t, date(time.May, 1), *stats.DayWithMaxTotalWeight)
	assert.Equal(t, date(time.May, 2), *stats.DayWithMinTotalWeight)
}

func TestApplyExtremes_NoDays(t *testing.T) {
	var stats models.Statistics
	applyExtremes(&stats, nil)

	assert.Nil(t, stats.DayWithMinRollsCount)
	assert.Nil(t, stats.DayWithMaxTotalWeight)
	assert.Zero(t, stats.MaxRollsCount)
}

func TestCompute_WindowSpanningCenturies(t *testing.T) {
	rolls := []models.Roll{activeRoll(1, 100, date(time.January, 1))}
	start := time.Date(1700, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := date(time.January, 10)

	daily, err := DailyBreakdown(rolls, start, end)
	require.NoError(t, err)
	require.NotEmpty(t, daily)
	assert.Equal(t, start, daily[0].Date)
	assert.Equal(t, end, daily[len(daily)-1].Date)
	assert.Equal(t, 1, daily[len(daily)-1].RollsCount)
	assert.Equal(t, 0, daily[len(daily)-11].RollsCount)

	stats, err := Compute(rolls, start, end)
	require.NoError(t, err)
	require.NotNil(t, stats.DayWithMaxRollsCount)
	assert.Equal(t, date(time.January, 1), *stats.DayWithMaxRollsCount)
	assert.Equal(t, 1, stats.MaxRollsCount)
	require.NotNil(t, stats.DayWithMinRollsCount)
	assert.Equal(t, start, *stats.DayWithMinRollsCount)
}

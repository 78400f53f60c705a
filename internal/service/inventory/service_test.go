package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/observability"
	"github.com/mamadbah2/steelrolls/internal/repository/memory"
)

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) set(t time.Time) { c.t = t }

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	return NewService(memory.NewRollRepository(), nil, WithClock(c.Now)), c
}

func jan(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestAddRoll(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("GMT+3", 3*3600))}
	svc := NewService(memory.NewRollRepository(), nil, WithClock(c.Now), WithMetrics(observability.NewMetrics(reg)))

	first, err := svc.AddRoll(ctx, models.CreateRollRequest{Length: 10, Weight: 200})
	require.NoError(t, err)
	second, err := svc.AddRoll(ctx, models.CreateRollRequest{Length: 0.1, Weight: 0.1})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, time.UTC, first.AddedDate.Location())
	assert.True(t, first.AddedDate.Equal(c.t))
	assert.False(t, first.IsDeleted())

	count, err := testutil.GatherAndCount(reg, "steelrolls_inventory_rolls_added_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddRoll_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []models.CreateRollRequest{
		{Length: 0, Weight: 10},
		{Length: 10, Weight: 0.05},
		{Length: -1, Weight: -1},
	} {
		_, err := svc.AddRoll(ctx, req)
		require.ErrorIs(t, err, models.ErrInvalidRoll)
	}

	rolls, err := svc.GetRolls(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rolls)
}

func TestDeleteRoll(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	roll, err := svc.AddRoll(ctx, models.CreateRollRequest{Length: 5, Weight: 50})
	require.NoError(t, err)

	c.set(c.t.Add(72 * time.Hour))
	deleted, err := svc.DeleteRoll(ctx, roll.ID)
	require.NoError(t, err)

	at, ok := deleted.DeletedDate()
	require.True(t, ok)
	assert.True(t, at.Equal(c.t))

	_, err = svc.DeleteRoll(ctx, roll.ID)
	require.ErrorIs(t, err, models.ErrRollAlreadyDeleted)

	got, err := svc.GetRoll(ctx, roll.ID)
	require.NoError(t, err)
	again, _ := got.DeletedDate()
	assert.True(t, again.Equal(at), "deletion date must not move")
}

func TestDeleteRoll_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DeleteRoll(context.Background(), 77)
	require.ErrorIs(t, err, models.ErrRollNotFound)

	_, err = svc.GetRoll(context.Background(), 77)
	require.ErrorIs(t, err, models.ErrRollNotFound)
}

func TestDeleteRoll_ClockBeforeAdded(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	roll, err := svc.AddRoll(ctx, models.CreateRollRequest{Length: 5, Weight: 50})
	require.NoError(t, err)

	c.set(c.t.Add(-time.Hour))
	_, err = svc.DeleteRoll(ctx, roll.ID)
	require.ErrorIs(t, err, models.ErrDeletedBeforeAdded)
}

func TestGetRolls_Filter(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	for _, w := range []float64{100, 200, 300} {
		_, err := svc.AddRoll(ctx, models.CreateRollRequest{Length: 10, Weight: w})
		require.NoError(t, err)
		c.set(c.t.Add(24 * time.Hour))
	}
	_, err := svc.DeleteRoll(ctx, 2)
	require.NoError(t, err)

	active := false
	rolls, err := svc.GetRolls(ctx, &models.RollFilter{
		WeightRange: models.RangeFilter[float64]{From: models.Bounded(150.0)},
		IsDeleted:   &active,
	})
	require.NoError(t, err)
	require.Len(t, rolls, 1)
	assert.Equal(t, 300.0, rolls[0].Weight)
}

// Rolls added on Jan 1, 2 and 10; the Jan 2 roll leaves stock on Jan 5.
func seedScenario(t *testing.T, svc *Service, c *clock) {
	t.Helper()
	ctx := context.Background()

	add := func(at time.Time, weight float64) models.Roll {
		c.set(at)
		roll, err := svc.AddRoll(ctx, models.CreateRollRequest{Length: 10, Weight: weight})
		require.NoError(t, err)
		return roll
	}

	add(jan(1), 100)
	second := add(jan(2), 200)
	c.set(jan(5))
	_, err := svc.DeleteRoll(ctx, second.ID)
	require.NoError(t, err)
	add(jan(10), 300)
}

func TestGetStatistics(t *testing.T) {
	svc, c := newTestService(t)
	seedScenario(t, svc, c)

	stats, err := svc.GetStatistics(context.Background(), jan(1), jan(10))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.AddedCount)
	assert.Equal(t, 1, stats.DeletedCount)
	assert.Equal(t, 600.0, stats.TotalWeight)
	assert.Equal(t, 3.0, stats.MaxStorageDuration)
	require.NotNil(t, stats.DayWithMaxTotalWeight)
	assert.Equal(t, jan(10), *stats.DayWithMaxTotalWeight)
}

func TestGetStatistics_InvalidWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetStatistics(ctx, jan(10), jan(1))
	require.ErrorIs(t, err, models.ErrInvalidRange)

	_, err = svc.GetStatistics(ctx, time.Time{}, jan(1))
	require.ErrorIs(t, err, models.ErrInvalidRange)

	_, err = svc.GetDailyBreakdown(ctx, jan(1), time.Time{})
	require.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestGetDailyBreakdown(t *testing.T) {
	svc, c := newTestService(t)
	seedScenario(t, svc, c)

	daily, err := svc.GetDailyBreakdown(context.Background(), jan(4), jan(6))
	require.NoError(t, err)

	assert.Equal(t, []models.DailyStat{
		{Date: jan(4), RollsCount: 2, TotalWeight: 300},
		{Date: jan(5), RollsCount: 2, TotalWeight: 300},
		{Date: jan(6), RollsCount: 1, TotalWeight: 100},
	}, daily)
}

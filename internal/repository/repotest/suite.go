// Package repotest holds the behaviour every RollRepository backend must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/repository"
	"github.com/mamadbah2/steelrolls/internal/service/filter"
)

// Factory returns an empty repository. Cleanup is registered on t.
type Factory func(t *testing.T) repository.RollRepository

var (
	base = time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

	distantPast   = time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)
	distantFuture = time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// RunRollRepository exercises a backend against the shared contract.
func RunRollRepository(t *testing.T, newRepo Factory) {
	t.Run("AddAssignsIDs", func(t *testing.T) { testAddAssignsIDs(t, newRepo(t)) })
	t.Run("GetByIDMissing", func(t *testing.T) { testGetByIDMissing(t, newRepo(t)) })
	t.Run("UpdateSoftDelete", func(t *testing.T) { testUpdateSoftDelete(t, newRepo(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newRepo(t)) })
	t.Run("GetAllMatchesFilterEngine", func(t *testing.T) { testGetAllMatchesFilterEngine(t, newRepo(t)) })
	t.Run("SnapshotIncludesDeleted", func(t *testing.T) { testSnapshotIncludesDeleted(t, newRepo(t)) })
}

// Seed stores a fixed set of rolls: ids 1..6, rolls 2 and 5 soft deleted.
func Seed(t *testing.T, repo repository.RollRepository) []models.Roll {
	t.Helper()
	ctx := context.Background()

	specs := []struct {
		length, weight float64
		addedDay       int
		deletedDay     int
	}{
		{5, 100, 0, -1},
		{10, 200, 1, 4},
		{15, 300, 9, -1},
		{12, 150, 2, -1},
		{7.5, 80, 3, 6},
		{20, 500, 12, -1},
	}

	rolls := make([]models.Roll, 0, len(specs))
	for _, s := range specs {
		roll, err := models.NewRoll(s.length, s.weight, base.AddDate(0, 0, s.addedDay))
		require.NoError(t, err)

		stored, err := repo.Add(ctx, roll)
		require.NoError(t, err)

		if s.deletedDay >= 0 {
			require.NoError(t, stored.MarkDeleted(base.AddDate(0, 0, s.deletedDay)))
			stored, err = repo.Update(ctx, stored)
			require.NoError(t, err)
		}
		rolls = append(rolls, stored)
	}
	return rolls
}

// AssertSameRolls compares rolls field by field, tolerating time zone and
// monotonic clock differences introduced by storage round trips.
func AssertSameRolls(t *testing.T, want, got []models.Roll) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		AssertSameRoll(t, want[i], got[i])
	}
}

// AssertSameRoll compares a single roll.
func AssertSameRoll(t *testing.T, want, got models.Roll) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Length, got.Length)
	assert.Equal(t, want.Weight, got.Weight)
	assert.True(t, want.AddedDate.Equal(got.AddedDate), "added date: want %s, got %s", want.AddedDate, got.AddedDate)

	wantDeleted, wantOK := want.DeletedDate()
	gotDeleted, gotOK := got.DeletedDate()
	require.Equal(t, wantOK, gotOK, "deleted state of roll %d", want.ID)
	if wantOK {
		assert.True(t, wantDeleted.Equal(gotDeleted), "deleted date: want %s, got %s", wantDeleted, gotDeleted)
	}
}

func testAddAssignsIDs(t *testing.T, repo repository.RollRepository) {
	ctx := context.Background()

	first, err := repo.Add(ctx, models.Roll{Length: 3, Weight: 30, AddedDate: base})
	require.NoError(t, err)
	second, err := repo.Add(ctx, models.Roll{Length: 4, Weight: 40, AddedDate: base})
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	AssertSameRoll(t, second, got)
	assert.False(t, got.IsDeleted())
}

func testGetByIDMissing(t *testing.T, repo repository.RollRepository) {
	_, err := repo.GetByID(context.Background(), 4242)
	require.ErrorIs(t, err, models.ErrRollNotFound)
}

func testUpdateSoftDelete(t *testing.T, repo repository.RollRepository) {
	ctx := context.Background()

	roll, err := repo.Add(ctx, models.Roll{Length: 3, Weight: 30, AddedDate: base})
	require.NoError(t, err)

	deletedAt := base.Add(36 * time.Hour)
	require.NoError(t, roll.MarkDeleted(deletedAt))
	updated, err := repo.Update(ctx, roll)
	require.NoError(t, err)
	AssertSameRoll(t, roll, updated)

	got, err := repo.GetByID(ctx, roll.ID)
	require.NoError(t, err)
	require.True(t, got.IsDeleted())
	at, _ := got.DeletedDate()
	assert.True(t, deletedAt.Equal(at))
}

func testUpdateMissing(t *testing.T, repo repository.RollRepository) {
	_, err := repo.Update(context.Background(), models.Roll{ID: 999, Length: 1, Weight: 1, AddedDate: base})
	require.ErrorIs(t, err, models.ErrRollNotFound)
}

func testGetAllMatchesFilterEngine(t *testing.T, repo repository.RollRepository) {
	ctx := context.Background()
	seeded := Seed(t, repo)

	deleted, active := true, false
	filters := map[string]*models.RollFilter{
		"nil":          nil,
		"empty":        {},
		"id range":     {IDRange: models.Between[int64](seeded[1].ID, seeded[3].ID)},
		"length from":  {LengthRange: models.RangeFilter[float64]{From: models.Bounded(10.0)}},
		"weight to":    {WeightRange: models.RangeFilter[float64]{To: models.Bounded(150.0)}},
		"added window": {AddedDateRange: models.Between(base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))},
		"deleted from": {DeletedDateRange: models.RangeFilter[time.Time]{From: models.Bounded(base)}},
		"deleted to":   {DeletedDateRange: models.RangeFilter[time.Time]{To: models.Bounded(base.AddDate(0, 0, 5))}},
		"is deleted":   {IsDeleted: &deleted},
		"is active":    {IsDeleted: &active},
		"combined": {
			LengthRange: models.Between(5.0, 15.0),
			WeightRange: models.RangeFilter[float64]{From: models.Bounded(100.0)},
			IsDeleted:   &active,
		},
		"inverted":                  {WeightRange: models.Between(400.0, 100.0)},
		"added from distant past":   {AddedDateRange: models.RangeFilter[time.Time]{From: models.Bounded(distantPast)}},
		"added to distant future":   {AddedDateRange: models.RangeFilter[time.Time]{To: models.Bounded(distantFuture)}},
		"added from distant future": {AddedDateRange: models.RangeFilter[time.Time]{From: models.Bounded(distantFuture)}},
		"deleted to distant past":   {DeletedDateRange: models.RangeFilter[time.Time]{To: models.Bounded(distantPast)}},
		"deleted across centuries":  {DeletedDateRange: models.Between(distantPast, distantFuture)},
	}

	for name, f := range filters {
		t.Run(name, func(t *testing.T) {
			got, err := repo.GetAll(ctx, f)
			require.NoError(t, err)
			AssertSameRolls(t, filter.Apply(seeded, f), got)
		})
	}
}

func testSnapshotIncludesDeleted(t *testing.T, repo repository.RollRepository) {
	seeded := Seed(t, repo)

	snapshot, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	AssertSameRolls(t, seeded, snapshot)
}

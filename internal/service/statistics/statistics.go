// Package statistics computes time-windowed inventory metrics over a roll
// snapshot. It performs no I/O and keeps no state between calls.
//
// Three scopes are involved and must not be mixed up:
//   - period aggregates use rolls whose lifetime overlaps the window;
//   - added/deleted counts use events that happen inside the window;
//   - the daily breakdown uses every roll in the snapshot.
package statistics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

// Compute returns period aggregates and extremal days for [start, end].
func Compute(rolls []models.Roll, start, end time.Time) (models.Statistics, error) {
	if start.After(end) {
		return models.Statistics{}, models.ErrInvalidRange
	}

	stats := periodAggregates(rolls, start, end)
	applyExtremes(&stats, dailyBreakdown(rolls, Days(start, end)))
	return stats, nil
}

// DailyBreakdown returns one entry per calendar day of [start, end] with the
// count and total weight of rolls in stock that day.
func DailyBreakdown(rolls []models.Roll, start, end time.Time) ([]models.DailyStat, error) {
	if start.After(end) {
		return nil, models.ErrInvalidRange
	}
	return dailyBreakdown(rolls, Days(start, end)), nil
}

// presentDuring reports whether the roll's lifetime overlaps [start, end].
func presentDuring(r models.Roll, start, end time.Time) bool {
	if r.AddedDate.After(end) {
		return false
	}
	deletedAt, ok := r.DeletedDate()
	return !ok || !deletedAt.Before(start)
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func periodAggregates(rolls []models.Roll, start, end time.Time) models.Statistics {
	var (
		stats          models.Statistics
		present        int
		sumLength      float64
		minDur, maxDur = math.Inf(1), math.Inf(-1)
		hasDuration    bool
	)

	for _, r := range rolls {
		if !presentDuring(r, start, end) {
			continue
		}

		if within(r.AddedDate, start, end) {
			stats.AddedCount++
		}
		if deletedAt, ok := r.DeletedDate(); ok && within(deletedAt, start, end) {
			stats.DeletedCount++
		}

		if present == 0 {
			stats.MinLength, stats.MaxLength = r.Length, r.Length
			stats.MinWeight, stats.MaxWeight = r.Weight, r.Weight
		} else {
			stats.MinLength = math.Min(stats.MinLength, r.Length)
			stats.MaxLength = math.Max(stats.MaxLength, r.Length)
			stats.MinWeight = math.Min(stats.MinWeight, r.Weight)
			stats.MaxWeight = math.Max(stats.MaxWeight, r.Weight)
		}
		present++
		sumLength += r.Length
		stats.TotalWeight += r.Weight

		if d, ok := r.StorageDuration(); ok {
			days := d.Hours() / 24
			minDur = math.Min(minDur, days)
			maxDur = math.Max(maxDur, days)
			hasDuration = true
		}
	}

	if present > 0 {
		stats.AverageLength = sumLength / float64(present)
		stats.AverageWeight = stats.TotalWeight / float64(present)
	}
	if hasDuration {
		stats.MinStorageDuration = minDur
		stats.MaxStorageDuration = maxDur
	}
	return stats
}

// dailyBreakdown sweeps the snapshot once: each roll adds itself at the first
// day it is in stock and removes itself after the last one. Weights are
// accumulated as decimals so running sums carry no rounding drift.
func dailyBreakdown(rolls []models.Roll, days DateRange) []models.DailyStat {
	n := days.Len()
	if n == 0 {
		return nil
	}

	counts := make([]int, n+1)
	weights := make([]decimal.Decimal, n+1)

	for _, r := range rolls {
		first := max(days.Index(r.AddedDate), 0)
		last := n - 1
		if deletedAt, ok := r.DeletedDate(); ok {
			last = min(days.Index(deletedAt), last)
		}
		if first > last {
			continue
		}

		w := decimal.NewFromFloat(r.Weight)
		counts[first]++
		counts[last+1]--
		weights[first] = weights[first].Add(w)
		weights[last+1] = weights[last+1].Sub(w)
	}

	out := make([]models.DailyStat, 0, n)
	var (
		count  int
		weight decimal.Decimal
	)
	for i, date := range days.All() {
		count += counts[i]
		weight = weight.Add(weights[i])
		out = append(out, models.DailyStat{
			Date:        date,
			RollsCount:  count,
			TotalWeight: weight.InexactFloat64(),
		})
	}
	return out
}

// applyExtremes picks the days with the fewest and most rolls and the lowest
// and highest total weight. Ties go to the earliest day.
func applyExtremes(stats *models.Statistics, daily []models.DailyStat) {
	if len(daily) == 0 {
		return
	}

	minCount, maxCount := 0, 0
	minWeight, maxWeight := 0, 0
	for i := 1; i < len(daily); i++ {
		d := daily[i]
		if d.RollsCount < daily[minCount].RollsCount {
			minCount = i
		}
		if d.RollsCount > daily[maxCount].RollsCount {
			maxCount = i
		}
		if d.TotalWeight < daily[minWeight].TotalWeight {
			minWeight = i
		}
		if d.TotalWeight > daily[maxWeight].TotalWeight {
			maxWeight = i
		}
	}

	stats.DayWithMinRollsCount = datePtr(daily[minCount].Date)
	stats.DayWithMaxRollsCount = datePtr(daily[maxCount].Date)
	stats.MinRollsCount = daily[minCount].RollsCount
	stats.MaxRollsCount = daily[maxCount].RollsCount
	stats.DayWithMinTotalWeight = datePtr(daily[minWeight].Date)
	stats.DayWithMaxTotalWeight = datePtr(daily[maxWeight].Date)
	stats.MinDayTotalWeight = daily[minWeight].TotalWeight
	stats.MaxDayTotalWeight = daily[maxWeight].TotalWeight
}

func datePtr(t time.Time) *time.Time { return &t }

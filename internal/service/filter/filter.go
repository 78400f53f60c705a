// Package filter narrows roll snapshots with composable range predicates.
//
// A RollFilter is compiled once into a single Predicate, then evaluated
// eagerly over an in-memory snapshot. Absent constraints contribute nothing
// to the pipeline, so an empty filter compiles to a predicate that accepts
// every roll.
package filter

import (
	"cmp"
	"time"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

// Predicate decides whether a roll passes.
type Predicate func(models.Roll) bool

// All combines predicates with logical AND. No predicates accepts everything.
func All(preds ...Predicate) Predicate {
	switch len(preds) {
	case 0:
		return func(models.Roll) bool { return true }
	case 1:
		return preds[0]
	}
	return func(r models.Roll) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Compile builds the predicate for f. A nil filter accepts every roll.
func Compile(f *models.RollFilter) Predicate {
	if f.IsEmpty() {
		return All()
	}

	var preds []Predicate
	preds = appendRange(preds, f.IDRange, cmp.Compare[int64], func(r models.Roll) (int64, bool) {
		return r.ID, true
	})
	preds = appendRange(preds, f.LengthRange, cmp.Compare[float64], func(r models.Roll) (float64, bool) {
		return r.Length, true
	})
	preds = appendRange(preds, f.WeightRange, cmp.Compare[float64], func(r models.Roll) (float64, bool) {
		return r.Weight, true
	})
	preds = appendRange(preds, f.AddedDateRange, time.Time.Compare, func(r models.Roll) (time.Time, bool) {
		return r.AddedDate, true
	})
	preds = appendRange(preds, f.DeletedDateRange, time.Time.Compare, models.Roll.DeletedDate)

	if f.IsDeleted != nil {
		want := *f.IsDeleted
		preds = append(preds, func(r models.Roll) bool { return r.IsDeleted() == want })
	}

	return All(preds...)
}

// Apply returns the rolls that pass f, preserving input order. An empty
// filter returns rolls unchanged.
func Apply(rolls []models.Roll, f *models.RollFilter) []models.Roll {
	if f.IsEmpty() {
		return rolls
	}

	pass := Compile(f)
	out := make([]models.Roll, 0, len(rolls))
	for _, r := range rolls {
		if pass(r) {
			out = append(out, r)
		}
	}
	return out
}

// InRange reports whether v satisfies both bounds of rng under compare.
func InRange[T any](v T, rng models.RangeFilter[T], compare func(a, b T) int) bool {
	if from, ok := rng.From.Value(); ok && compare(v, from) < 0 {
		return false
	}
	if to, ok := rng.To.Value(); ok && compare(v, to) > 0 {
		return false
	}
	return true
}

// appendRange adds a predicate for rng when it has at least one bound. The
// extractor reports false for an absent attribute, which fails any bound.
func appendRange[T any](preds []Predicate, rng models.RangeFilter[T], compare func(a, b T) int, extract func(models.Roll) (T, bool)) []Predicate {
	if rng.IsEmpty() {
		return preds
	}
	return append(preds, func(r models.Roll) bool {
		v, ok := extract(r)
		if !ok {
			return false
		}
		return InRange(v, rng, compare)
	})
}

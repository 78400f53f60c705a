package models

import "time"

// Bound is one side of a range constraint. The zero value is unbounded.
type Bound[T any] struct {
	value T
	set   bool
}

// Unbounded returns a bound that places no constraint.
func Unbounded[T any]() Bound[T] { return Bound[T]{} }

// Bounded returns an inclusive bound at v.
func Bounded[T any](v T) Bound[T] { return Bound[T]{value: v, set: true} }

// BoundFromPtr returns Bounded(*v), or Unbounded when v is nil.
func BoundFromPtr[T any](v *T) Bound[T] {
	if v == nil {
		return Unbounded[T]()
	}
	return Bounded(*v)
}

// Value returns the bound value and whether the bound is set.
func (b Bound[T]) Value() (T, bool) { return b.value, b.set }

// IsSet reports whether the bound constrains anything.
func (b Bound[T]) IsSet() bool { return b.set }

// RangeFilter is a pair of inclusive bounds over one attribute.
// From > To is accepted and simply matches nothing.
type RangeFilter[T any] struct {
	From Bound[T]
	To   Bound[T]
}

// Between is a shorthand for a range bounded on both sides.
func Between[T any](from, to T) RangeFilter[T] {
	return RangeFilter[T]{From: Bounded(from), To: Bounded(to)}
}

// IsEmpty reports whether neither side is bounded.
func (r RangeFilter[T]) IsEmpty() bool { return !r.From.IsSet() && !r.To.IsSet() }

// RollFilter narrows a roll listing. Every present constraint must hold.
type RollFilter struct {
	IDRange          RangeFilter[int64]
	LengthRange      RangeFilter[float64]
	WeightRange      RangeFilter[float64]
	AddedDateRange   RangeFilter[time.Time]
	DeletedDateRange RangeFilter[time.Time]
	IsDeleted        *bool
}

// IsEmpty reports whether the filter constrains nothing.
func (f *RollFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.IDRange.IsEmpty() &&
		f.LengthRange.IsEmpty() &&
		f.WeightRange.IsEmpty() &&
		f.AddedDateRange.IsEmpty() &&
		f.DeletedDateRange.IsEmpty() &&
		f.IsDeleted == nil
}

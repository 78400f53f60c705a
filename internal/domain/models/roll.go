package models

import (
	"fmt"
	"time"
)

// Lifecycle is the soft-delete state of a roll: either active or deleted at a
// point in time. The zero value is active. Once deleted, a Lifecycle never
// returns to active.
type Lifecycle struct {
	deleted   bool
	deletedAt time.Time
}

// Active returns the lifecycle of a roll still in stock.
func Active() Lifecycle { return Lifecycle{} }

// DeletedAt returns the lifecycle of a roll removed at t.
func DeletedAt(t time.Time) Lifecycle { return Lifecycle{deleted: true, deletedAt: t} }

// IsDeleted reports whether the roll has been soft deleted.
func (l Lifecycle) IsDeleted() bool { return l.deleted }

// DeletedDate returns the deletion timestamp and whether it is set.
func (l Lifecycle) DeletedDate() (time.Time, bool) { return l.deletedAt, l.deleted }

// Roll is a steel roll tracked in the warehouse.
type Roll struct {
	ID        int64
	Length    float64
	Weight    float64
	AddedDate time.Time
	State     Lifecycle
}

// NewRoll builds an active roll added at the given time.
func NewRoll(length, weight float64, addedAt time.Time) (Roll, error) {
	if length <= 0 {
		return Roll{}, fmt.Errorf("%w: length must be greater than 0", ErrInvalidRoll)
	}
	if weight <= 0 {
		return Roll{}, fmt.Errorf("%w: weight must be greater than 0", ErrInvalidRoll)
	}
	return Roll{Length: length, Weight: weight, AddedDate: addedAt, State: Active()}, nil
}

// IsDeleted reports whether the roll has been soft deleted.
func (r Roll) IsDeleted() bool { return r.State.IsDeleted() }

// DeletedDate returns the deletion timestamp and whether it is set.
func (r Roll) DeletedDate() (time.Time, bool) { return r.State.DeletedDate() }

// MarkDeleted transitions the roll to the deleted state.
func (r *Roll) MarkDeleted(at time.Time) error {
	if r.State.IsDeleted() {
		return fmt.Errorf("%w: id %d", ErrRollAlreadyDeleted, r.ID)
	}
	if at.Before(r.AddedDate) {
		return fmt.Errorf("%w: id %d", ErrDeletedBeforeAdded, r.ID)
	}
	r.State = DeletedAt(at)
	return nil
}

// StorageDuration returns the time between addition and deletion, or false
// when the roll is still active.
func (r Roll) StorageDuration() (time.Duration, bool) {
	deletedAt, ok := r.State.DeletedDate()
	if !ok {
		return 0, false
	}
	return deletedAt.Sub(r.AddedDate), true
}

// RollDTO is the interchange shape of a roll exposed over the API.
type RollDTO struct {
	ID          int64      `json:"id"`
	Length      float64    `json:"length"`
	Weight      float64    `json:"weight"`
	AddedDate   time.Time  `json:"addedDate"`
	DeletedDate *time.Time `json:"deletedDate"`
}

// ToDTO maps a roll to its interchange shape.
func (r Roll) ToDTO() RollDTO {
	dto := RollDTO{
		ID:        r.ID,
		Length:    r.Length,
		Weight:    r.Weight,
		AddedDate: r.AddedDate,
	}
	if deletedAt, ok := r.State.DeletedDate(); ok {
		dto.DeletedDate = &deletedAt
	}
	return dto
}

// FromDTO rebuilds a roll from its interchange shape.
func FromDTO(dto RollDTO) Roll {
	roll := Roll{
		ID:        dto.ID,
		Length:    dto.Length,
		Weight:    dto.Weight,
		AddedDate: dto.AddedDate,
		State:     Active(),
	}
	if dto.DeletedDate != nil {
		roll.State = DeletedAt(*dto.DeletedDate)
	}
	return roll
}

// ToDTOs maps a slice of rolls, never returning nil.
func ToDTOs(rolls []Roll) []RollDTO {
	out := make([]RollDTO, 0, len(rolls))
	for _, r := range rolls {
		out = append(out, r.ToDTO())
	}
	return out
}

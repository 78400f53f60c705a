package models

import "errors"

var (
	// ErrInvalidRange indicates a statistics window whose start is after its end.
	ErrInvalidRange = errors.New("start date must be less than or equal to end date")

	// ErrRollNotFound indicates the requested roll doesn't exist.
	ErrRollNotFound = errors.New("roll not found")

	// ErrRollAlreadyDeleted indicates a second soft delete of the same roll.
	ErrRollAlreadyDeleted = errors.New("roll is already deleted")

	// ErrDeletedBeforeAdded indicates a deletion timestamp earlier than the roll's added date.
	ErrDeletedBeforeAdded = errors.New("deleted date cannot precede added date")

	// ErrInvalidRoll indicates roll dimensions failed validation.
	ErrInvalidRoll = errors.New("invalid roll")
)

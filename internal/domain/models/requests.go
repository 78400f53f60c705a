package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var requestValidate = validator.New()

// CreateRollRequest carries the dimensions of a new roll.
type CreateRollRequest struct {
	Length float64 `json:"length" validate:"required,gte=0.1"`
	Weight float64 `json:"weight" validate:"required,gte=0.1"`
}

// Validate checks the request dimensions.
func (r CreateRollRequest) Validate() error {
	if err := requestValidate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRoll, describe(err))
	}
	return nil
}

// StatisticsRequest carries a statistics window. Both dates are required.
type StatisticsRequest struct {
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// Validate checks that both dates are present and ordered.
func (r StatisticsRequest) Validate() error {
	if err := requestValidate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRange, describe(err))
	}
	if r.StartDate.After(r.EndDate) {
		return ErrInvalidRange
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

package models

import "time"

// Statistics aggregates inventory metrics over a date window.
type Statistics struct {
	AddedCount         int     `json:"addedCount" bson:"added_count"`
	DeletedCount       int     `json:"deletedCount" bson:"deleted_count"`
	AverageLength      float64 `json:"averageLength" bson:"average_length"`
	AverageWeight      float64 `json:"averageWeight" bson:"average_weight"`
	MinLength          float64 `json:"minLength" bson:"min_length"`
	MaxLength          float64 `json:"maxLength" bson:"max_length"`
	MinWeight          float64 `json:"minWeight" bson:"min_weight"`
	MaxWeight          float64 `json:"maxWeight" bson:"max_weight"`
	TotalWeight        float64 `json:"totalWeight" bson:"total_weight"`
	MinStorageDuration float64 `json:"minStorageDuration" bson:"min_storage_duration"`
	MaxStorageDuration float64 `json:"maxStorageDuration" bson:"max_storage_duration"`

	DayWithMinRollsCount  *time.Time `json:"dayWithMinRollsCount" bson:"day_with_min_rolls_count,omitempty"`
	DayWithMaxRollsCount  *time.Time `json:"dayWithMaxRollsCount" bson:"day_with_max_rolls_count,omitempty"`
	DayWithMinTotalWeight *time.Time `json:"dayWithMinTotalWeight" bson:"day_with_min_total_weight,omitempty"`
	DayWithMaxTotalWeight *time.Time `json:"dayWithMaxTotalWeight" bson:"day_with_max_total_weight,omitempty"`
	MinRollsCount         int        `json:"minRollsCount" bson:"min_rolls_count"`
	MaxRollsCount         int        `json:"maxRollsCount" bson:"max_rolls_count"`
	MinDayTotalWeight     float64    `json:"minDayTotalWeight" bson:"min_day_total_weight"`
	MaxDayTotalWeight     float64    `json:"maxDayTotalWeight" bson:"max_day_total_weight"`
}

// DailyStat is the count and weight of rolls in stock on one calendar day.
type DailyStat struct {
	Date        time.Time `json:"date"`
	RollsCount  int       `json:"rollsCount"`
	TotalWeight float64   `json:"totalWeight"`
}

package models

import "time"

// StatisticsReport is a periodic statistics snapshot, stored by the report
// scheduler and served by GET /api/reports.
type StatisticsReport struct {
	PeriodStart time.Time  `bson:"period_start" json:"periodStart"`
	PeriodEnd   time.Time  `bson:"period_end" json:"periodEnd"`
	Statistics  Statistics `bson:"statistics" json:"statistics"`
	Summary     string     `bson:"summary" json:"summary"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
}

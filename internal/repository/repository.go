// Package repository defines the storage ports used by the inventory service.
//
// Backends: memory (tests, ephemeral runs), sqlite (default), mongodb and
// badger. All of them assign roll ids, return models.ErrRollNotFound on a
// lookup miss, and order listings by id.
package repository

import (
	"context"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

// RollRepository persists steel rolls.
type RollRepository interface {
	// Add persists a new roll and returns it with its assigned id.
	Add(ctx context.Context, roll models.Roll) (models.Roll, error)

	// GetByID returns models.ErrRollNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (models.Roll, error)

	// Update persists a mutation of an existing roll.
	Update(ctx context.Context, roll models.Roll) (models.Roll, error)

	// GetAll returns the rolls matching filter. A nil filter returns all rolls.
	GetAll(ctx context.Context, filter *models.RollFilter) ([]models.Roll, error)

	// Snapshot returns every stored roll, deleted ones included.
	Snapshot(ctx context.Context) ([]models.Roll, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// ReportRepository persists periodic statistics reports.
type ReportRepository interface {
	SaveReport(ctx context.Context, report models.StatisticsReport) error

	// ListReports returns up to limit reports, newest first.
	ListReports(ctx context.Context, limit int) ([]models.StatisticsReport, error)
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/service/filter"
)

// RollRepository keeps rolls in memory. Data is lost on restart.
type RollRepository struct {
	mu     sync.RWMutex
	rolls  map[int64]models.Roll
	nextID int64
}

// NewRollRepository creates an empty in-memory repository.
func NewRollRepository() *RollRepository {
	return &RollRepository{
		rolls:  make(map[int64]models.Roll),
		nextID: 1,
	}
}

// Add stores a new roll and assigns its id.
func (r *RollRepository) Add(ctx context.Context, roll models.Roll) (models.Roll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roll.ID = r.nextID
	r.nextID++
	r.rolls[roll.ID] = roll
	return roll, nil
}

// GetByID retrieves a roll by id.
func (r *RollRepository) GetByID(ctx context.Context, id int64) (models.Roll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roll, ok := r.rolls[id]
	if !ok {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, id)
	}
	return roll, nil
}

// Update replaces a stored roll.
func (r *RollRepository) Update(ctx context.Context, roll models.Roll) (models.Roll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rolls[roll.ID]; !ok {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, roll.ID)
	}
	r.rolls[roll.ID] = roll
	return roll, nil
}

// GetAll returns the rolls matching f, ordered by id.
func (r *RollRepository) GetAll(ctx context.Context, f *models.RollFilter) ([]models.Roll, error) {
	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(snapshot, f), nil
}

// Snapshot returns a copy of every roll, ordered by id.
func (r *RollRepository) Snapshot(ctx context.Context) ([]models.Roll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Roll, 0, len(r.rolls))
	for _, roll := range r.rolls {
		out = append(out, roll)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close is a no-op for memory storage.
func (r *RollRepository) Close(ctx context.Context) error {
	return nil
}

// ReportRepository keeps statistics reports in memory.
type ReportRepository struct {
	mu      sync.RWMutex
	reports []models.StatisticsReport
}

// NewReportRepository creates an empty report store.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// SaveReport appends a report.
func (r *ReportRepository) SaveReport(ctx context.Context, report models.StatisticsReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports = append(r.reports, report)
	return nil
}

// ListReports returns up to limit reports, newest first. limit <= 0 returns all.
func (r *ReportRepository) ListReports(ctx context.Context, limit int) ([]models.StatisticsReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StatisticsReport, 0, len(r.reports))
	for i := len(r.reports) - 1; i >= 0; i-- {
		out = append(out, r.reports[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

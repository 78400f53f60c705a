package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/observability"
	"github.com/mamadbah2/steelrolls/internal/repository"
	"github.com/mamadbah2/steelrolls/internal/service/statistics"
)

// Service exposes the stock operations used by the HTTP handlers and the
// report scheduler.
type Service struct {
	repo    repository.RollRepository
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records inventory metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires a new inventory service instance.
func NewService(repo repository.RollRepository, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRoll validates the request and stores a new roll added now.
func (s *Service) AddRoll(ctx context.Context, req models.CreateRollRequest) (models.Roll, error) {
	if err := req.Validate(); err != nil {
		return models.Roll{}, err
	}

	roll, err := models.NewRoll(req.Length, req.Weight, s.now().UTC())
	if err != nil {
		return models.Roll{}, err
	}

	stored, err := s.repo.Add(ctx, roll)
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to add roll: %w", err)
	}

	s.metrics.RollAdded()
	s.logger.Info("roll added",
		zap.Int64("id", stored.ID),
		zap.Float64("length", stored.Length),
		zap.Float64("weight", stored.Weight))
	return stored, nil
}

// DeleteRoll soft deletes a roll. Deleting twice fails with
// models.ErrRollAlreadyDeleted.
func (s *Service) DeleteRoll(ctx context.Context, id int64) (models.Roll, error) {
	roll, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Roll{}, err
	}

	if err := roll.MarkDeleted(s.now().UTC()); err != nil {
		return models.Roll{}, err
	}

	updated, err := s.repo.Update(ctx, roll)
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to delete roll %d: %w", id, err)
	}

	s.metrics.RollDeleted()
	s.logger.Info("roll deleted", zap.Int64("id", id))
	return updated, nil
}

// GetRoll returns a single roll by id.
func (s *Service) GetRoll(ctx context.Context, id int64) (models.Roll, error) {
	return s.repo.GetByID(ctx, id)
}

// GetRolls returns the rolls matching f. A nil filter returns everything.
func (s *Service) GetRolls(ctx context.Context, f *models.RollFilter) ([]models.Roll, error) {
	rolls, err := s.repo.GetAll(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list rolls: %w", err)
	}
	return rolls, nil
}

// GetStatistics computes statistics for [start, end] over the full stock
// history, deleted rolls included.
func (s *Service) GetStatistics(ctx context.Context, start, end time.Time) (models.Statistics, error) {
	if err := (models.StatisticsRequest{StartDate: start, EndDate: end}).Validate(); err != nil {
		return models.Statistics{}, err
	}

	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("failed to snapshot rolls: %w", err)
	}

	began := time.Now()
	stats, err := statistics.Compute(snapshot, start, end)
	s.metrics.ObserveStatistics("statistics", time.Since(began))
	if err != nil {
		return models.Statistics{}, err
	}

	s.logger.Debug("statistics computed",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("snapshot", len(snapshot)))
	return stats, nil
}

// GetDailyBreakdown returns the per-day stock count and weight for every
// civil day between start and end.
func (s *Service) GetDailyBreakdown(ctx context.Context, start, end time.Time) ([]models.DailyStat, error) {
	if err := (models.StatisticsRequest{StartDate: start, EndDate: end}).Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot rolls: %w", err)
	}

	began := time.Now()
	daily, err := statistics.DailyBreakdown(snapshot, start, end)
	s.metrics.ObserveStatistics("daily", time.Since(began))
	return daily, err
}

package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/observability"
	"github.com/mamadbah2/steelrolls/internal/repository"
)

const dateLayout = "2006-01-02"

// StatisticsSource computes statistics for a window.
type StatisticsSource interface {
	GetStatistics(ctx context.Context, start, end time.Time) (models.Statistics, error)
}

// Exporter receives a copy of every stored report.
type Exporter interface {
	ExportReport(ctx context.Context, report models.StatisticsReport) error
}

// Notifier delivers the report to an external recipient.
type Notifier interface {
	SendReport(ctx context.Context, report models.StatisticsReport) error
}

// Service builds periodic stock reports and fans them out to the configured sinks.
type Service struct {
	stats    StatisticsSource
	store    repository.ReportRepository
	exporter Exporter
	notifier Notifier
	window   time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// Config wires the optional sinks. Nil Exporter or Notifier disables them.
type Config struct {
	WindowDays int
	Exporter   Exporter
	Notifier   Notifier
	Metrics    *observability.Metrics
}

// NewService wires a new reporting service instance.
func NewService(stats StatisticsSource, store repository.ReportRepository, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	days := cfg.WindowDays
	if days < 1 {
		days = 7
	}
	return &Service{
		stats:    stats,
		store:    store,
		exporter: cfg.Exporter,
		notifier: cfg.Notifier,
		window:   time.Duration(days) * 24 * time.Hour,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// GenerateReport computes statistics for the window ending at now, stores
// the report and forwards it to the optional sinks. Only a storage failure
// is returned; sink failures are logged.
func (s *Service) GenerateReport(ctx context.Context, now time.Time) (models.StatisticsReport, error) {
	end := now.UTC()
	start := end.Add(-s.window)

	stats, err := s.stats.GetStatistics(ctx, start, end)
	if err != nil {
		return models.StatisticsReport{}, fmt.Errorf("compute report statistics: %w", err)
	}

	report := models.StatisticsReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Statistics:  stats,
		Summary:     Summarize(start, end, stats),
		CreatedAt:   end,
	}

	err = s.store.SaveReport(ctx, report)
	s.metrics.ReportDelivered("store", err)
	if err != nil {
		return models.StatisticsReport{}, fmt.Errorf("save report: %w", err)
	}

	if s.exporter != nil {
		err := s.exporter.ExportReport(ctx, report)
		s.metrics.ReportDelivered("sheets", err)
		if err != nil {
			s.logger.Warn("failed to export report to sheets", zap.Error(err))
		}
	}

	if s.notifier != nil {
		err := s.notifier.SendReport(ctx, report)
		s.metrics.ReportDelivered("webhook", err)
		if err != nil {
			s.logger.Warn("failed to notify report webhook", zap.Error(err))
		}
	}

	s.logger.Info("report generated",
		zap.Time("period_start", start),
		zap.Time("period_end", end),
		zap.Int("added", stats.AddedCount),
		zap.Int("deleted", stats.DeletedCount))
	return report, nil
}

// ListReports returns the latest stored reports, newest first.
func (s *Service) ListReports(ctx context.Context, limit int) ([]models.StatisticsReport, error) {
	reports, err := s.store.ListReports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Summarize renders a short plain-text digest of stats.
func Summarize(start, end time.Time, stats models.Statistics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Stock report (%s-%s): %d rolls added, %d removed.",
		start.Format(dateLayout), end.Format(dateLayout), stats.AddedCount, stats.DeletedCount)

	if stats.AddedCount == 0 {
		b.WriteString(" No rolls received in this period.")
	} else {
		fmt.Fprintf(&b, " Stock weight %.2f kg, average roll %.2f m / %.2f kg.",
			stats.TotalWeight, stats.AverageLength, stats.AverageWeight)
	}

	if stats.DayWithMaxRollsCount != nil {
		fmt.Fprintf(&b, " Peak stock %d rolls on %s.", stats.MaxRollsCount, stats.DayWithMaxRollsCount.Format(dateLayout))
	}

	if stats.DeletedCount > 0 {
		fmt.Fprintf(&b, " Storage time %.1f-%.1f days.", stats.MinStorageDuration, stats.MaxStorageDuration)
	}

	return b.String()
}

package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/config"
	"github.com/mamadbah2/steelrolls/internal/domain/models"
	"github.com/mamadbah2/steelrolls/internal/observability"
)

const (
	maintenanceSchedule = "@every 10m"
	gcDiscardRatio      = 0.5
)

// ReportGenerator produces one periodic report.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, now time.Time) (models.StatisticsReport, error)
}

// Maintainer is implemented by stores that need periodic compaction.
type Maintainer interface {
	RunGC(discardRatio float64) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	reports    ReportGenerator
	maintainer Maintainer
	schedule   string
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance. maintainer may be nil.
func NewScheduler(cfg config.ReportingConfig, reports ReportGenerator, maintainer Maintainer, metrics *observability.Metrics, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:       c,
		reports:    reports,
		maintainer: maintainer,
		schedule:   cfg.CronSchedule,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("report_schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.generateReport); err != nil {
		return err
	}

	if s.maintainer != nil {
		if _, err := s.cron.AddFunc(maintenanceSchedule, s.runMaintenance); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) generateReport() {
	s.logger.Info("generating periodic report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.reports.GenerateReport(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to generate periodic report", zap.Error(err))
		return
	}

	s.logger.Info("periodic report stored", zap.String("summary", report.Summary))
}

func (s *Scheduler) runMaintenance() {
	err := s.maintainer.RunGC(gcDiscardRatio)
	s.metrics.MaintenanceRun(err)
	if err != nil {
		s.logger.Warn("storage maintenance failed", zap.Error(err))
	}
}

package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/steelrolls/internal/config"
	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReportExporter appends one row per statistics report.
type ReportExporter struct {
	repo       Repository
	sheetRange string
}

// NewReportExporter writes report rows into sheetRange through repo.
func NewReportExporter(repo Repository, sheetRange string) *ReportExporter {
	return &ReportExporter{repo: repo, sheetRange: sheetRange}
}

// ExportReport appends the report as a single row.
func (e *ReportExporter) ExportReport(ctx context.Context, report models.StatisticsReport) error {
	return e.repo.WriteRow(ctx, e.sheetRange, ReportRow(report))
}

// ReportRow flattens a report in column order: created at, period, counts,
// lengths, weights, storage durations, then the extremal days.
func ReportRow(report models.StatisticsReport) []interface{} {
	s := report.Statistics
	return []interface{}{
		report.CreatedAt.Format(time.RFC3339),
		report.PeriodStart.Format(dateLayout),
		report.PeriodEnd.Format(dateLayout),
		s.AddedCount,
		s.DeletedCount,
		s.AverageLength,
		s.MinLength,
		s.MaxLength,
		s.AverageWeight,
		s.MinWeight,
		s.MaxWeight,
		s.TotalWeight,
		s.MinStorageDuration,
		s.MaxStorageDuration,
		formatDay(s.DayWithMinRollsCount),
		s.MinRollsCount,
		formatDay(s.DayWithMaxRollsCount),
		s.MaxRollsCount,
		formatDay(s.DayWithMinTotalWeight),
		formatDay(s.DayWithMaxTotalWeight),
	}
}

func formatDay(day *time.Time) string {
	if day == nil {
		return ""
	}
	return day.Format(dateLayout)
}

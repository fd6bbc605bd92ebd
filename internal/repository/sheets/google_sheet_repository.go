package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// DailyReportRange is where fleet reports are appended. Column A holds the report date.
const (
	DailyReportRange     = "Relatorios!A:H"
	dailyReportDateRange = "Relatorios!A:A"
	reportDateLayout     = "2006-01-02"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	return NewWithOptions(ctx, cfg.SpreadsheetID, logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

// NewWithOptions builds the repository from explicit client options.
func NewWithOptions(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
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

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// AppendDailyReport writes one report row, unless a row for the same date exists.
func (r *GoogleSheetRepository) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	date := report.Date.Format(reportDateLayout)

	rows, err := r.ReadRange(ctx, dailyReportDateRange)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) > 0 && fmt.Sprint(row[0]) == date {
			r.logger.Info("daily report already exported", zap.String("date", date))
			return nil
		}
	}

	return r.WriteRow(ctx, DailyReportRange, ReportRow(report))
}

// ReportRow lays out a report as: date, motos, stocks, ok, alerting, low battery,
// events in period, events by type.
func ReportRow(report models.DailyReport) []interface{} {
	alerting := 0
	for status, n := range report.StatusCounts {
		if status != models.StatusOK && status != models.StatusUnknown {
			alerting += n
		}
	}

	return []interface{}{
		report.Date.Format(reportDateLayout),
		report.MotosTotal,
		report.StocksTotal,
		report.StatusCounts[models.StatusOK],
		alerting,
		report.LowBattery,
		report.EventsInPeriod,
		formatCounts(report.EventCounts),
	}
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, "; ")
}

package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/domain/models"
)

// ExpiryRange is where sweep snapshots are appended: date, id, name,
// best before, severity.
const ExpiryRange = "Expiry!A:E"

// Exporter publishes an expiry report somewhere outside the API.
type Exporter interface {
	ExportExpiry(ctx context.Context, report models.ExpiryReport) error
}

// GoogleSheetExporter appends expiry snapshots to a spreadsheet using the
// official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

var _ Exporter = (*GoogleSheetExporter)(nil)

// NewGoogleSheetExporter builds a Sheets exporter from a service account
// credentials file.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetExporter, error) {
	return newExporter(ctx, cfg.SpreadsheetID, logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
}

func newExporter(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// ExportExpiry appends one row per food in a single call. Empty reports
// write nothing.
func (e *GoogleSheetExporter) ExportExpiry(ctx context.Context, report models.ExpiryReport) error {
	rows := Rows(report)
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, ExpiryRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", ExpiryRange, err)
	}

	e.logger.Debug("expiry snapshot appended", zap.Int("rows", len(rows)), zap.String("range", ExpiryRange))
	return nil
}

// Rows lays a report out as sheet rows.
func Rows(report models.ExpiryReport) [][]interface{} {
	rows := make([][]interface{}, 0, len(report.Items))
	for _, item := range report.Items {
		rows = append(rows, []interface{}{
			report.Date.String(),
			item.ID,
			item.Name,
			item.BestBeforeDate.String(),
			string(item.Severity),
		})
	}
	return rows
}

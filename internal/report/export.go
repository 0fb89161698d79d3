package report

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// Supported export formats.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// ErrUnsupportedFormat is returned for export formats other than pdf and csv.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportResult describes a simulated export. No file is produced.
type ExportResult struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// Export simulates exporting the report. It only acknowledges the request.
func Export(format string, r store.Report) (ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case FormatPDF, FormatCSV:
	default:
		return ExportResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	res := ExportResult{
		Format:   format,
		Filename: fmt.Sprintf("expense_report_%s.%s", r.Today, format),
		Message:  fmt.Sprintf("Simulating %s export...", strings.ToUpper(format)),
	}

	logger.Log.Info().
		Str("format", format).
		Int("days", len(r.Days)).
		Int64("total", r.Total).
		Msg(res.Message)

	return res, nil
}

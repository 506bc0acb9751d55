package batch

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// ExportFormat defines the output format for reports.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ParseExportFormat parses a string to ExportFormat.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch s {
	case "json":
		return ExportJSON, true
	case "csv":
		return ExportCSV, true
	default:
		return "", false
	}
}

// Exporter writes batch reports.
type Exporter struct {
	format ExportFormat
	writer io.Writer
}

// NewExporter creates an exporter for the given format.
func NewExporter(format ExportFormat, w io.Writer) *Exporter {
	return &Exporter{
		format: format,
		writer: w,
	}
}

// ExportReport writes the report in the configured format.
func (e *Exporter) ExportReport(report *Report) error {
	switch e.format {
	case ExportCSV:
		return e.exportReportCSV(report)
	default:
		return e.exportReportJSON(report)
	}
}

func (e *Exporter) exportReportJSON(report *Report) error {
	encoder := json.NewEncoder(e.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (e *Exporter) exportReportCSV(report *Report) error {
	w := csv.NewWriter(e.writer)

	w.Write([]string{"unique_id", "status", "path", "bytes", "duration_ms", "error"})
	for _, it := range report.Items {
		w.Write([]string{
			it.UniqueID,
			it.Status,
			it.Path,
			strconv.FormatInt(it.Bytes, 10),
			strconv.FormatInt(it.DurationMS, 10),
			it.Error,
		})
	}

	w.Flush()
	return w.Error()
}

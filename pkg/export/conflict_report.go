package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ConflictRow is one rendered line of a dry-run conflict report.
type ConflictRow struct {
	EventA    string
	EventB    string
	Dimension string
	Severity  string
	Detail    string
}

// ConflictReport aggregates the dry-run conflict visualization for export.
type ConflictReport struct {
	Title         string
	Operation     string
	AffectedCount int
	TotalCount    int
	CriticalCount int
	Rows          []ConflictRow
	Warnings      []string
}

var conflictHeaders = []string{"Event A", "Event B", "Dimension", "Severity", "Detail"}

// ConflictReportExporter renders conflict reports to PDF or CSV.
type ConflictReportExporter struct{}

// NewConflictReportExporter constructs an exporter.
func NewConflictReportExporter() *ConflictReportExporter {
	return &ConflictReportExporter{}
}

// RenderPDF produces a tabular PDF of the report.
func (e *ConflictReportExporter) RenderPDF(report ConflictReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := report.Title
	if title == "" {
		title = "Conflict Report"
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("Operation: %s   Affected entries: %d   Conflicts: %d (%d critical)",
		report.Operation, report.AffectedCount, report.TotalCount, report.CriticalCount), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	widths := []float64{45, 45, 30, 25, 132}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range conflictHeaders {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Rows {
		cells := []string{row.EventA, row.EventB, row.Dimension, row.Severity, row.Detail}
		for i, value := range cells {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(report.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Warnings", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, warning := range report.Warnings {
			pdf.CellFormat(0, 6, "- "+warning, "", 1, "L", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render conflict report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCSV produces CSV bytes of the report rows.
func (e *ConflictReportExporter) RenderCSV(report ConflictReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(conflictHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range report.Rows {
		record := []string{row.EventA, row.EventB, row.Dimension, row.Severity, row.Detail}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

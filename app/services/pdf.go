package services

import (
	"bytes"
	"fmt"

	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"github.com/jung-kurt/gofpdf"
)

// PDFReportGenerator renders a person's monthly project summary as a PDF.
type PDFReportGenerator struct{}

func (g *PDFReportGenerator) RenderPDF(projectName string, summary *models.PersonProjectSummary, logID int64) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Vendor Payment Summary - %s", projectName), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Vendor Payment Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Project: %s", projectName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Name: %s", summary.CFName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Email: %s", summary.CFEmail), "", 1, "L", false, 0, "")
	if summary.CFTier != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Tier: %s", summary.CFTier), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Entries table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 8, "Task", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Hours", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Pay", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, entry := range summary.DetailedEntries {
		pdf.CellFormat(60, 8, entry.TaskName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, entry.SubmissionDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", entry.WorkHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("$%.2f", entry.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("$%.2f", entry.EntryPay), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(145, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("$%.2f", summary.TotalPayForProject), "1", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Reference: VPS-%d", logID), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %v", err)
	}
	return buf.Bytes(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a user's detection history as a PDF document.
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/haircheck/pkg/types"
)

// DetectionHistory writes a PDF listing dets, one line per detection,
// newest-first as given. Page breaks are handled by the layout engine.
func DetectionHistory(w io.Writer, userID string, dets []types.Detection) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Detection history")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("User: %s", userID))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 8, "Class", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Confidence", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Detected", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, d := range dets {
		pdf.CellFormat(70, 7, d.Class, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", d.Confidence), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, d.DetectedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Package export renders department reports as downloadable XLSX and
// PDF files.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"latecomer/internal/clock"
	"latecomer/internal/report"
)

const sheetName = "Attendance"

var columns = []string{"Roll No", "Name", "Department", "Batch", "Date", "Time", "Status"}

// Excel renders report rows as an XLSX workbook.
func Excel(title string, rows []report.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "G1", headerStyle)
	f.SetRowHeight(sheetName, 1, 25)

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheetName, cell, col)
	}
	headRowStart, _ := excelize.CoordinatesToCellName(1, 3)
	headRowEnd, _ := excelize.CoordinatesToCellName(len(columns), 3)
	f.SetCellStyle(sheetName, headRowStart, headRowEnd, headerStyle)

	for i, r := range rows {
		values := []any{r.RollNo, r.Name, r.Department, r.Batch, clock.DateKey(r.Date), clock.TimeOfDay(r.Date), r.Status}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+4)
			f.SetCellValue(sheetName, cell, v)
		}
	}
	f.SetColWidth(sheetName, "A", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF renders report rows as an A4 table.
func PDF(title string, rows []report.Row) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	widths := []float64{25, 45, 25, 25, 25, 25, 20}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		cells := []string{r.RollNo, r.Name, r.Department, r.Batch, clock.DateKey(r.Date), clock.TimeOfDay(r.Date), r.Status}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(sum(widths), 7, "No records in the selected range", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sum(widths []float64) float64 {
	var total float64
	for _, w := range widths {
		total += w
	}
	return total
}

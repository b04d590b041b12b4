// Package exportsvc renders recap reports as xlsx and pdf files and reads rosters from xlsx files.
package exportsvc

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/absensi/core/attendance"
)

// SheetName is the name of the worksheet holding the report.
const SheetName = "Rekap"

const (
	headerFill   = "#4472C4"
	generatedFmt = "02/01/2006 15:04"
)

type Renderer struct{}

var _ attendance.Renderer = (*Renderer)(nil)

func NewRenderer() *Renderer { return &Renderer{} }

func (Renderer) RenderXLSX(r attendance.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(idx)
	if err = f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "deleting default sheet")
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, errors.Wrap(err, "creating title style")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}
	footerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating footer style")
	}

	preamble := [][]interface{}{
		{r.Title},
		{r.SchoolName},
		{"Kelas: " + r.Class},
		{"Dibuat: " + r.GeneratedAt.Format(generatedFmt)},
	}
	row := 1
	for _, line := range preamble {
		if err = setRow(f, row, line); err != nil {
			return nil, err
		}
		row++
	}
	if err = f.SetCellStyle(SheetName, "A1", "A1", titleStyle); err != nil {
		return nil, errors.Wrap(err, "styling title")
	}
	row++ // blank line

	headerRow := row
	for _, line := range r.Table {
		if err = setRow(f, row, line); err != nil {
			return nil, err
		}
		row++
	}
	lastCol := len(attendance.TableHeader)
	if err = styleRow(f, headerRow, lastCol, headerStyle); err != nil {
		return nil, err
	}
	if len(r.Table) >= 3 {
		// TOTAL and PERSEN
		for _, fr := range []int{row - 2, row - 1} {
			if err = styleRow(f, fr, lastCol, footerStyle); err != nil {
				return nil, err
			}
		}
	}

	if err = f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}
	if err = f.SetColWidth(SheetName, "B", "G", 10); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing xlsx")
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	return errors.Wrapf(f.SetSheetRow(SheetName, cell, &cells), "writing row %d", row)
}

func styleRow(f *excelize.File, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	return errors.Wrapf(f.SetCellStyle(SheetName, first, last, style), "styling row %d", row)
}

// column widths (mm) of the pdf table, landscape A4
var pdfWidths = []float64{90, 35, 25, 25, 25, 25, 30}

func (Renderer) RenderPDF(r attendance.Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	if r.SchoolName != "" {
		pdf.CellFormat(0, 7, tr(r.SchoolName), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 7, tr("Kelas: "+r.Class), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i, line := range r.Table {
		switch {
		case i == 0:
			pdf.SetFont("Arial", "B", 11)
			pdf.SetFillColor(0x44, 0x72, 0xC4)
			pdf.SetTextColor(0xFF, 0xFF, 0xFF)
		case i >= len(r.Table)-2:
			pdf.SetFont("Arial", "B", 10)
			pdf.SetFillColor(0xE7, 0xE6, 0xE6)
			pdf.SetTextColor(0, 0, 0)
		default:
			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(0, 0, 0)
		}
		fill := i == 0 || i >= len(r.Table)-2
		for j, cell := range line {
			if j >= len(pdfWidths) {
				break
			}
			align := "C"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(pdfWidths[j], 7, tr(fmt.Sprint(cell)), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "Dibuat pada: "+r.GeneratedAt.Format(generatedFmt), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}

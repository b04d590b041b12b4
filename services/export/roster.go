package exportsvc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/absensi/core/roster"
)

const maxImportRows = 2000

var (
	ErrImportNoData      = errors.New("the file has no student rows (the first row is the header)")
	ErrImportBadHeader   = errors.New("the header must have the Nama and NISN columns")
	ErrImportTooManyRows = errors.Errorf("the file has more than %d student rows", maxImportRows)
	ErrImportUnreadable  = errors.New("the file is not a readable xlsx workbook")
)

// ParseRoster reads students from the first sheet of an xlsx file.
// Columns are found by header (Nama, NISN, Kelas), in any order; the class column is optional
// and defaults to class. Blank rows are skipped.
func ParseRoster(r io.Reader, class string) (roster.BulkStudents, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return roster.BulkStudents{}, errors.Wrap(ErrImportUnreadable, err.Error())
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return roster.BulkStudents{}, errors.Wrap(err, "reading sheet")
	}
	if len(rows) < 2 {
		return roster.BulkStudents{}, ErrImportNoData
	}

	cols := headerIndex(rows[0])
	if cols["nama"] < 0 || cols["nisn"] < 0 {
		return roster.BulkStudents{}, ErrImportBadHeader
	}

	cell := func(row []string, col string) string {
		if i := cols[col]; i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	bs := roster.BulkStudents{Class: class}
	for _, row := range rows[1:] {
		ns := roster.NewStudent{
			Name:  cell(row, "nama"),
			NISN:  cell(row, "nisn"),
			Class: cell(row, "kelas"),
		}
		if ns.Name == "" && ns.NISN == "" && ns.Class == "" {
			continue
		}
		bs.Students = append(bs.Students, ns)
	}

	switch {
	case len(bs.Students) == 0:
		return roster.BulkStudents{}, ErrImportNoData
	case len(bs.Students) > maxImportRows:
		return roster.BulkStudents{}, ErrImportTooManyRows
	}
	return bs, nil
}

func headerIndex(header []string) map[string]int {
	idx := map[string]int{"nama": -1, "nisn": -1, "kelas": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "nama", "name", "nama siswa":
			idx["nama"] = i
		case "nisn":
			idx["nisn"] = i
		case "kelas", "class":
			idx["kelas"] = i
		}
	}
	return idx
}

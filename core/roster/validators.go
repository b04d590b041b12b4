package roster

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/absensi/core"
)

var (
	countMismatchTag  = "count_mismatch"
	countMismatchText = "names and NISNs must have the same number of entries"

	emptyBulkTag  = "empty_bulk"
	emptyBulkText = "at least one student is required"

	bulkNISNTag  = "bulk_nisn"
	bulkNISNText = "every NISN must contain digits only"

	bulkNameTag  = "bulk_name"
	bulkNameText = "every name is required"
)

// InitValidators registers the roster struct validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(bulkStructValidation, BulkStudents{})
	core.RegisterCustomTranslation(validate, translator, countMismatchTag, countMismatchText)
	core.RegisterCustomTranslation(validate, translator, emptyBulkTag, emptyBulkText)
	core.RegisterCustomTranslation(validate, translator, bulkNISNTag, bulkNISNText)
	core.RegisterCustomTranslation(validate, translator, bulkNameTag, bulkNameText)
}

// bulkStructValidation checks the parallel lists of a BulkStudents.
func bulkStructValidation(sl validator.StructLevel) {
	bs := sl.Current().Interface().(BulkStudents)

	if len(bs.Names) != len(bs.NISNs) {
		sl.ReportError(bs.NISNs, "nisns", "NISNs", countMismatchTag, "")
		return
	}
	if len(bs.Names) == 0 && len(bs.Students) == 0 {
		sl.ReportError(bs.Students, "students", "Students", emptyBulkTag, "")
		return
	}
	if len(bs.Names) > 0 && bs.Class == "" {
		sl.ReportError(bs.Class, "kelas", "Class", "notblank", "")
	}
	for _, name := range bs.Names {
		if name == "" {
			sl.ReportError(bs.Names, "names", "Names", bulkNameTag, "")
			break
		}
	}
	for _, nisn := range bs.NISNs {
		if !isDigits(nisn) {
			sl.ReportError(bs.NISNs, "nisns", "NISNs", bulkNISNTag, "")
			break
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

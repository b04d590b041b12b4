package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/absensi/core"
)

// Period is the time window of a recap.
type Period string

const (
	Monthly  Period = "monthly"
	Semester Period = "semester"
)

type (
	// RecapQuery selects a monthly (Month) or semester (Semester) recap.
	RecapQuery struct {
		Period   Period `json:"-" param:"period"`
		Class    string `json:"kelas" query:"kelas"`
		Month    string `json:"bulan" query:"bulan"` // number or indonesian name
		Semester int    `json:"semester" query:"semester"`
		Name     string `json:"nama" query:"nama"`

		month time.Month
	}

	HistoryQuery struct {
		Session  string `query:"session"`
		Class    string `query:"kelas"`
		Month    string `query:"bulan"`
		Semester int    `query:"semester"`
		Name     string `query:"nama"`
		Date     string `query:"tanggal"` // yyyy-mm-dd or dd/mm/yyyy
	}

	// EditRequest overrides the status of one history record.
	EditRequest struct {
		Date   string `json:"tanggal" validate:"notblank"` // dd/mm/yyyy or yyyy-mm-dd
		NISN   string `json:"nisn" validate:"required"`
		Status string `json:"status" validate:"attendance_status"`
	}

	SheetEntry struct {
		NISN   string `json:"nisn" validate:"required"`
		Name   string `json:"nama"`
		Class  string `json:"kelas"`
		Status Status `json:"status" validate:"omitempty,attendance_status"`
	}

	// Submission is a daily attendance sheet filled by staff.
	Submission struct {
		Date    string       `json:"tanggal" validate:"required,picker_date"` // yyyy-mm-dd
		Class   string       `json:"kelas"`
		Entries []SheetEntry `json:"entries" validate:"required,min=1,dive"`
	}

	MailRequest struct {
		To   []string `json:"to" validate:"required,min=1,dive,email"`
		Note string   `json:"note"`
	}
)

// Validate checks the query and resolves its month.
func (q *RecapQuery) Validate() error {
	q.Class = core.CleanString(q.Class)
	if q.Class == "" {
		q.Class = All
	}
	q.Name = core.CleanString(q.Name)

	switch q.Period {
	case Monthly:
		m, err := ParseMonth(q.Month)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "bulan", Error: "month must be 1-12 or a month name"})
		}
		q.month = m
	case Semester:
		if q.Semester != 1 && q.Semester != 2 {
			return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
		}
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "period", Error: "period must be monthly or semester"})
	}
	return nil
}

// Label names the recap window, e.g. "Mei" or "Semester 1".
func (q RecapQuery) Label() string {
	if q.Period == Monthly {
		name := MonthName(q.month)
		if name == "" {
			return ""
		}
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("Semester %d", q.Semester)
}

func (q HistoryQuery) criteria() (Criteria, error) {
	c := Criteria{
		Class:    q.Class,
		Name:     q.Name,
		Semester: q.Semester,
	}
	if q.Semester != 0 && q.Semester != 1 && q.Semester != 2 {
		return c, core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
	}
	if month := core.CleanString(q.Month); month != "" && month != All {
		m, err := ParseMonth(month)
		if err != nil {
			return c, core.NewValidationError(nil, core.FieldError{Field: "bulan", Error: "month must be 1-12 or a month name"})
		}
		c.Month = int(m)
	}
	if date := core.CleanString(q.Date); date != "" {
		wire, err := normalizeEditDate(date)
		if err != nil {
			return c, core.NewValidationError(nil, core.FieldError{Field: "tanggal", Error: "date must be yyyy-mm-dd or dd/mm/yyyy"})
		}
		c.Date = wire
	}
	return c, nil
}

func (er *EditRequest) Validate(validate *validator.Validate) error {
	er.Date = core.CleanString(er.Date)
	er.NISN = core.CleanString(er.NISN)
	er.Status = core.CleanString(er.Status)
	if err := validate.Struct(er); err != nil {
		return err
	}
	wire, err := normalizeEditDate(er.Date)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "tanggal", Error: "date must be yyyy-mm-dd or dd/mm/yyyy"})
	}
	er.Date = wire
	return nil
}

func (sub *Submission) Validate(validate *validator.Validate) error {
	sub.Date = core.CleanString(sub.Date)
	sub.Class = core.CleanString(sub.Class)
	for i := range sub.Entries {
		e := &sub.Entries[i]
		e.NISN = core.CleanString(e.NISN)
		e.Name = core.CleanString(e.Name)
		e.Class = core.NormalizeOptional(e.Class).String
		e.Status = Status(core.CleanString(e.Status.String()))
		if e.Class == "" && sub.Class != All {
			e.Class = sub.Class
		}
	}
	return validate.Struct(sub)
}

func (mr *MailRequest) Validate(validate *validator.Validate) error {
	for i := range mr.To {
		mr.To[i] = core.CleanString(mr.To[i])
	}
	mr.Note = core.CleanString(mr.Note)
	return validate.Struct(mr)
}

// normalizeEditDate accepts a picker or a wire date and returns the wire date.
func normalizeEditDate(s string) (string, error) {
	if wire, err := ToWireDate(s); err == nil {
		return wire, nil
	}
	d, err := ParseWireDate(s)
	if err != nil {
		return "", err
	}
	return d.Format(WireDateLayout), nil
}

package roster

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absensi/core"
)

// Student is a roster entry. ID falls back to the NISN when the remote endpoint omits it.
type Student struct {
	ID    string      `json:"id"`
	Name  null.String `json:"nama"`
	NISN  null.String `json:"nisn"`
	Class null.String `json:"kelas"`
}

// NewStudent contains information needed to add a student.
type NewStudent struct {
	NISN  string `json:"nisn" validate:"required,nisn"`
	Name  string `json:"nama" validate:"notblank"`
	Class string `json:"kelas" validate:"notblank"`
}

func (ns *NewStudent) clean() {
	ns.NISN = core.CleanString(ns.NISN)
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.NormalizeOptional(ns.Class).String
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.clean()
	return validate.Struct(ns)
}

// UpdateStudent defines what may be provided to modify a student; OldNISN identifies it.
type UpdateStudent struct {
	OldNISN string `json:"-" validate:"required"`
	NewStudent
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.OldNISN = core.CleanString(us.OldNISN)
	us.clean()
	return validate.Struct(us)
}

// BulkStudents adds many students at once, either as full entries or as parallel
// name/NISN lists sharing one class.
type BulkStudents struct {
	Class    string       `json:"kelas"`
	Names    []string     `json:"names"`
	NISNs    []string     `json:"nisns"`
	Students []NewStudent `json:"students" validate:"dive"`
}

func (bs *BulkStudents) Validate(validate *validator.Validate) error {
	bs.Class = core.NormalizeOptional(bs.Class).String
	for i := range bs.Names {
		bs.Names[i] = core.CleanString(bs.Names[i])
	}
	for i := range bs.NISNs {
		bs.NISNs[i] = core.CleanString(bs.NISNs[i])
	}
	for i := range bs.Students {
		bs.Students[i].clean()
		if bs.Students[i].Class == "" {
			bs.Students[i].Class = bs.Class
		}
	}
	return validate.Struct(bs)
}

// All returns the students to add, parallel lists first.
func (bs BulkStudents) All() []NewStudent {
	out := make([]NewStudent, 0, len(bs.Names)+len(bs.Students))
	for i, name := range bs.Names {
		out = append(out, NewStudent{NISN: bs.NISNs[i], Name: name, Class: bs.Class})
	}
	return append(out, bs.Students...)
}

// QueryFilter narrows the roster; empty or "Semua" fields match everything.
type QueryFilter struct {
	Class string `query:"kelas"`
	Name  string `query:"nama"`
}

func (f QueryFilter) matches(s Student) bool {
	class := core.CleanString(f.Class)
	if class != "" && class != all && s.Class.String != class {
		return false
	}
	name := core.CleanString(f.Name, true /* lower */)
	if name != "" && name != strings.ToLower(all) && !strings.Contains(strings.ToLower(s.Name.String), name) {
		return false
	}
	return true
}

package roster

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/absensi/core"
)

func newValidator() (*validator.Validate, func(error) map[string]string) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	fields := func(err error) map[string]string {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		out := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			out[fe.Field()] = fe.Translate(translator)
		}
		return out
	}
	return validate, fields
}

func TestNewStudent_Validate(t *testing.T) {
	validate, fields := newValidator()

	ns := NewStudent{NISN: " 0012 ", Name: " Ani ", Class: " 7A "}
	assert.NoError(t, ns.Validate(validate))
	assert.Equal(t, NewStudent{NISN: "0012", Name: "Ani", Class: "7A"}, ns)

	bad := NewStudent{NISN: "12x", Name: " ", Class: "null"}
	got := fields(bad.Validate(validate))
	assert.Equal(t, map[string]string{
		"nisn":  "NISN must contain digits only",
		"nama":  "this field is required",
		"kelas": "this field is required",
	}, got)

	us := UpdateStudent{NewStudent: NewStudent{NISN: "1", Name: "Ani", Class: "7A"}}
	assert.Contains(t, fields(us.Validate(validate)), "OldNISN")
}

func TestBulkStudents_Validate(t *testing.T) {
	validate, fields := newValidator()

	tests := []struct {
		name      string
		bulk      BulkStudents
		wantField string
	}{
		{
			name: "parallel lists",
			bulk: BulkStudents{Class: "7A", Names: []string{"Ani", "Budi"}, NISNs: []string{"1", "2"}},
		},
		{
			name: "entries inherit the class",
			bulk: BulkStudents{Class: "7A", Students: []NewStudent{{NISN: "1", Name: "Ani"}}},
		},
		{
			name:      "count mismatch",
			bulk:      BulkStudents{Class: "7A", Names: []string{"Ani", "Budi"}, NISNs: []string{"1"}},
			wantField: "nisns",
		},
		{
			name:      "empty",
			bulk:      BulkStudents{Class: "7A"},
			wantField: "students",
		},
		{
			name:      "missing class",
			bulk:      BulkStudents{Names: []string{"Ani"}, NISNs: []string{"1"}},
			wantField: "kelas",
		},
		{
			name:      "bad nisn",
			bulk:      BulkStudents{Class: "7A", Names: []string{"Ani"}, NISNs: []string{"A1"}},
			wantField: "nisns",
		},
		{
			name:      "blank name",
			bulk:      BulkStudents{Class: "7A", Names: []string{" "}, NISNs: []string{"1"}},
			wantField: "names",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bulk.Validate(validate)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fields(err), tt.wantField)
		})
	}

	bs := BulkStudents{Class: "7A", Names: []string{"Ani"}, NISNs: []string{"1"}, Students: []NewStudent{{NISN: "2", Name: "Budi", Class: "8"}}}
	assert.NoError(t, bs.Validate(validate))
	assert.Equal(t, []NewStudent{{NISN: "1", Name: "Ani", Class: "7A"}, {NISN: "2", Name: "Budi", Class: "8"}}, bs.All())
}

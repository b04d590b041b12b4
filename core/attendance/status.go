package attendance

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
)

// Status is the attendance of a student on a date.
type Status string

const (
	Present      Status = "Hadir"
	ExcusedLeave Status = "Izin"
	Sick         Status = "Sakit"
	Absent       Status = "Alpha"

	// Unmarked is the zero Status: no entry was recorded.
	Unmarked Status = ""
)

// Statuses in report column order.
var Statuses = []Status{Present, Absent, ExcusedLeave, Sick}

var ErrInvalidStatus = errors.New("invalid attendance status")

// ParseStatus accepts exactly the four status labels, ignoring surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return Unmarked, errors.Wrapf(ErrInvalidStatus, "%q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case Present, ExcusedLeave, Sick, Absent:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Policy decides how records without a status are counted and pre-filled.
type Policy struct {
	// UnmarkedDefault is the status assumed for unmarked records.
	// Unmarked keeps them apart (StatusSummary.Unmarked).
	UnmarkedDefault Status
}

// DefaultPolicy counts unmarked records as present.
func DefaultPolicy() Policy {
	return Policy{UnmarkedDefault: Present}
}

// NoDefault is the configuration value keeping unmarked records apart.
const NoDefault = "none"

// NewPolicy builds the Policy described by the attendance configuration.
// An empty value or NoDefault keeps unmarked records unmarked.
func NewPolicy(conf core.AttendanceConfig) (Policy, error) {
	if v := strings.TrimSpace(conf.UnmarkedDefault); v == "" || strings.EqualFold(v, NoDefault) {
		return Policy{UnmarkedDefault: Unmarked}, nil
	}
	st, err := ParseStatus(conf.UnmarkedDefault)
	if err != nil {
		return Policy{}, errors.Wrap(err, "attendance.unmarkedDefault")
	}
	return Policy{UnmarkedDefault: st}, nil
}

// Resolve returns the status a record counts as under the policy.
func (p Policy) Resolve(s Status) Status {
	if s == Unmarked {
		return p.UnmarkedDefault
	}
	return s
}

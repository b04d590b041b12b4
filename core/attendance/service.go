package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/roster"
)

// AttendanceSheet is the spreadsheet tab holding daily attendance.
const AttendanceSheet = "Absensi"

type (
	// Remote is the attendance side of the remote endpoint.
	Remote interface {
		UpdateSender
		SchoolInfo(ctx context.Context) (SchoolInfo, error)
		MonthlyRecap(ctx context.Context, class string, month time.Month) ([]RecapRow, error)
		SemesterRecap(ctx context.Context, class string, semester int) ([]RecapRow, error)
		GraphData(ctx context.Context, class string, semester int) (GraphData, error)
		AttendanceHistory(ctx context.Context) ([]HistoryRow, error)
		SubmitAttendance(ctx context.Context, entries []DailyEntry) (core.Delivery, error)
		DeleteAllAttendance(ctx context.Context, sheetName string) (core.Delivery, error)
		DeleteAllData(ctx context.Context) (core.Delivery, error)
	}

	StudentLister interface {
		List(ctx context.Context) ([]roster.Student, error)
	}

	Deps struct {
		Remote     Remote
		Students   StudentLister
		Store      core.KeyValueStore
		Bus        *core.Bus
		Logger     core.Logger
		Validate   *validator.Validate
		Policy     Policy
		Location   *time.Location
		SchoolName string // used when the remote school info has no name
	}

	// Service turns remote data into the recap, history and data-entry views.
	Service struct {
		Deps
		sessions *Sessions
	}

	RecapView struct {
		Period      Period            `json:"period"`
		Label       string            `json:"label"`
		Class       string            `json:"kelas"`
		Rows        []RecapRow        `json:"rows"`
		Names       []string          `json:"names"`
		Summary     StatusSummary     `json:"summary"`
		Percentages map[string]string `json:"percentages"`
	}

	HistoryView struct {
		Rows     []HistoryRow  `json:"rows"`
		Rejected int           `json:"rejected"`
		Summary  StatusSummary `json:"summary"`
		Pending  []PendingEdit `json:"pending"`
	}

	Sheet struct {
		Date     string       `json:"tanggal"`
		WireDate string       `json:"tanggalKirim"`
		Class    string       `json:"kelas"`
		Draft    bool         `json:"draft"`
		Entries  []SheetEntry `json:"entries"`
	}

	// Report is a recap laid out for export.
	Report struct {
		Title       string
		SchoolName  string
		Period      Period
		Label       string
		Class       string
		Table       Table
		Summary     StatusSummary
		GeneratedAt time.Time
	}

	draft struct {
		Submission
		SavedAt time.Time `json:"savedAt"`
	}
)

func NewService(deps Deps) *Service {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Service{
		Deps:     deps,
		sessions: NewSessions(deps.Bus),
	}
}

// Close releases the bus subscriptions of the service.
func (svc *Service) Close() {
	svc.sessions.Close()
}

func (svc *Service) Sessions() *Sessions { return svc.sessions }

// Classes lists the class labels of the roster, All first.
func (svc *Service) Classes(ctx context.Context) ([]string, error) {
	students, err := svc.Students.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	classes := CollectClasses(students)
	if data, err := json.Marshal(classes); err == nil {
		if err := svc.Store.Set(ctx, core.KeyClasses, string(data)); err != nil {
			svc.Logger.Warn("storing classes", err)
		}
	}
	return classes, nil
}

// School returns the school info, falling back to the stored copy when the remote
// endpoint is unreachable.
func (svc *Service) School(ctx context.Context) (SchoolInfo, error) {
	info, err := svc.Remote.SchoolInfo(ctx)
	if err != nil {
		if errors.Cause(err) == core.ErrRemoteUnavailable {
			if raw, ok, sErr := svc.Store.Get(ctx, core.KeySchoolData); sErr == nil && ok {
				var stored SchoolInfo
				if jErr := json.Unmarshal([]byte(raw), &stored); jErr == nil {
					svc.Logger.Warn("serving stored school data: remote unavailable", err)
					return stored, nil
				}
			}
		}
		return SchoolInfo{}, errors.Wrap(err, "fetching school data")
	}
	if data, err := json.Marshal(info); err == nil {
		if err := svc.Store.Set(ctx, core.KeySchoolData, string(data)); err != nil {
			svc.Logger.Warn("storing school data", err)
		}
	}
	return info, nil
}

func (svc *Service) schoolName(ctx context.Context) string {
	info, err := svc.School(ctx)
	if err != nil {
		svc.Logger.Warn("school name unavailable", err)
	}
	if info.Name.Valid {
		return info.Name.String
	}
	return svc.SchoolName
}

// Recap fetches a monthly or semester recap and filters it by name.
// On error the view holds no rows.
func (svc *Service) Recap(ctx context.Context, q RecapQuery) (RecapView, error) {
	empty := RecapView{Period: q.Period, Rows: []RecapRow{}, Names: []string{}}
	if err := q.Validate(); err != nil {
		return empty, err
	}

	remoteClass := q.Class
	if remoteClass == All {
		remoteClass = ""
	}
	var (
		rows []RecapRow
		err  error
	)
	if q.Period == Monthly {
		rows, err = svc.Remote.MonthlyRecap(ctx, remoteClass, q.month)
	} else {
		rows, err = svc.Remote.SemesterRecap(ctx, remoteClass, q.Semester)
	}
	if err != nil {
		return empty, errors.Wrapf(err, "fetching %s recap", q.Period)
	}

	view := RecapView{
		Period: q.Period,
		Label:  q.Label(),
		Class:  q.Class,
		Names:  recapNames(rows),
		Rows:   FilterRecap(rows, Criteria{Class: q.Class, Name: q.Name}),
	}
	view.Summary = SummarizeRecap(view.Rows)
	view.Percentages = view.Summary.Percentages()
	return view, nil
}

func recapNames(rows []RecapRow) []string {
	seen := make(map[string]struct{}, len(rows))
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.StudentName]; ok || r.StudentName == "" {
			continue
		}
		seen[r.StudentName] = struct{}{}
		names = append(names, r.StudentName)
	}
	return names
}

// Report builds the export of a recap.
func (svc *Service) Report(ctx context.Context, q RecapQuery) (Report, error) {
	view, err := svc.Recap(ctx, q)
	if err != nil {
		return Report{}, err
	}
	title := "Rekap Absensi Bulan " + view.Label
	if q.Period == Semester {
		title = "Rekap Absensi " + view.Label
	}
	return Report{
		Title:       title,
		SchoolName:  svc.schoolName(ctx),
		Period:      view.Period,
		Label:       view.Label,
		Class:       view.Class,
		Table:       BuildTable(view.Rows, view.Summary),
		Summary:     view.Summary,
		GeneratedAt: time.Now().In(svc.Location),
	}, nil
}

// FileName returns the export file name for ext (without dot).
func (r Report) FileName(ext string) string {
	name := fmt.Sprintf("rekap_%s_%s", r.Label, r.Class)
	name = strings.ToLower(strings.Join(strings.Fields(name), "_"))
	return name + "." + ext
}

// Chart returns the chart series of a class for a semester (0 for the whole year).
func (svc *Service) Chart(ctx context.Context, class string, semester int) (ChartSeries, error) {
	if semester != 0 && semester != 1 && semester != 2 {
		return ChartSeries{}, core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
	}
	class = core.CleanString(class)
	if class == All {
		class = ""
	}
	data, err := svc.Remote.GraphData(ctx, class, semester)
	if err != nil {
		return ChartSeries{}, errors.Wrap(err, "fetching graph data")
	}
	return BuildChartSeries(data, semester), nil
}

// History fetches the attendance history, drops malformed rows, applies the pending
// edits of the session (if any) and filters the rest. On error the view holds no rows.
func (svc *Service) History(ctx context.Context, q HistoryQuery) (HistoryView, error) {
	empty := HistoryView{Rows: []HistoryRow{}, Pending: []PendingEdit{}}

	c, err := q.criteria()
	if err != nil {
		return empty, err
	}
	var buf *EditBuffer
	if q.Session != "" {
		if buf, err = svc.sessions.Get(q.Session); err != nil {
			return empty, err
		}
	}

	rows, err := svc.Remote.AttendanceHistory(ctx)
	if err != nil {
		return empty, errors.Wrap(err, "fetching attendance history")
	}
	kept, rejected := RejectMalformed(rows)
	if rejected > 0 {
		svc.Logger.Debug(fmt.Sprintf("rejected %d malformed history rows", rejected))
	}
	for i := range kept {
		kept[i] = svc.cleanHistoryRow(kept[i])
	}

	view := HistoryView{Rejected: rejected, Pending: []PendingEdit{}}
	if buf != nil {
		kept = buf.Apply(kept)
		view.Pending = buf.Pending()
	}
	view.Rows = FilterHistory(kept, c)

	records := make([]DailyRecord, 0, len(view.Rows))
	for _, r := range view.Rows {
		rec, err := r.Record()
		if err != nil { // unparsable date: count the status alone
			st, _ := ParseStatus(r.Status)
			rec = DailyRecord{StudentID: r.NISN, Status: st}
		}
		records = append(records, rec)
	}
	view.Summary = SummarizeRecords(records, svc.Policy)
	return view, nil
}

func (svc *Service) cleanHistoryRow(r HistoryRow) HistoryRow {
	r.Date, _ = NormalizeHistoryDate(r.Date, svc.Location)
	r.Name = core.CleanString(r.Name)
	r.NISN = core.CleanString(r.NISN)
	r.Class = core.CleanString(r.Class)
	r.Status = core.CleanString(r.Status)
	return r
}

// SetEdit records a pending status override in a session.
func (svc *Service) SetEdit(sessionID string, er EditRequest) ([]PendingEdit, error) {
	buf, err := svc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := er.Validate(svc.Validate); err != nil {
		return nil, err
	}
	st, _ := ParseStatus(er.Status)
	if err := buf.SetStatus(EditKey{Date: er.Date, StudentID: er.NISN}, st); err != nil {
		return nil, err
	}
	return buf.Pending(), nil
}

func (svc *Service) DiscardEdits(sessionID string) error {
	buf, err := svc.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	buf.Discard()
	return nil
}

// Commit sends the pending edits of a session.
func (svc *Service) Commit(ctx context.Context, sessionID string) (CommitResult, error) {
	buf, err := svc.sessions.Get(sessionID)
	if err != nil {
		return CommitResult{}, err
	}
	return buf.Commit(ctx, svc.Remote)
}

// Sheet prepares the data-entry sheet of a class on a date (yyyy-mm-dd).
// Statuses come from the saved draft, else from the recorded history, else from the policy.
func (svc *Service) Sheet(ctx context.Context, date, class string) (Sheet, error) {
	date = core.CleanString(date)
	wire, err := ToWireDate(date)
	if err != nil {
		return Sheet{}, core.NewValidationError(nil, core.FieldError{Field: "tanggal", Error: "date must be formatted as yyyy-mm-dd"})
	}
	class = core.CleanString(class)
	if class == "" {
		class = All
	}

	students, err := svc.Students.List(ctx)
	if err != nil {
		return Sheet{}, errors.Wrap(err, "listing students")
	}

	sheet := Sheet{Date: date, WireDate: wire, Class: class, Entries: []SheetEntry{}}
	c := Criteria{Class: class}
	for _, s := range students {
		if !s.NISN.Valid || !c.matchClass(s.Class.String) {
			continue
		}
		sheet.Entries = append(sheet.Entries, SheetEntry{
			NISN:   s.NISN.String,
			Name:   s.Name.String,
			Class:  s.Class.String,
			Status: svc.Policy.UnmarkedDefault,
		})
	}

	known := make(map[string]Status)
	if d, ok := svc.loadDraft(ctx); ok && d.Date == date && d.Class == class {
		sheet.Draft = true
		for _, e := range d.Entries {
			known[e.NISN] = e.Status
		}
	} else {
		rows, err := svc.Remote.AttendanceHistory(ctx)
		if err != nil {
			svc.Logger.Warn("sheet without recorded statuses", err)
		}
		kept, _ := RejectMalformed(rows)
		for _, r := range kept {
			r = svc.cleanHistoryRow(r)
			if r.Date == wire {
				known[r.NISN] = Status(r.Status)
			}
		}
	}
	for i, e := range sheet.Entries {
		if st, ok := known[e.NISN]; ok {
			sheet.Entries[i].Status = st
		}
	}
	return sheet, nil
}

func (svc *Service) loadDraft(ctx context.Context) (draft, bool) {
	raw, ok, err := svc.Store.Get(ctx, core.KeyAttendanceDraft)
	if err != nil || !ok {
		return draft{}, false
	}
	var d draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		svc.Logger.Warn("decoding attendance draft", err)
		return draft{}, false
	}
	return d, true
}

// SaveDraft keeps an unsent sheet in the local store, replacing any previous draft.
func (svc *Service) SaveDraft(ctx context.Context, sub Submission) error {
	if err := sub.Validate(svc.Validate); err != nil {
		return err
	}
	if sub.Class == "" {
		sub.Class = All
	}
	data, err := json.Marshal(draft{Submission: sub, SavedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding attendance draft")
	}
	return errors.Wrap(svc.Store.Set(ctx, core.KeyAttendanceDraft, string(data)), "storing attendance draft")
}

// SubmitAttendance sends a daily sheet; unmarked entries take the policy default.
func (svc *Service) SubmitAttendance(ctx context.Context, sub Submission) (core.Delivery, error) {
	if err := sub.Validate(svc.Validate); err != nil {
		return "", err
	}
	wire, _ := ToWireDate(sub.Date)

	entries := make([]DailyEntry, 0, len(sub.Entries))
	for i, e := range sub.Entries {
		st := svc.Policy.Resolve(e.Status)
		if st == Unmarked {
			return "", core.NewValidationError(nil, core.FieldError{
				Field: fmt.Sprintf("entries[%d].status", i),
				Error: "status is required",
			})
		}
		entries = append(entries, DailyEntry{Date: wire, Name: e.Name, Class: e.Class, NISN: e.NISN, Status: st})
	}

	dlv, err := svc.Remote.SubmitAttendance(ctx, entries)
	if err != nil {
		return "", errors.Wrap(err, "submitting attendance")
	}
	if err := svc.Store.Delete(ctx, core.KeyAttendanceDraft); err != nil {
		svc.Logger.Warn("deleting attendance draft", err)
	}
	return dlv, nil
}

// ClearAttendance empties the attendance sheet of the remote spreadsheet.
func (svc *Service) ClearAttendance(ctx context.Context, sheetName string) (core.Delivery, error) {
	sheetName = core.CleanString(sheetName)
	if sheetName == "" {
		sheetName = AttendanceSheet
	}
	dlv, err := svc.Remote.DeleteAllAttendance(ctx, sheetName)
	if err != nil {
		return "", errors.Wrap(err, "clearing attendance")
	}
	return dlv, nil
}

// DeleteAllData removes the roster and the attendance, then clears the local data
// and notifies the subscribers.
func (svc *Service) DeleteAllData(ctx context.Context) (core.Delivery, error) {
	dlv, err := svc.Remote.DeleteAllData(ctx)
	if err != nil {
		return "", errors.Wrap(err, "deleting all data")
	}
	removed, err := core.ClearLocalData(ctx, svc.Store)
	if err != nil {
		svc.Logger.Error("clearing local data", err)
	} else {
		svc.Logger.Info(fmt.Sprintf("cleared %d local keys", len(removed)))
	}
	svc.Bus.Publish(core.Event{Signal: core.SignalDataCleared})
	svc.Bus.Publish(core.Event{Signal: core.SignalRosterChanged})
	return dlv, nil
}

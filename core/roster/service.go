package roster

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/absensi/core"
)

const (
	all = "Semua"

	suggestMinRatio = 0.6
)

// ErrNotFound is returned when no student has the requested NISN.
var ErrNotFound = errors.New("student not found")

type (
	// Remote is the roster side of the remote endpoint.
	Remote interface {
		ListStudents(ctx context.Context) ([]Student, error)
		AddStudent(ctx context.Context, ns NewStudent) (core.Delivery, error)
		BulkAddStudents(ctx context.Context, students []NewStudent) (core.Delivery, error)
		EditStudent(ctx context.Context, us UpdateStudent) (core.Delivery, error)
		DeleteStudent(ctx context.Context, nisn string) (core.Delivery, error)
	}

	ServiceInterface interface {
		List(ctx context.Context) ([]Student, error)
		Filter(ctx context.Context, f QueryFilter) ([]Student, error)
		GetByNISN(ctx context.Context, nisn string) (Student, error)
		Add(ctx context.Context, ns NewStudent) (core.Delivery, error)
		BulkAdd(ctx context.Context, bs BulkStudents) (int, core.Delivery, error)
		Update(ctx context.Context, us UpdateStudent) (core.Delivery, error)
		Delete(ctx context.Context, nisn string) (core.Delivery, error)
	}

	// Service keeps the last fetched roster in memory for ttl, and in the local store.
	// The cache is dropped whenever the roster changes or gets older than ttl;
	// a zero ttl refetches on every List.
	Service struct {
		remote Remote
		store  core.KeyValueStore
		bus    *core.Bus
		logger core.Logger
		ttl    time.Duration

		mu          sync.RWMutex
		cached      []Student
		fetchedAt   time.Time
		unsubscribe func()
	}
)

var (
	_ ServiceInterface = (*Service)(nil)

	NowFunc = time.Now // mockable
)

func NewService(remote Remote, store core.KeyValueStore, bus *core.Bus, logger core.Logger, ttl time.Duration) *Service {
	svc := &Service{
		remote: remote,
		store:  store,
		bus:    bus,
		logger: logger,
		ttl:    ttl,
	}
	svc.unsubscribe = bus.Subscribe(core.SignalRosterChanged, func(core.Event) { svc.invalidate() })
	return svc
}

// Close unsubscribes the service from the bus.
func (svc *Service) Close() {
	svc.unsubscribe()
}

func (svc *Service) invalidate() {
	svc.mu.Lock()
	svc.cached = nil
	svc.mu.Unlock()
}

// List returns the roster, fetching it when it is not cached.
// When the remote endpoint is unreachable the locally stored copy is served instead.
func (svc *Service) List(ctx context.Context) ([]Student, error) {
	svc.mu.RLock()
	cached, fetchedAt := svc.cached, svc.fetchedAt
	svc.mu.RUnlock()
	if cached != nil && NowFunc().Sub(fetchedAt) < svc.ttl {
		return cached, nil
	}

	students, err := svc.remote.ListStudents(ctx)
	if err != nil {
		if errors.Cause(err) == core.ErrRemoteUnavailable {
			if stored, ok := svc.loadStored(ctx); ok {
				svc.logger.Warn("serving stored roster: remote unavailable", err)
				return stored, nil
			}
		}
		return nil, errors.Wrap(err, "listing students")
	}
	for i := range students {
		students[i] = normalize(students[i])
	}

	svc.mu.Lock()
	svc.cached, svc.fetchedAt = students, NowFunc()
	svc.mu.Unlock()
	svc.saveStored(ctx, students)
	return students, nil
}

func (svc *Service) loadStored(ctx context.Context) ([]Student, bool) {
	raw, ok, err := svc.store.Get(ctx, core.KeyStudents)
	if err != nil || !ok {
		return nil, false
	}
	var students []Student
	if err := json.Unmarshal([]byte(raw), &students); err != nil {
		svc.logger.Warn("decoding stored roster", err)
		return nil, false
	}
	return students, true
}

func (svc *Service) saveStored(ctx context.Context, students []Student) {
	data, err := json.Marshal(students)
	if err == nil {
		err = svc.store.Set(ctx, core.KeyStudents, string(data))
	}
	if err != nil {
		svc.logger.Warn("storing roster", err)
	}
}

func (svc *Service) Filter(ctx context.Context, f QueryFilter) ([]Student, error) {
	students, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if f.matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (svc *Service) GetByNISN(ctx context.Context, nisn string) (Student, error) {
	students, err := svc.List(ctx)
	if err != nil {
		return Student{}, err
	}
	nisn = core.CleanString(nisn)
	for _, s := range students {
		if s.NISN.String == nisn {
			return s, nil
		}
	}
	return Student{}, ErrNotFound
}

func (svc *Service) Add(ctx context.Context, ns NewStudent) (core.Delivery, error) {
	dlv, err := svc.remote.AddStudent(ctx, ns)
	if err != nil {
		return dlv, errors.Wrap(err, "adding student")
	}
	svc.changed()
	return dlv, nil
}

// BulkAdd sends every student of bs in one request and returns how many were sent.
func (svc *Service) BulkAdd(ctx context.Context, bs BulkStudents) (int, core.Delivery, error) {
	students := bs.All()
	dlv, err := svc.remote.BulkAddStudents(ctx, students)
	if err != nil {
		return 0, dlv, errors.Wrap(err, "bulk adding students")
	}
	svc.changed()
	return len(students), dlv, nil
}

func (svc *Service) Update(ctx context.Context, us UpdateStudent) (core.Delivery, error) {
	dlv, err := svc.remote.EditStudent(ctx, us)
	if err != nil {
		return dlv, errors.Wrap(err, "editing student")
	}
	svc.changed()
	return dlv, nil
}

func (svc *Service) Delete(ctx context.Context, nisn string) (core.Delivery, error) {
	dlv, err := svc.remote.DeleteStudent(ctx, core.CleanString(nisn))
	if err != nil {
		return dlv, errors.Wrap(err, "deleting student")
	}
	svc.changed()
	return dlv, nil
}

func (svc *Service) changed() {
	svc.bus.Publish(core.Event{Signal: core.SignalRosterChanged})
}

// normalize applies the optional-field rules to a student read from the remote endpoint.
func normalize(s Student) Student {
	s.Name = core.NormalizeOptional(s.Name.String)
	s.NISN = core.NormalizeOptional(s.NISN.String)
	s.Class = core.NormalizeOptional(s.Class.String)
	s.ID = core.CleanString(s.ID)
	if s.ID == "" {
		s.ID = s.NISN.String
	}
	return s
}

// Names returns the sorted distinct names of students.
func Names(students []Student) []string {
	seen := make(map[string]struct{}, len(students))
	names := make([]string, 0, len(students))
	for _, s := range students {
		if !s.Name.Valid {
			continue
		}
		if _, ok := seen[s.Name.String]; !ok {
			seen[s.Name.String] = struct{}{}
			names = append(names, s.Name.String)
		}
	}
	sort.Strings(names)
	return names
}

// SuggestNames returns up to n roster names close to name, the closest first.
func SuggestNames(students []Student, name string, n int) []string {
	type match struct {
		name  string
		ratio float64
	}
	want := strings.Split(core.CleanString(name, true /* lower */), "")
	matches := make([]match, 0)
	for _, nm := range Names(students) {
		ratio := difflib.NewMatcher(want, strings.Split(strings.ToLower(nm), "")).Ratio()
		if ratio >= suggestMinRatio {
			matches = append(matches, match{name: nm, ratio: ratio})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ratio > matches[j].ratio })

	out := make([]string, 0, n)
	for _, m := range matches {
		if len(out) == n {
			break
		}
		out = append(out, m.name)
	}
	return out
}

package attendance

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
)

var ErrSessionNotFound = errors.New("edit session not found")

// Sessions owns the edit buffers of the open history views, by session id.
// Every session is dropped when the data is cleared.
type Sessions struct {
	mu          sync.Mutex
	buffers     map[string]*EditBuffer
	unsubscribe func()
}

func NewSessions(bus *core.Bus) *Sessions {
	s := &Sessions{buffers: make(map[string]*EditBuffer)}
	s.unsubscribe = bus.Subscribe(core.SignalDataCleared, func(core.Event) { s.DropAll() })
	return s
}

// Create opens a session with an empty buffer and returns its id.
func (s *Sessions) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.buffers[id] = NewEditBuffer()
	s.mu.Unlock()
	return id
}

func (s *Sessions) Get(id string) (*EditBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.buffers[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return buf, nil
}

func (s *Sessions) Drop(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buffers[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.buffers, id)
	return nil
}

func (s *Sessions) DropAll() {
	s.mu.Lock()
	s.buffers = make(map[string]*EditBuffer)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers)
}

// Close stops listening to the bus.
func (s *Sessions) Close() {
	s.unsubscribe()
}

package attendance

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
)

type (
	// EditKey identifies a history record: its wire date and the student's NISN.
	EditKey struct {
		Date      string `json:"tanggal"`
		StudentID string `json:"nisn"`
	}

	PendingEdit struct {
		EditKey
		Status Status `json:"status"`
	}

	// Update is one line of a bulkUpdateAttendance request.
	Update struct {
		Date   string `json:"tanggal"`
		NISN   string `json:"nisn"`
		Status Status `json:"status"`
	}

	UpdateSender interface {
		BulkUpdateAttendance(ctx context.Context, updates []Update) (core.Delivery, error)
	}

	// CommitResult tells how many edits were sent and what is known of their fate.
	CommitResult struct {
		Sent     int           `json:"sent"`
		Delivery core.Delivery `json:"delivery,omitempty"`
	}

	// EditBuffer holds unsaved status overrides of history records.
	// Overrides win over fetched data until they are committed or discarded.
	EditBuffer struct {
		mu      sync.Mutex
		pending map[EditKey]Status
		order   []EditKey
	}
)

func NewEditBuffer() *EditBuffer {
	return &EditBuffer{pending: make(map[EditKey]Status)}
}

// SetStatus records an override for key; the last one wins.
func (b *EditBuffer) SetStatus(key EditKey, st Status) error {
	if !st.Valid() {
		return errors.Wrapf(ErrInvalidStatus, "%q", st)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pending[key]; !ok {
		b.order = append(b.order, key)
	}
	b.pending[key] = st
	return nil
}

// Resolve returns the pending override of key, or fetched.
func (b *EditBuffer) Resolve(key EditKey, fetched Status) Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	if st, ok := b.pending[key]; ok {
		return st
	}
	return fetched
}

// Apply returns a copy of rows with the pending overrides applied.
func (b *EditBuffer) Apply(rows []HistoryRow) []HistoryRow {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]HistoryRow, len(rows))
	for i, r := range rows {
		if st, ok := b.pending[r.Key()]; ok {
			r.Status = st.String()
		}
		out[i] = r
	}
	return out
}

// Pending lists the overrides in the order their keys were first edited.
func (b *EditBuffer) Pending() []PendingEdit {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PendingEdit, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, PendingEdit{EditKey: k, Status: b.pending[k]})
	}
	return out
}

func (b *EditBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

func (b *EditBuffer) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = make(map[EditKey]Status)
	b.order = nil
}

// Commit sends every pending override in one batch. Nothing is sent when the buffer is empty.
// Once the send succeeds the sent overrides are cleared, whatever the delivery:
// an unconfirmed delivery may still be rejected by the remote endpoint.
// On error the buffer is left untouched.
func (b *EditBuffer) Commit(ctx context.Context, sender UpdateSender) (CommitResult, error) {
	pending := b.Pending()
	if len(pending) == 0 {
		return CommitResult{}, nil
	}

	updates := make([]Update, 0, len(pending))
	for _, p := range pending {
		updates = append(updates, Update{Date: p.Date, NISN: p.StudentID, Status: p.Status})
	}
	dlv, err := sender.BulkUpdateAttendance(ctx, updates)
	if err != nil {
		return CommitResult{}, errors.Wrap(err, "sending attendance updates")
	}

	b.clearSent(pending)
	return CommitResult{Sent: len(updates), Delivery: dlv}, nil
}

// clearSent drops the sent overrides, keeping those edited again during the send.
func (b *EditBuffer) clearSent(sent []PendingEdit) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range sent {
		if st, ok := b.pending[p.EditKey]; ok && st == p.Status {
			delete(b.pending, p.EditKey)
		}
	}
	order := b.order[:0]
	for _, k := range b.order {
		if _, ok := b.pending[k]; ok {
			order = append(order, k)
		}
	}
	b.order = order
}

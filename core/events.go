package core

import "sync"

// Signals broadcast by the attendance and roster services.
const (
	SignalDataCleared   = "attendance:data-cleared"
	SignalRosterChanged = "roster:changed"
)

type (
	Event struct {
		Signal string
		Data   interface{}
	}

	subscriber struct {
		id     int
		signal string
		fn     func(Event)
	}

	// Bus is a synchronous publish/subscribe hub owned by the composition root.
	// Views subscribe at construction and call the returned func on teardown.
	Bus struct {
		mu     sync.RWMutex
		nextID int
		subs   []subscriber
	}
)

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for signal and returns the unsubscribe func.
func (b *Bus) Subscribe(signal string, fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, signal: signal, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every subscriber of the event's signal, in subscription order.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, s := range b.subs {
		if s.signal == evt.Signal {
			fns = append(fns, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(evt)
	}
}

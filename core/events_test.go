package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestBus(t *testing.T) {
	bus := NewBus()

	var cleared, roster int
	unsubCleared := bus.Subscribe(SignalDataCleared, func(Event) { cleared++ })
	bus.Subscribe(SignalRosterChanged, func(Event) { roster++ })

	bus.Publish(Event{Signal: SignalDataCleared})
	bus.Publish(Event{Signal: SignalRosterChanged})
	bus.Publish(Event{Signal: "unknown"})
	assert.Equal(t, 1, cleared)
	assert.Equal(t, 1, roster)

	unsubCleared()
	unsubCleared() // no-op
	bus.Publish(Event{Signal: SignalDataCleared})
	assert.Equal(t, 1, cleared, "unsubscribed func must not be called")
}

func TestNormalizeOptional(t *testing.T) {
	tests := []struct {
		in        string
		want      string
		wantValid bool
	}{
		{in: "", wantValid: false},
		{in: "   ", wantValid: false},
		{in: "undefined", wantValid: false},
		{in: "null", wantValid: false},
		{in: " 7A ", want: "7A", wantValid: true},
		{in: "Null", want: "Null", wantValid: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeOptional(tt.in)
			if got.Valid != tt.wantValid || got.String != tt.want {
				t.Errorf("NormalizeOptional(%q) = %+v; want %q (valid %v)", tt.in, got, tt.want, tt.wantValid)
			}
		})
	}
}

func TestIntOrZero(t *testing.T) {
	assert.Equal(t, 0, IntOrZero(null.Int{}))
	assert.Equal(t, 0, IntOrZero(null.Int{Int: 5}))
	assert.Equal(t, 7, IntOrZero(null.IntFrom(7)))
}

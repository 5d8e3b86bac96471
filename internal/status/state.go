package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/wtox/internal/bus"
)

// State represents the push channel connection state.
type State string

const (
	Idle         State = "IDLE"
	Connecting   State = "CONNECTING"
	Online       State = "ONLINE"
	Reconnecting State = "RECONNECTING"
	Unavailable  State = "UNAVAILABLE"
	Closed       State = "CLOSED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Idle:         {Connecting, Unavailable, Closed},
	Connecting:   {Online, Reconnecting, Unavailable, Closed},
	Online:       {Reconnecting, Closed},
	Reconnecting: {Connecting, Closed},
	Unavailable:  {Closed},
	Closed:       {Idle},
}

// Label is the text shown in the status bar.
func (s State) Label() string {
	switch s {
	case Online:
		return "connected"
	case Connecting:
		return "connecting..."
	case Reconnecting:
		return "connection lost, retrying"
	case Unavailable:
		return "push channel unavailable"
	case Closed:
		return "closed"
	default:
		return "idle"
	}
}

// Machine tracks and enforces connection state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	since   time.Time
	bus     *bus.Bus
	now     func() time.Time
}

// NewMachine creates a new state machine starting in Idle state.
func NewMachine(b *bus.Bus) *Machine {
	m := &Machine{
		current: Idle,
		bus:     b,
		now:     time.Now,
	}
	m.since = m.now()
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Since returns when the current state was entered.
func (m *Machine) Since() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.since
}

// Transition moves to a new state and publishes the change. Invalid
// transitions are rejected and leave the state untouched.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	now := m.now()
	change := StatusChange{From: m.current, To: to, At: now, Held: now.Sub(m.since)}
	m.current = to
	m.since = now
	m.bus.Emit(bus.ChannelStatusChanged, change)
	return nil
}

// StatusChange is the payload of channel.status_changed. Held is how long
// the previous state lasted.
type StatusChange struct {
	From State
	To   State
	At   time.Time
	Held time.Duration
}

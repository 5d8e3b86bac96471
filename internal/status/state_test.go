package status

import (
	"testing"
	"time"

	"github.com/matheus3301/wtox/internal/bus"
)

func walkTo(t *testing.T, m *Machine, states ...State) {
	t.Helper()
	for _, s := range states {
		if err := m.Transition(s); err != nil {
			t.Fatalf("transition to %s failed: %v", s, err)
		}
	}
}

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Idle {
		t.Errorf("initial state = %s, want IDLE", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		path []State
		to   State
	}{
		{nil, Connecting},
		{nil, Unavailable},
		{[]State{Connecting}, Online},
		{[]State{Connecting}, Reconnecting},
		{[]State{Connecting, Online}, Reconnecting},
		{[]State{Connecting, Online, Reconnecting}, Connecting},
		{[]State{Connecting, Online}, Closed},
		{[]State{Unavailable}, Closed},
	}
	for _, tt := range tests {
		t.Run(string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.path...)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", m.Current(), tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Online); err == nil {
		t.Error("Transition(IDLE -> ONLINE) should fail")
	}
}

// UNAVAILABLE is terminal apart from closing: the channel never retries it.
func TestUnavailableDoesNotReconnect(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Connecting, Unavailable)
	if err := m.Transition(Reconnecting); err == nil {
		t.Error("Transition(UNAVAILABLE -> RECONNECTING) should fail")
	}
	if err := m.Transition(Connecting); err == nil {
		t.Error("Transition(UNAVAILABLE -> CONNECTING) should fail")
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("channel.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Connecting); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.ChannelStatusChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, bus.ChannelStatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Idle || change.To != Connecting {
		t.Errorf("change = %v -> %v, want IDLE -> CONNECTING", change.From, change.To)
	}
}

func TestTransitionTracksTime(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewMachine(nil)
	m.now = func() time.Time { return clock }
	m.since = clock

	clock = clock.Add(3 * time.Second)
	b := bus.New()
	m.bus = b
	ch, unsub := b.Subscribe("channel.", 1)
	defer unsub()

	if err := m.Transition(Connecting); err != nil {
		t.Fatal(err)
	}
	change := (<-ch).Payload.(StatusChange)
	if change.Held != 3*time.Second {
		t.Errorf("held = %s, want 3s", change.Held)
	}
	if !change.At.Equal(clock) || !m.Since().Equal(clock) {
		t.Errorf("at = %s, since = %s, want %s", change.At, m.Since(), clock)
	}

	clock = clock.Add(time.Second)
	if err := m.Transition(Idle); err == nil {
		t.Fatal("CONNECTING -> IDLE should be rejected")
	}
	if !m.Since().Equal(clock.Add(-time.Second)) {
		t.Error("a rejected transition moved Since")
	}
}

func TestLabel(t *testing.T) {
	if Online.Label() != "connected" {
		t.Errorf("Online.Label() = %q", Online.Label())
	}
	if State("bogus").Label() != "idle" {
		t.Errorf("unknown label = %q", State("bogus").Label())
	}
}

package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("state.", 10)
	defer unsub()

	b.Emit(StateContacts, 3)

	select {
	case evt := <-ch:
		if evt.Kind != StateContacts {
			t.Errorf("got kind %q, want %s", evt.Kind, StateContacts)
		}
		if evt.Payload != 3 {
			t.Errorf("payload = %v, want 3", evt.Payload)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Emit should stamp the event")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("channel.", 10)
	defer unsub()

	b.Publish(Event{Kind: StateProfile})
	b.Publish(Event{Kind: ChannelConnected})

	select {
	case evt := <-ch:
		if evt.Kind != ChannelConnected {
			t.Errorf("got kind %q, want %s", evt.Kind, ChannelConnected)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("state.", 10)
	unsub()

	b.Publish(Event{Kind: StateProfile})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("state.", 1)
	defer unsub()

	b.Publish(Event{Kind: StateProfile})
	b.Publish(Event{Kind: StateSettings})

	evt := <-ch
	if evt.Kind != StateProfile {
		t.Errorf("got %q, want %s", evt.Kind, StateProfile)
	}
	if got := b.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}

func TestUnsubscribeTwice(t *testing.T) {
	b := New()
	_, unsub1 := b.Subscribe("", 1)
	ch2, unsub2 := b.Subscribe("", 1)
	defer unsub2()

	unsub1()
	unsub1()

	b.Emit(StateChat, uint32(7))
	select {
	case evt := <-ch2:
		if evt.Payload != uint32(7) {
			t.Errorf("payload = %v, want 7", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber got nothing")
	}
	if got := b.Dropped(); got != 0 {
		t.Errorf("Dropped() = %d, want 0", got)
	}
}

func TestNilBus(t *testing.T) {
	var b *Bus
	b.Emit(StateProfile, nil)
	if b.Dropped() != 0 {
		t.Error("nil bus reports drops")
	}
}

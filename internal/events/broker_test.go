package events

import (
	"testing"
)

func TestBrokerFansOutToAllSubscribers(t *testing.T) {
	b := NewBroker()
	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.Publish(TypeScanCompleted, map[string]int{"tabs": 3})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != TypeScanCompleted {
				t.Errorf("subscriber %d got type %q; want %q", i, evt.Type, TypeScanCompleted)
			}
			if evt.Time.IsZero() {
				t.Errorf("subscriber %d event has zero time", i)
			}
		default:
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestBrokerUnsubscribeClosesChannelIdempotently(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()

	b.Unsubscribe(id)
	b.Unsubscribe(id) // second call must not panic

	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount = %d; want 0", got)
	}
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	// Publish never blocks, even past the buffer size.
	for i := 0; i < subscriberBufSize+10; i++ {
		b.Publish(TypeAnalysisStarted, nil)
	}

	if got := len(ch); got != subscriberBufSize {
		t.Fatalf("buffered events = %d; want %d", got, subscriberBufSize)
	}
}

func TestBrokerPublishWithNoSubscribers(t *testing.T) {
	b := NewBroker()
	b.Publish(TypeScanStarted, nil) // must not panic
	if got := b.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount = %d; want 0", got)
	}
}

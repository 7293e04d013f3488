// Package events fans out scan and analysis lifecycle events to connected
// UI clients over WebSocket.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

const subscriberBufSize = 64

// Well-known event types published by the service.
const (
	TypeScanStarted       = "scan.started"
	TypeScanCompleted     = "scan.completed"
	TypeAnalysisStarted   = "analysis.started"
	TypeAnalysisCompleted = "analysis.completed"
	TypeAnalysisFailed    = "analysis.failed"
)

// Event is one lifecycle notification.
type Event struct {
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// Broker fans out events to all subscribed clients.
type Broker struct {
	mu          sync.Mutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
}

// NewBroker creates an event broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int64]chan Event)}
}

// Subscribe registers a new client. The channel is buffered; slow
// consumers have events dropped.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once for the same ID.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends a typed event to all subscribers without blocking.
func (b *Broker) Publish(eventType string, payload any) {
	evt := Event{Type: eventType, Time: time.Now().UTC(), Payload: payload}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscriberCount reports the number of connected clients.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

package notification

import (
	"log"
	"sync"
	"time"

	"boothnow-backend/internal/model"
)

// EventKind names what changed.
type EventKind string

const (
	EventSessionStarted      EventKind = "session_started"
	EventSessionEnded        EventKind = "session_ended"
	EventReservationCreated  EventKind = "reservation_created"
	EventReservationStarted  EventKind = "reservation_started"
	EventReservationEnded    EventKind = "reservation_ended"
	EventReservationCanceled EventKind = "reservation_cancelled"
)

// Event tells subscribers that something about a booth changed. It is a hint
// to re-read the booth, not a source of truth.
type Event struct {
	Kind    EventKind             `json:"kind"`
	BoothID string                `json:"booth_id"`
	Status  model.OccupancyStatus `json:"status"`
	At      time.Time             `json:"at"`
}

// Feed is a best-effort in-process fan-out of booth events. Slow subscribers
// miss events instead of blocking publishers.
type Feed struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[uint64]chan Event)}
}

// Publish delivers ev to every subscriber with room in its buffer.
func (f *Feed) Publish(ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("Feed subscriber %d is full, dropping %s for booth %s", id, ev.Kind, ev.BoothID)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func closes the
// channel and must be called once the subscriber is done.
func (f *Feed) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}

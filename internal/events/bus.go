package events

import (
	"sync"
	"time"
)

type Type string

const (
	// Pipeline lifecycle
	TypeStageProgress Type = "stage_progress"
	TypeRunCompleted  Type = "run_completed"
	TypeRunInterrupt  Type = "run_interrupted"

	// Library / auth
	TypeLectureDeleted Type = "lecture_deleted"
	TypeUserChanged    Type = "user_changed"

	// Playback
	TypePlayerScroll Type = "player_scroll"
)

// Event is the single message shape flowing from the core to subscribers.
// It replaces the old callback-prop wiring: producers Publish, consumers
// Subscribe, and nobody hands closures across component boundaries.
type Event struct {
	Type    Type      `json:"type"`
	RunID   string    `json:"run_id,omitempty"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Bus is the single dispatch point. Fan-out is best-effort: a subscriber
// that stops draining gets dropped messages, never a blocked publisher.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and a cancel func. Always call cancel;
// it closes the channel and frees the slot.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan Event, 64)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Slow consumer: drop rather than stall the pipeline tick.
		}
	}
}

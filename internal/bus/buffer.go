package bus

import (
	"log"
	"sync"
)

// Buffer collects events from the transport's read goroutine until the
// session loop drains them on its next tick. When full, the oldest event
// is dropped to make room; drops are logged but otherwise best-effort.
type Buffer struct {
	mu      sync.Mutex
	events  []Event
	max     int
	dropped int
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 1
	}
	return &Buffer{max: max}
}

// Publish appends ev, evicting the oldest buffered event when at capacity.
func (b *Buffer) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) >= b.max {
		b.events = b.events[1:]
		b.dropped++
		if b.dropped == 1 || b.dropped%100 == 0 {
			log.Printf("[bus] buffer full, dropped %d events", b.dropped)
		}
	}
	b.events = append(b.events, ev)
}

// Drain returns all buffered events in arrival order and empties the
// buffer.
func (b *Buffer) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

package web

import (
	"sync"
	"time"

	"nmeafix/internal/gps"
)

// FixBroadcaster fans fix snapshots out to WebSocket listeners.
// It keeps the most recent value so new subscribers get an immediate sample.
type FixBroadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan gps.Snapshot
	nextID   int
	last     gps.Snapshot
	haveLast bool

	// minInterval drops publishes that come faster than this. Receivers
	// emit a burst of sentences per epoch; one push per burst is enough.
	minInterval time.Duration
	lastPush    time.Time
}

func NewFixBroadcaster(minInterval time.Duration) *FixBroadcaster {
	return &FixBroadcaster{
		subs:        make(map[int]chan gps.Snapshot),
		minInterval: minInterval,
	}
}

func (b *FixBroadcaster) Subscribe(buffer int) (int, <-chan gps.Snapshot) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan gps.Snapshot, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last := b.last
	have := b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *FixBroadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers returns the number of active listeners.
func (b *FixBroadcaster) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish sends snap to every listener that has room. It reports whether the
// snapshot was pushed or dropped by the rate limit.
func (b *FixBroadcaster) Publish(now time.Time, snap gps.Snapshot) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	b.last = snap
	b.haveLast = true
	if b.minInterval > 0 && !b.lastPush.IsZero() && now.Sub(b.lastPush) < b.minInterval {
		b.mu.Unlock()
		return false
	}
	b.lastPush = now
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	b.mu.Unlock()
	return true
}

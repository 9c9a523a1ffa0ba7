package jointown

import (
	"sync"
)

// subscriber is one Subscribe channel.
type subscriber struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
}

// trySend delivers a snapshot without blocking and reports whether it did.
func (s *subscriber) trySend(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}

	select {
	case s.ch <- snap:
		return true
	default:
		return false
	}
}

// close safely closes the subscriber's channel.
func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Subscribe returns a channel that receives a snapshot after every step.
//
// The channel is buffered (Config.SubscriberBuffer). A subscriber that falls
// behind misses snapshots; each miss is recorded with RecordSnapshotDropped.
// The current snapshot is sent immediately upon subscription.
//
// Returns:
//   - <-chan Snapshot: Channel that receives snapshots in step order
//   - func(): Unsubscribe function; closes the channel
//
// Example:
//
//	ch, unsubscribe := w.Subscribe()
//	defer unsubscribe()
//	for snap := range ch {
//	    fmt.Println(snap.Step, snap.Ownership())
//	}
func (w *World) Subscribe() (<-chan Snapshot, func()) {
	id := w.nextSubscriberID.Add(1)
	sub := &subscriber{ch: make(chan Snapshot, w.cfg.SubscriberBuffer)}

	// holding the read lock keeps the first snapshot ahead of any step's broadcast
	w.mu.RLock()
	w.subscribers.Store(id, sub)
	if !sub.trySend(w.snapshotLocked()) {
		w.metrics.RecordSnapshotDropped()
	}
	w.mu.RUnlock()

	unsubscribe := func() {
		if s, ok := w.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}

	return sub.ch, unsubscribe
}

// broadcast fans a snapshot out to every subscriber.
func (w *World) broadcast(snap Snapshot) {
	w.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		if !sub.trySend(snap) {
			w.metrics.RecordSnapshotDropped()
		}

		return true
	})
}

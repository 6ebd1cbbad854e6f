// Package connectivity delivers edge-triggered "went online" notifications
// to whoever needs to react to them, chiefly the sync engine.
//
// A Source never polls on behalf of its subscribers; it calls them once per
// offline→online transition. Three sources are provided: Broadcaster for
// manual notification, PingWatcher that probes the remote store, and
// FileSignal that watches a status file written by an external agent.
package connectivity

import "sync"

type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Source is a transition-to-online signal.
type Source interface {
	// Subscribe registers fn and returns a func that removes it. The
	// returned func is safe to call more than once.
	Subscribe(fn func()) (unsubscribe func())
}

// Bind subscribes trigger to src for the lifetime of the caller; call the
// returned func on teardown.
func Bind(src Source, trigger func()) func() {
	return src.Subscribe(trigger)
}

// Broadcaster fans Notify out to all current subscribers.
// The zero value is ready to use.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

var _ Source = (*Broadcaster)(nil)

func (b *Broadcaster) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func())
	}
	id := b.next
	b.next++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Notify calls every subscriber synchronously, outside the lock, so a
// subscriber may unsubscribe itself.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

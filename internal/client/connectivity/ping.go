package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingWatcher probes a Pinger on a fixed interval and notifies subscribers
// when a probe succeeds after the previous one did not.
type PingWatcher struct {
	Broadcaster

	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	log      logging.Logger

	mu   sync.Mutex
	mode Mode
}

func NewPingWatcher(p Pinger, interval time.Duration, log logging.Logger) *PingWatcher {
	return &PingWatcher{
		pinger:   p,
		interval: interval,
		timeout:  3 * time.Second,
		log:      log,
		mode:     ModeUnknown,
	}
}

func (w *PingWatcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Run probes immediately and then on every tick until ctx is done.
func (w *PingWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *PingWatcher) check(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.pinger.Ping(pctx)
	cancel()

	mode := ModeOnline
	if err != nil {
		mode = ModeOffline
	}

	if w.setMode(mode) {
		w.log.Info(ctx, "connectivity changed", "mode", mode)
		if mode == ModeOnline {
			w.Notify()
		}
	}
}

func (w *PingWatcher) setMode(mode Mode) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mode == mode {
		return false
	}
	w.mode = mode
	return true
}

package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/common"
)

// KeyGenerator hands out timestamp-derived keys that are strictly
// increasing within a process, so two captures in the same millisecond
// still get distinct keys.
type KeyGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewKeyGenerator() *KeyGenerator {
	return NewKeyGeneratorWithClock(time.Now)
}

// NewKeyGeneratorWithClock is NewKeyGenerator with a custom time source.
func NewKeyGeneratorWithClock(now func() time.Time) *KeyGenerator {
	return &KeyGenerator{now: now}
}

func (g *KeyGenerator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	return ts
}

// RecordKey returns a fresh key for a queued damage record.
func (g *KeyGenerator) RecordKey() string {
	return fmt.Sprintf("%s%d", common.RecordKeyPrefix, g.next())
}

// PhotoKey returns a fresh key for a pending photo.
func (g *KeyGenerator) PhotoKey() string {
	return fmt.Sprintf("%s%d", common.PhotoKeyPrefix, g.next())
}

// ObjectName returns a fresh timestamp-based file name for an upload.
func (g *KeyGenerator) ObjectName(ext string) string {
	if ext == "" {
		return fmt.Sprintf("%d", g.next())
	}
	return fmt.Sprintf("%d.%s", g.next(), ext)
}

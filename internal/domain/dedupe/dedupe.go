// Package dedupe tracks fingerprints already seen within one batch.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys so that repeated rows can be dropped.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Size reports how many distinct keys were recorded.
	Size() int64
}

// inMemoryDeduper is a mutex guarded set. One instance lives for one
// ingestion call or one sync job, so it is never bounded.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates an empty deduper. sizeHint pre-sizes the set.
func NewInMemoryDeduper(sizeHint int) Deduper {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &inMemoryDeduper{seen: make(map[string]struct{}, sizeHint)}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

package bot

import (
	"sync"
	"time"
)

// dedupSet keeps a short-lived set of processed message ids so webhook
// redeliveries do not advance a conversation twice.
type dedupSet struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	keepFor time.Duration
	now     func() time.Time
}

func newDedupSet(keepFor time.Duration) *dedupSet {
	if keepFor <= 0 {
		keepFor = 10 * time.Minute
	}
	return &dedupSet{
		seen:    make(map[string]time.Time),
		keepFor: keepFor,
		now:     time.Now,
	}
}

// Seen records the id and reports whether it was already present. Empty ids
// are never deduplicated.
func (d *dedupSet) Seen(id string) bool {
	if id == "" {
		return false
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, ts := range d.seen {
		if now.Sub(ts) > d.keepFor {
			delete(d.seen, k)
		}
	}
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = now
	return false
}

// Forget releases an id recorded by Seen. Used when a message is dropped
// before reaching the engine, so a later redelivery gets processed.
func (d *dedupSet) Forget(id string) {
	if id == "" {
		return
	}
	d.mu.Lock()
	delete(d.seen, id)
	d.mu.Unlock()
}

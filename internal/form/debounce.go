package form

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDelay is the quiet period before a product search fires.
const DefaultSearchDelay = 500 * time.Millisecond

// Debouncer collapses a burst of edits into one action after a quiet period.
// Every edit calls Touch and gets a generation; only the latest generation may
// fire, and it fires at most once.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	gen   uint64
	fired uint64
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Touch records an edit and returns its generation. Earlier generations can
// no longer fire.
func (d *Debouncer) Touch() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	return d.gen
}

// Cancel prevents every outstanding generation from firing.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.fired = d.gen
}

// Fire claims gen once its delay has elapsed. It reports true only for the
// latest generation and only the first time.
func (d *Debouncer) Fire(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || gen == d.fired {
		return false
	}
	d.fired = gen
	return true
}

// Wait blocks for the quiet period and then claims gen. It returns false if
// ctx ends first or a newer edit arrived.
func (d *Debouncer) Wait(ctx context.Context, gen uint64) bool {
	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return d.Fire(gen)
	}
}

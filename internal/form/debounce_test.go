package form

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerOnlyLatestFires(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var fired atomic.Int32
	var last atomic.Uint64
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		gen := d.Touch()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Wait(context.Background(), gen) {
				fired.Add(1)
				last.Store(gen)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, uint64(3), last.Load())
}

func TestDebouncerFiresOnce(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	gen := d.Touch()

	assert.True(t, d.Fire(gen))
	assert.False(t, d.Fire(gen), "a generation fires at most once")
	assert.False(t, d.Fire(gen-1))
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	gen := d.Touch()
	d.Cancel()
	assert.False(t, d.Fire(gen))

	next := d.Touch()
	assert.True(t, d.Fire(next))
}

func TestDebouncerContextEnds(t *testing.T) {
	d := NewDebouncer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, d.Wait(ctx, d.Touch()))
}

func TestDebouncerDefaultDelay(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, NewDebouncer(0).Delay())
}

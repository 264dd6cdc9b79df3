package sim

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// TickLoop drives registered callbacks with a fixed simulation step.
// Callbacks run sequentially in name order on the loop goroutine.
//
// Invariant: every callback sees the same dt, equal to the interval in seconds.
type TickLoop struct {
	interval time.Duration
	maxTicks uint64
	realtime bool

	mu    sync.Mutex
	ticks map[string]func(dt float64)
	count atomic.Uint64
}

// NewTickLoop returns a loop stepping every interval. A maxTicks of zero runs
// until cancelled. When realtime is false ticks run back to back.
//
// Precondition: interval must be > 0.
func NewTickLoop(interval time.Duration, maxTicks uint64, realtime bool) *TickLoop {
	if interval <= 0 {
		panic("sim.NewTickLoop: interval must be > 0")
	}
	return &TickLoop{
		interval: interval,
		maxTicks: maxTicks,
		realtime: realtime,
		ticks:    make(map[string]func(float64)),
	}
}

// RegisterTick registers fn under name, replacing any existing callback.
func (l *TickLoop) RegisterTick(name string, fn func(dt float64)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks[name] = fn
}

// Unregister removes the callback registered under name.
func (l *TickLoop) Unregister(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.ticks, name)
}

// Ticks returns how many ticks have run.
func (l *TickLoop) Ticks() uint64 { return l.count.Load() }

// Run blocks until ctx is cancelled or maxTicks ticks have run.
//
// Postcondition: returns nil when the tick limit is reached and ctx.Err()
// when cancelled.
func (l *TickLoop) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if l.realtime {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	dt := l.interval.Seconds()
	for {
		if l.maxTicks > 0 && l.count.Load() >= l.maxTicks {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		for _, fn := range l.snapshot() {
			fn(dt)
		}
		l.count.Add(1)
	}
}

func (l *TickLoop) snapshot() []func(float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.ticks))
	for k := range l.ticks {
		names = append(names, k)
	}
	sort.Strings(names)
	fns := make([]func(float64), 0, len(names))
	for _, n := range names {
		fns = append(fns, l.ticks[n])
	}
	return fns
}

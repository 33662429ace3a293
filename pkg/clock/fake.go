package clock

import (
	"sync"
	"time"
)

// Fake is a Clock that only moves when Advance is called. Safe for
// concurrent use; timer and ticker channels are buffered so Advance never
// blocks on a slow reader.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
	tickers []*fakeTicker
}

type fakeWaiter struct {
	at time.Time
	ch chan time.Time
}

// NewFake returns a Fake clock frozen at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &fakeWaiter{at: f.now.Add(d), ch: make(chan time.Time, 1)}
	if d <= 0 {
		w.ch <- f.now
		return w.ch
	}
	f.waiters = append(f.waiters, w)
	return w.ch
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		fake:     f,
		interval: d,
		next:     f.now.Add(d),
		ch:       make(chan time.Time, 64),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// TickerCount reports how many tickers have been created so far. Tests
// use it to wait for a goroutine to arm its ticker before advancing.
func (f *Fake) TickerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

// WaiterCount reports how many After deadlines are currently armed and
// unexpired.
func (f *Fake) WaiterCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// Advance moves the clock forward, firing every timer and ticker deadline
// that falls within the window. Ticker sends are dropped rather than
// blocking when the buffer is full.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.now.Add(d)

	for _, t := range f.tickers {
		if t.stopped {
			continue
		}
		for !t.next.After(target) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}

	remaining := f.waiters[:0]
	for _, w := range f.waiters {
		if !w.at.After(target) {
			w.ch <- w.at
		} else {
			remaining = append(remaining, w)
		}
	}
	f.waiters = remaining
	f.now = target
}

type fakeTicker struct {
	fake     *Fake
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	t.stopped = true
}

package meeting

import (
	"sync"
	"time"

	"github.com/JBK2116/CollaBoard/pkg/clock"
)

// DurationCounter measures how long a meeting actually ran, in whole
// seconds. It ticks once per second from start until Stop, which returns
// the final count. The count begins at 1 so even an instantly ended
// meeting records a nonzero duration.
type DurationCounter struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	mu    sync.Mutex
	count int
}

// StartDurationCounter begins counting elapsed seconds on the given clock.
// The counter runs until Stop is called; callers own its lifecycle.
func StartDurationCounter(clk clock.Clock) *DurationCounter {
	c := &DurationCounter{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		count:  1,
	}
	go c.run(clk)
	return c
}

func (c *DurationCounter) run(clk clock.Clock) {
	defer close(c.done)

	ticker := clk.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			// Seconds that elapsed before the stop may still sit in the
			// ticker buffer; count them so the final value reflects the
			// actual elapsed time.
			for {
				select {
				case <-ticker.C():
					c.tick()
				default:
					return
				}
			}
		case <-ticker.C():
			c.tick()
		}
	}
}

func (c *DurationCounter) tick() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

// Stop cancels the counter, waits for its tick loop to exit, and returns
// the elapsed seconds. Safe to call more than once.
func (c *DurationCounter) Stop() int {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

package match

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// countdown is the one handle behind the auto-reset: a ticker that counts
// down from the starting value and a stop channel that cancels both the
// remaining ticks and the final reset.
type countdown struct {
	ticker *clock.Ticker
	done   chan struct{}
	once   sync.Once
}

// startCountdown ticks remaining = from-1 .. 0, one per interval. The caller
// announces `from` itself.
func startCountdown(clk clock.Clock, interval time.Duration, from int, onTick func(c *countdown, remaining int)) *countdown {
	c := &countdown{
		ticker: clk.Ticker(interval),
		done:   make(chan struct{}),
	}

	go c.run(from, onTick)

	return c
}

func (that *countdown) run(from int, onTick func(c *countdown, remaining int)) {
	defer that.ticker.Stop()

	for remaining := from - 1; remaining >= 0; remaining-- {
		select {
		case <-that.done:
			return
		case <-that.ticker.C:
		}

		select {
		case <-that.done:
			return
		default:
		}

		onTick(that, remaining)
	}
}

func (that *countdown) stop() {
	that.once.Do(func() {
		close(that.done)
	})
}

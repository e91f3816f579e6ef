package sync

import "time"

// Timer is a handle to an armed periodic timer.
type Timer interface {
	Stop()
}

// TimerFactory arms a periodic timer that invokes tick every interval.
// The scheduler uses a factory so its state machine can be driven in tests
// without a real clock.
type TimerFactory func(interval time.Duration, tick func()) Timer

// tickerTimer is the production Timer backed by a time.Ticker.
type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
}

// NewTickerTimer arms a time.Ticker that calls tick on every period until
// stopped.
func NewTickerTimer(interval time.Duration, tick func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-t.ticker.C:
				tick()
			case <-t.done:
				return
			}
		}
	}()

	return t
}

// Stop cancels the timer. Ticks already delivered may still be in flight;
// the scheduler guards against those with its activation check.
func (t *tickerTimer) Stop() {
	t.ticker.Stop()
	close(t.done)
}

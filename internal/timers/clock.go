package timers

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel must be safe to call more than once, and from inside fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

var _ Scheduler = TickerScheduler{}

// TickerScheduler runs each job in its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// cancel may have raced with the tick
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent pacing. Good
// enough for UI refresh and paced headless runs.
type TickerLimiter struct {
	interval time.Duration
	ticker   *time.Ticker
	ch       <-chan time.Time
}

func NewTickerLimiter(interval time.Duration) *TickerLimiter {
	ticker := time.NewTicker(interval)
	return &TickerLimiter{
		interval: interval,
		ticker:   ticker,
		ch:       ticker.C,
	}
}

func (t *TickerLimiter) WaitForNextTick() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.interval)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}

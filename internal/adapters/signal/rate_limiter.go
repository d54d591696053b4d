package signal

import "golang.org/x/time/rate"

// newFrameLimiter returns a token bucket for inbound frames, or nil when
// limiting is disabled.
func newFrameLimiter(eventsPerSecond float64, burst int) *rate.Limiter {
	if eventsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(eventsPerSecond), burst)
}

func allowFrame(l *rate.Limiter) bool {
	return l == nil || l.Allow()
}

package signal

import (
	"sync"

	"golang.org/x/time/rate"
)

// AddrLimiter is a token-bucket gate keyed by source address. Every
// inbound event, regardless of kind, consumes one token.
type AddrLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	r       rate.Limit
	burst   int
}

func NewAddrLimiter(eventsPerSecond float64, burst int) *AddrLimiter {
	return &AddrLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Limit(eventsPerSecond),
		burst:   burst,
	}
}

func (l *AddrLimiter) Allow(addr string) bool {
	l.mu.Lock()
	b, ok := l.buckets[addr]
	if !ok {
		b = rate.NewLimiter(l.r, l.burst)
		l.buckets[addr] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

// Forget drops an address's bucket once its last connection closed.
func (l *AddrLimiter) Forget(addr string) {
	l.mu.Lock()
	delete(l.buckets, addr)
	l.mu.Unlock()
}

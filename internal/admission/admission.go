// Package admission rate-limits new connection attempts per source
// IP, guarding the accept loop the way a reverse proxy guards its
// origin: a cache of recent hit counts with a sliding expiry, rather
// than a token bucket per peer that would have to be garbage
// collected by hand.
//
// Grounded on cppla-moto's controller/server.go per-IP throttling,
// rebuilt on the same library it uses for that (go-cache) instead of
// the teacher's map-plus-mutex bookkeeping.
package admission

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Limiter allows at most Max registration attempts from a given IP
// within Window before rejecting further attempts. The window slides:
// every attempt, allowed or rejected, restarts it, so an IP is let
// through again only after Window passes with no attempt from it.
type Limiter struct {
	max    int
	window time.Duration
	hits   *cache.Cache
	mu     sync.Mutex
}

// New builds a Limiter. A max <= 0 disables limiting (Allow always
// returns true), which is convenient for tests exercising the rest of
// the accept loop.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		hits:   cache.New(window, window/2),
	}
}

// Allow reports whether ip may proceed, incrementing its hit count
// for the current window as a side effect.
func (l *Limiter) Allow(ip string) bool {
	if l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	count := 1
	if v, found := l.hits.Get(ip); found {
		count = v.(int) + 1
	}
	l.hits.Set(ip, count, cache.DefaultExpiration)
	return count <= l.max
}

// ABOUTME: Per-client token bucket rate limiting for form submissions using x/time/rate.
// ABOUTME: Idle limiters are evicted by go-cache so the map cannot grow without bound.
package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client key. A bucket holds perMinute
// tokens and refills evenly across the minute.
type ipLimiter struct {
	mu        sync.Mutex
	perMinute int
	limiters  *gocache.Cache
}

func newIPLimiter(perMinute int) *ipLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &ipLimiter{
		perMinute: perMinute,
		limiters:  gocache.New(10*time.Minute, 5*time.Minute),
	}
}

// Allow reports whether key may make another request now.
func (l *ipLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := l.limiters.Get(key); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
	}
	// Re-set on every hit so active clients keep their bucket.
	l.limiters.SetDefault(key, lim)
	return lim.Allow()
}

// clientKey identifies the caller by RemoteAddr. That is the socket peer
// unless the server trusts a proxy, in which case RealIP has rewritten it.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

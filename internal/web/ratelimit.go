package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle client's limiter is kept.
const visitorTTL = 3 * time.Minute

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	stop     chan struct{}
	once     sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPRateLimiter allows perMinute requests per minute per IP, with bursts
// up to perMinute.
func newIPRateLimiter(perMinute int) *ipRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes idle visitors every minute until Stop is called.
func (rl *ipRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > visitorTTL {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *ipRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()
	return v.limiter.Allow()
}

// middleware rejects requests over the limit with 429.
func (rl *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr, which TrustedRealIP has already
// rewritten for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// signup / login
	limitStrict = rate.Limit(2)
	burstStrict = 5

	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	strictPaths map[string]struct{}
	now         func() time.Time
}

// NewRateLimiter returns a limiter that applies the strict tier to the given
// paths and the general tier everywhere else.
func NewRateLimiter(strictPaths ...string) *RateLimiter {
	l := &RateLimiter{
		visitors:    make(map[string]*visitor),
		strictPaths: make(map[string]struct{}, len(strictPaths)),
		now:         time.Now,
	}
	for _, p := range strictPaths {
		l.strictPaths[p] = struct{}{}
	}
	return l
}

func (l *RateLimiter) get(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r, b)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// Sweep drops visitors idle for longer than the TTL.
func (l *RateLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Run sweeps every interval until ctx is done.
func (l *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Middleware limits every request by RemoteAddr. Request headers never feed
// the key, so forwarded addresses count only when a trusted proxy stage
// rewrote RemoteAddr upstream.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := l.tier(r)
		key := "ip:" + clientIP(r) + ":" + tier

		if !l.get(key, limit, burst).Allow() {
			tooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PerUser applies the general tier per authenticated user, so one account
// cannot spread its traffic over many addresses. Mount it after RequireAuth.
func (l *RateLimiter) PerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := utils.GetUserIDFromContext(r.Context())
		if ok && !l.get("user:"+id.String()+":general", limitGeneral, burstGeneral).Allow() {
			tooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter) {
	transport.Error(w, http.StatusTooManyRequests, "Too many requests")
}

func (l *RateLimiter) tier(r *http.Request) (rate.Limit, int, string) {
	if _, ok := l.strictPaths[r.URL.Path]; ok {
		return limitStrict, burstStrict, "strict"
	}
	return limitGeneral, burstGeneral, "general"
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

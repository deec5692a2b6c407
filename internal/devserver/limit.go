package devserver

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-chat/internal/clock"
)

// RouteLimit caps requests to one route per client.
type RouteLimit struct {
	Method string
	Path   string
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultRouteLimits throttles uploads hardest since they parse whole documents.
func DefaultRouteLimits() []RouteLimit {
	return []RouteLimit{
		{Method: http.MethodPost, Path: "/api/upload-resume", Limit: 20, Window: time.Minute, Burst: 5},
		{Method: http.MethodPost, Path: "/api/submit-resume", Limit: 30, Window: time.Minute, Burst: 10},
		{Method: http.MethodPost, Path: "/api/resume-chat", Limit: 120, Window: time.Minute, Burst: 30},
	}
}

// tokenBucket refills continuously at rate tokens per second up to capacity.
type tokenBucket struct {
	capacity float64
	rate     float64
	tokens   float64
	last     time.Time
}

func (b *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.last).Seconds()
	b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.rate)
	b.last = now
}

// Limiter applies RouteLimits keyed by client IP, method and path. Routes without a limit
// pass through.
type Limiter struct {
	clock  clock.Clock
	limits []RouteLimit

	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

// NewLimiter creates a Limiter. A nil clock uses the wall clock.
func NewLimiter(c clock.Clock, limits []RouteLimit) *Limiter {
	if c == nil {
		c = clock.Real{}
	}
	return &Limiter{clock: c, limits: limits, buckets: make(map[string]*tokenBucket)}
}

func (l *Limiter) match(method, path string) *RouteLimit {
	for i := range l.limits {
		rl := &l.limits[i]
		if rl.Method == method && rl.Path == path {
			return rl
		}
	}
	return nil
}

// Allow consumes a token for the request. When it is refused, retryAfter says how long
// until the next token.
func (l *Limiter) Allow(clientID, method, path string) (ok bool, retryAfter time.Duration) {
	rl := l.match(method, path)
	if rl == nil || rl.Limit <= 0 {
		return true, 0
	}

	now := l.clock.Now()
	key := clientID + ":" + method + ":" + path

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		capacity := rl.Burst
		if capacity <= 0 {
			capacity = rl.Limit
		}
		b = &tokenBucket{
			capacity: float64(capacity),
			rate:     float64(rl.Limit) / rl.Window.Seconds(),
			tokens:   float64(capacity),
			last:     now,
		}
		l.buckets[key] = b
	}

	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	return false, wait
}

// Middleware rejects throttled requests with 429 and a Retry-After header.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.Allow(clientIP(r), r.Method, r.URL.Path)
		if !ok {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retry.Seconds()))))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate limit exceeded. Please try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client identifier from RemoteAddr ("IP:port").
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return ip
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

var rateLimited = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by a rate limiter.",
	},
	[]string{"limiter"},
)

// KeyFunc names the bucket a request draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP uses the X-User-ID caller when Session saw one and the
// client IP otherwise.
func KeyByUserOrIP(c *gin.Context) string {
	if uid := c.GetString("userID"); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}

// LimitOptions configures a Limiter. Zero Key means KeyByUserOrIP and a
// non-positive Burst means 1.
type LimitOptions struct {
	Name    string // metrics label
	RPS     float64
	Burst   int
	Key     KeyFunc
	IdleTTL time.Duration
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key. Buckets unused for IdleTTL are
// swept at most once per IdleTTL.
type Limiter struct {
	opt   LimitOptions
	limit rate.Limit
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewLimiter returns a Limiter for opt.
func NewLimiter(opt LimitOptions) *Limiter {
	if opt.Burst <= 0 {
		opt.Burst = 1
	}
	if opt.Key == nil {
		opt.Key = KeyByUserOrIP
	}
	if opt.IdleTTL <= 0 {
		opt.IdleTTL = defaultIdleTTL
	}
	if opt.Name == "" {
		opt.Name = "api"
	}
	return &Limiter{
		opt:     opt,
		limit:   rate.Limit(opt.RPS),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (l *Limiter) bucketFor(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.opt.IdleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.seen) >= l.opt.IdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.opt.Burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// Len reports how many buckets are live.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// IsRateBypass reports whether the request is an idempotent replay, which
// no limiter charges for.
func IsRateBypass(c *gin.Context) bool {
	return c.GetBool(ctxKeyRateBypass)
}

// Handler rejects over-limit requests with 429, a Retry-After hint and the
// usual error envelope with code "rate_limited".
func (l *Limiter) Handler() gin.HandlerFunc {
	wait := strconv.Itoa(retryAfter(l.limit))
	return func(c *gin.Context) {
		if IsRateBypass(c) || l.bucketFor(l.opt.Key(c)).Allow() {
			c.Next()
			return
		}
		rateLimited.WithLabelValues(l.opt.Name).Inc()
		c.Header("Retry-After", wait)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfter is how many whole seconds one token takes to refill, never
// less than 1.
func retryAfter(r rate.Limit) int {
	if r <= 0 || r == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(r))))
}

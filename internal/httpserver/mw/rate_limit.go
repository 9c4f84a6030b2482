package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/linkdeck/linkdeck/internal/utils"
)

// RateLimitConfig tunes the per-IP token bucket in front of the
// sign-in endpoints.
type RateLimitConfig struct {
	Burst             int           // bucket capacity
	RefillPerIPPerMin int           // sustained requests per minute
	MaxEntries        int           // sweep early once this many buckets exist
	SweepInterval     time.Duration // how often idle buckets are collected
	IdleTTL           time.Duration // bucket lifetime without traffic
	TrustProxy        bool          // resolve the IP from proxy headers
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	return cfg
}

type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	lastSeen time.Time
}

// take refills the bucket for the elapsed time and tries to spend one
// token. On refusal it reports how long until a token is available.
func (b *tokenBucket) take(now time.Time, capacity, perSec float64) (ok bool, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*perSec)
		b.refilled = now
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / perSec * float64(time.Second))
	if wait < time.Second {
		wait = time.Second
	}
	return false, wait
}

type ipThrottle struct {
	cfg    RateLimitConfig
	perSec float64

	mu      sync.Mutex
	buckets map[string]*tokenBucket
	swept   time.Time
}

func newIPThrottle(cfg RateLimitConfig) *ipThrottle {
	cfg = cfg.withDefaults()
	return &ipThrottle{
		cfg:     cfg,
		perSec:  float64(cfg.RefillPerIPPerMin) / 60,
		buckets: make(map[string]*tokenBucket),
		swept:   time.Now(),
	}
}

func (t *ipThrottle) bucket(key string, now time.Time) *tokenBucket {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.swept) >= t.cfg.SweepInterval ||
		(t.cfg.MaxEntries > 0 && len(t.buckets) >= t.cfg.MaxEntries) {
		for ip, b := range t.buckets {
			if now.Sub(b.lastSeen) > t.cfg.IdleTTL {
				delete(t.buckets, ip)
			}
		}
		t.swept = now
	}

	b := t.buckets[key]
	if b == nil {
		b = &tokenBucket{tokens: float64(t.cfg.Burst), refilled: now, lastSeen: now}
		t.buckets[key] = b
	}
	return b
}

// RateLimit enforces a per-IP request budget and answers 429 with a
// Retry-After hint once it is spent.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	t := newIPThrottle(cfg)
	limit := strconv.Itoa(t.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			key := utils.ClientIP(r, t.cfg.TrustProxy)

			ok, retryAfter := t.bucket(key, now).take(now, float64(t.cfg.Burst), t.perSec)
			w.Header().Set("X-RateLimit-Limit", limit)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package ratelimiting

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

type RateLimiter interface {
	Consume(key string) bool
}

// tokenBucketRateLimiter keeps a token bucket per key. Buckets of idle keys expire.
type tokenBucketRateLimiter struct {
	buckets         *ttlcache.Cache[string, *rate.Limiter]
	refillPerSecond int
	burstSize       int
}

func (l *tokenBucketRateLimiter) Consume(key string) bool {
	bucket, _ := l.buckets.GetOrSet(key, rate.NewLimiter(rate.Limit(l.refillPerSecond), l.burstSize))
	return bucket.Value().Allow()
}

type RefillPerSecond int
type BurstSize int

func NewTokenBucketRateLimiter(refillPerSecond RefillPerSecond, burstSize BurstSize) (RateLimiter, func()) {
	buckets := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](30 * time.Minute),
	)
	go buckets.Start()

	return &tokenBucketRateLimiter{
		buckets:         buckets,
		refillPerSecond: int(refillPerSecond),
		burstSize:       int(burstSize),
	}, buckets.Stop
}

type RequestRateLimiter interface {
	Consume(r *http.Request) bool
	KeyFor(r *http.Request) string
}

type requestBasedRateLimiter struct {
	limiter RateLimiter
	keyFunc func(r *http.Request) string
}

func (rateLimiter *requestBasedRateLimiter) Consume(r *http.Request) bool {
	return rateLimiter.limiter.Consume(rateLimiter.keyFunc(r))
}

func (rateLimiter *requestBasedRateLimiter) KeyFor(r *http.Request) string {
	return rateLimiter.keyFunc(r)
}

func NewRequestBasedRateLimiter(limiter RateLimiter, keyFunc func(r *http.Request) string) RequestRateLimiter {
	return &requestBasedRateLimiter{
		limiter: limiter,
		keyFunc: keyFunc,
	}
}

// IPKeyFunc keys requests by client ip. Behind a proxy that is the first
// X-Forwarded-For entry, otherwise the remote address.
func IPKeyFunc(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		client, _, _ := strings.Cut(forwarded, ",")
		if client = strings.TrimSpace(client); client != "" {
			return fmt.Sprintf("ip: %.64s", client)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// No port
		host = r.RemoteAddr
	}
	return fmt.Sprintf("ip: %.64s", host)
}

// UserEmailKeyFunc keys requests by the admin making them
func UserEmailKeyFunc(r *http.Request) string {
	email := strings.ToLower(strings.TrimSpace(r.Header.Get("X-User-Email")))
	if email == "" {
		email = "<missing>"
	}
	return fmt.Sprintf("user-email: %.100s", email)
}

package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// tokenBucketScript refills the bucket by elapsed time, then takes one token.
// KEYS[1] bucket key; ARGV rate/s, burst, now (ms), ttl (ms).
// Returns {allowed, remaining tokens}.
var tokenBucketScript = redis.NewScript(`
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local tokens = burst
local ts = now
if state[1] and state[2] then
	tokens = tonumber(state[1])
	ts = tonumber(state[2])
end
local elapsed = now - ts
if elapsed < 0 then
	elapsed = 0
end
tokens = math.min(burst, tokens + (elapsed / 1000) * rate)
local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(now))
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, tostring(tokens)}
`)

// RateLimitMiddleware throttles booking commands per principal with a token
// bucket kept in Redis, so every replica shares one budget. Redis failures
// let the request through.
type RateLimitMiddleware struct {
	client *redis.Client
	log    *logrus.Logger
	rate   float64
	burst  int
	now    func() time.Time
}

func NewRateLimitMiddleware(client *redis.Client, log *logrus.Logger, cfg config.RateLimitConfig) *RateLimitMiddleware {
	rate := cfg.Rate
	if rate <= 0 {
		rate = 1
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitMiddleware{
		client: client,
		log:    log,
		rate:   rate,
		burst:  burst,
		now:    time.Now,
	}
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, err := m.take(r.Context(), rateLimitKey(r))
		if err != nil {
			m.log.Warnf("Rate limiter unavailable, allowing request: %+v", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Floor(remaining))))
		if !allowed {
			retryAfter := int(math.Ceil((1 - remaining) / m.rate))
			response.TooManyRequests(w, "Too many requests, please slow down", retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) take(ctx context.Context, key string) (bool, float64, error) {
	// Long enough for an idle bucket to refill completely.
	ttl := time.Duration(float64(m.burst)/m.rate*float64(time.Second)) + time.Second
	res, err := tokenBucketScript.Run(ctx, m.client, []string{key},
		m.rate, m.burst, m.now().UnixMilli(), ttl.Milliseconds()).Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limiter reply %v", res)
	}

	allowed, _ := res[0].(int64)
	raw, _ := res[1].(string)
	remaining, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false, 0, err
	}
	return allowed == 1, remaining, nil
}

// rateLimitKey buckets authenticated callers by user and anyone else by
// client address.
func rateLimitKey(r *http.Request) string {
	if principal, ok := entity.CurrentUser(r.Context()); ok {
		return "ratelimit:user:" + principal.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ratelimit:ip:" + host
}

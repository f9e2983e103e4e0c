package middleware

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/config"
)

// bucketScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'at')
local tokens = tonumber(state[1]) or capacity
local at = tonumber(state[2]) or now_ms

local steps = math.floor(math.max(0, now_ms - at) / interval_ms)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    at = at + steps * interval_ms
end

local allowed, wait = 0, 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    wait = math.max(0, interval_ms - (now_ms - at))
end

redis.call('HSET', key, 'tokens', tokens, 'at', at)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, wait}
`)

type bucketDecision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

type tokenBucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (b tokenBucket) take(ctx context.Context, key string, now time.Time) (bucketDecision, error) {
    vals, err := bucketScript.Run(ctx, b.rdb, []string{key},
        now.UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return bucketDecision{}, err
    }
    if len(vals) != 3 {
        return bucketDecision{}, redis.Nil
    }
    return bucketDecision{
        allowed:   vals[0] == 1,
        remaining: vals[1],
        retry:     time.Duration(vals[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket throttles requests with a Redis token bucket.  It sits in
// front of reserve and validate so that retry storms on a popular seat or a
// busy door do not reach the ledger.  Redis errors fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *logrus.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    bucket := tokenBucket{cfg: cfg, rdb: rdb}

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx := c.Request().Context()
            key := rateKey(cfg, c)

            d, err := bucket.take(ctx, key, time.Now())
            if err != nil {
                logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("ratelimit: redis error")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if d.allowed {
                return next(c)
            }

            secs := int((d.retry + time.Second - 1) / time.Second)
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                logger.WithContext(ctx).WithFields(logrus.Fields{"key": key, "retry": d.retry}).Info("ratelimit: blocked")
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":  "rate_limited",
                "reason": "retry after " + strconv.Itoa(secs) + "s",
            })
        }
    }
}

// rateKey builds the bucket key from the underscore-separated parts of
// cfg.KeyStrategy: ip, user, route and seat.  seat is the show and seat
// path parameters, so that every caller competing for one seat shares a
// bucket.  Unknown parts are ignored; an empty strategy means
// ip_user_route.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    strategy := strings.ToLower(strings.TrimSpace(cfg.KeyStrategy))
    if strategy == "" {
        strategy = "ip_user_route"
    }
    parts := []string{cfg.Prefix}
    for _, p := range strings.Split(strategy, "_") {
        switch p {
        case "ip":
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, "ip", ip)
        case "user":
            parts = append(parts, "user", userID(c))
        case "route":
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        case "seat":
            if show, code := c.Param("id"), c.Param("code"); show != "" && code != "" {
                parts = append(parts, "seat", show+"/"+strings.ToUpper(code))
            }
        }
    }
    return strings.Join(parts, ":")
}

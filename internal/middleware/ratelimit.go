package middleware

import (
    "bytes"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "fmt"
    "io"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/tourism-portal/internal/config"
)

// maxPeekBody bounds how much of a request body the identifier strategy reads.
const maxPeekBody = 16 << 10

// bucketScript refills the bucket for whole elapsed intervals, takes one
// token if available and replies {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1]) or capacity
local last = tonumber(state[2]) or now_ms

local steps = 0
if interval_ms > 0 then
    steps = math.floor(math.max(0, now_ms - last) / interval_ms)
end
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval_ms
end

local allowed, retry_ms = 0, 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_ms = math.max(0, interval_ms - (now_ms - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', key, ARGV[5])
return { allowed, tokens, retry_ms }
`)

type bucketState struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func take(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, now time.Time) (bucketState, error) {
    vals, err := bucketScript.Run(ctx, rdb, []string{key},
        now.UnixMilli(), cfg.Capacity, cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second)).Int64Slice()
    if err != nil {
        return bucketState{}, err
    }
    if len(vals) != 3 {
        return bucketState{}, fmt.Errorf("ratelimit: unexpected reply %v", vals)
    }
    return bucketState{
        allowed:   vals[0] == 1,
        remaining: vals[1],
        retry:     time.Duration(vals[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits requests with a token bucket kept in Redis and
// updated atomically by a Lua script. Redis errors fail open, so an outage
// never locks users out of login.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            st, err := take(c.Request().Context(), rdb, cfg, key, time.Now())
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if st.allowed {
                return next(c)
            }

            secs := int(math.Ceil(st.retry.Seconds()))
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                c.Logger().Infof("ratelimit: blocked key=%s retry=%s", key, st.retry)
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too_many_requests",
                "message":     "too many attempts, try again later",
                "retry_after": secs,
            })
        }
    }
}

// buildRateKey derives the bucket key for c. Strategies:
//
//	ip          client IP
//	ip_route    client IP and matched route
//	identifier  login identifier from the JSON body, falling back to ip_route
//	user        authenticated user id ("anon" otherwise)
//
// Anything else keys on IP, user and route.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "identifier":
        if id := loginIdentifier(c); id != "" {
            parts = append(parts, "id", id)
        } else {
            parts = append(parts, "ip", ip, "route", route)
        }
    case "user":
        parts = append(parts, "user", userKey(c))
    default:
        parts = append(parts, "ip", ip, "user", userKey(c), "route", route)
    }
    return strings.Join(parts, ":")
}

// loginIdentifier reads the identifier (or email) a client is trying to
// sign in with, so that guesses against one account share a bucket no
// matter how many addresses they come from. The body is restored for the
// handler. The result is a digest of the trimmed, lower-cased value.
func loginIdentifier(c echo.Context) string {
    req := c.Request()
    if req.Body == nil || req.Body == http.NoBody {
        return ""
    }
    orig := req.Body
    raw, err := io.ReadAll(io.LimitReader(orig, maxPeekBody))
    req.Body = struct {
        io.Reader
        io.Closer
    }{io.MultiReader(bytes.NewReader(raw), orig), orig}
    if err != nil {
        return ""
    }

    var body struct {
        Identifier string `json:"identifier"`
        Email      string `json:"email"`
    }
    if json.Unmarshal(raw, &body) != nil {
        return ""
    }
    id := body.Identifier
    if id == "" {
        id = body.Email
    }
    id = strings.ToLower(strings.TrimSpace(id))
    if id == "" {
        return ""
    }
    sum := sha256.Sum256([]byte(id))
    return hex.EncodeToString(sum[:12])
}

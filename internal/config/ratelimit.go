package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig drives the Redis token bucket middleware.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig returns the global limiter settings (RATE_LIMIT_*).
func LoadRateLimitConfig() RateLimitConfig {
    return loadRateLimit("RATE_LIMIT", RateLimitConfig{
        Enabled:        true,
        Capacity:       60,
        RefillTokens:   1,
        RefillInterval: time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_user_route",
        Prefix:         "rl",
    })
}

// LoadLoginRateLimitConfig returns the stricter limiter used on the login and
// register endpoints (LOGIN_RATE_LIMIT_*). Buckets are keyed per client IP.
func LoadLoginRateLimitConfig() RateLimitConfig {
    return loadRateLimit("LOGIN_RATE_LIMIT", RateLimitConfig{
        Enabled:        true,
        Capacity:       5,
        RefillTokens:   1,
        RefillInterval: 12 * time.Second,
        TTL:            15 * time.Minute,
        KeyStrategy:    "ip_route",
        Prefix:         "rl:login",
    })
}

// LoadIdentifierRateLimitConfig returns the per-account login limiter
// (IDENTIFIER_RATE_LIMIT_*). Buckets are keyed by the login identifier, so
// attempts against one account are capped however many IPs they come from.
func LoadIdentifierRateLimitConfig() RateLimitConfig {
    return loadRateLimit("IDENTIFIER_RATE_LIMIT", RateLimitConfig{
        Enabled:        true,
        Capacity:       10,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        TTL:            30 * time.Minute,
        KeyStrategy:    "identifier",
        Prefix:         "rl:ident",
    })
}

func loadRateLimit(prefix string, def RateLimitConfig) RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool(prefix+"_ENABLED", def.Enabled),
        Capacity:       envInt(prefix+"_CAPACITY", def.Capacity),
        RefillTokens:   envInt(prefix+"_REFILL_TOKENS", def.RefillTokens),
        RefillInterval: envDur(prefix+"_REFILL_INTERVAL", def.RefillInterval),
        TTL:            envDur(prefix+"_TTL", def.TTL),
        KeyStrategy:    envStr(prefix+"_KEY_STRATEGY", def.KeyStrategy),
        Prefix:         envStr(prefix+"_PREFIX", def.Prefix),
        Debug:          envBool(prefix+"_DEBUG", false),
    }
    if b := envInt(prefix+"_BURST", -1); b > 0 { cfg.Capacity = b }
    if every := envDur(prefix+"_REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens = 1
        cfg.RefillInterval = every
    }
    return cfg.normalize()
}

func (c RateLimitConfig) normalize() RateLimitConfig {
    if c.Capacity < 1 { c.Capacity = 1 }
    if c.RefillTokens < 1 { c.RefillTokens = 1 }
    if c.RefillInterval <= 0 { c.RefillInterval = time.Second }
    minTTL := 5 * c.RefillInterval
    if c.TTL < minTTL { c.TTL = minTTL }
    return c
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}

package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig tunes the Redis token bucket in front of the API.
// One bucket per key; keys are composed from client IP, user and route
// according to KeyStrategy.
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

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables and
// clamps them to sane values.  The defaults allow a burst of 60
// requests refilling one per second, which is generous for a booking
// client and still stops scripted reference scans.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    getenvDefault("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         getenvDefault("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }

    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    // Buckets must outlive several refill intervals or idle clients
    // lose their state between requests.
    if min := 5 * cfg.RefillInterval; cfg.TTL < min {
        cfg.TTL = min
    }
    return cfg
}

func envBool(key string, def bool) bool {
    switch os.Getenv(key) {
    case "":
        return def
    case "1", "true", "TRUE", "True", "yes", "on":
        return true
    case "0", "false", "FALSE", "False", "no", "off":
        return false
    }
    return def
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil {
        return d
    }
    return def
}

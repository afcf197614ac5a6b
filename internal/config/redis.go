package config

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client backing the policy cache and
// the rate limiter.  Connection parameters come from the environment:
//
//  REDIS_HOST / REDIS_PORT — server host and port
//  REDIS_ADDR              — host:port shorthand, overridden by host/port
//  REDIS_PASSWORD          — optional password
//  REDIS_DB                — database number, default 0
//  REDIS_TLS               — "true" or "1" enables TLS
//
// A nil client is returned when the server cannot be reached at
// startup; the policy cache and the rate limiter both run without
// Redis, falling back to direct MySQL reads and unlimited requests.
func NewRedisClient() *redis.Client {
    addr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }

    db := 0
    if v := os.Getenv("REDIS_DB"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            db = n
        }
    }

    var tlsConf *tls.Config
    if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }

    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        db,
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}

package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/pizzas505/table-reservation/internal/model"
)

// PolicyRepo supplies business hours and cutoff policies.  Both are
// configuration rows that change rarely and are read on every booking,
// so reads go through an optional redis cache.  A nil redis client
// disables caching and every read hits MySQL.
type PolicyRepo struct {
    db       *sql.DB
    cache    *redis.Client
    cacheTTL time.Duration
}

// NewPolicyRepo returns a PolicyRepo.  rdb may be nil.
func NewPolicyRepo(db *sql.DB, rdb *redis.Client) *PolicyRepo {
    return &PolicyRepo{db: db, cache: rdb, cacheTTL: 5 * time.Minute}
}

// cachedHours is the JSON shape stored in redis for a business-hours day.
type cachedHours struct {
    Open  string `json:"open"`
    Close string `json:"close"`
}

// BusinessHours returns the open/close interval for an ISO day of week
// (1=Monday .. 7=Sunday).  A day with no configured row yields
// ErrClosedDay; validation treats that day as closed.
func (r *PolicyRepo) BusinessHours(ctx context.Context, dayOfWeek int) (model.BusinessHours, error) {
    if dayOfWeek < 1 || dayOfWeek > 7 {
        return model.BusinessHours{}, fmt.Errorf("day of week out of range: %d", dayOfWeek)
    }
    key := fmt.Sprintf("policy:hours:%d", dayOfWeek)
    if r.cache != nil {
        if raw, err := r.cache.Get(ctx, key).Result(); err == nil {
            var ch cachedHours
            if json.Unmarshal([]byte(raw), &ch) == nil {
                return buildHours(dayOfWeek, ch.Open, ch.Close)
            }
        }
    }

    const q = `SELECT open_time, close_time FROM business_hours WHERE day_of_week = ?`
    var openStr, closeStr string
    err := r.db.QueryRowContext(ctx, q, dayOfWeek).Scan(&openStr, &closeStr)
    if errors.Is(err, sql.ErrNoRows) {
        return model.BusinessHours{}, ErrClosedDay
    }
    if err != nil {
        return model.BusinessHours{}, err
    }
    if r.cache != nil {
        if raw, err := json.Marshal(cachedHours{Open: openStr, Close: closeStr}); err == nil {
            _ = r.cache.Set(ctx, key, raw, r.cacheTTL).Err()
        }
    }
    return buildHours(dayOfWeek, openStr, closeStr)
}

func buildHours(dayOfWeek int, openStr, closeStr string) (model.BusinessHours, error) {
    open, err := model.ParseDayTime(openStr)
    if err != nil {
        return model.BusinessHours{}, err
    }
    closeAt, err := model.ParseDayTime(closeStr)
    if err != nil {
        return model.BusinessHours{}, err
    }
    return model.BusinessHours{DayOfWeek: dayOfWeek, Open: open, Close: closeAt}, nil
}

// CutoffHours returns how many hours before the scheduled time a
// customer change of the given kind remains allowed.  A missing policy
// row yields ErrPolicyNotFound; callers treat that as disallowing.
func (r *PolicyRepo) CutoffHours(ctx context.Context, kind model.PolicyKind) (int, error) {
    key := fmt.Sprintf("policy:cutoff:%s", kind)
    if r.cache != nil {
        if raw, err := r.cache.Get(ctx, key).Result(); err == nil {
            var hours int
            if json.Unmarshal([]byte(raw), &hours) == nil {
                return hours, nil
            }
        }
    }

    const q = `SELECT hours_before FROM reservation_policies WHERE policy_type = ?`
    var hours int
    err := r.db.QueryRowContext(ctx, q, string(kind)).Scan(&hours)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, ErrPolicyNotFound
    }
    if err != nil {
        return 0, err
    }
    if r.cache != nil {
        if raw, err := json.Marshal(hours); err == nil {
            _ = r.cache.Set(ctx, key, raw, r.cacheTTL).Err()
        }
    }
    return hours, nil
}

// Policies returns every cutoff policy row including its guest-facing
// description, for the public policy view.
func (r *PolicyRepo) Policies(ctx context.Context) ([]model.Policy, error) {
    const q = `SELECT policy_type, hours_before, description FROM reservation_policies ORDER BY policy_type`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Policy, 0, 2)
    for rows.Next() {
        var (
            p    model.Policy
            kind string
            desc sql.NullString
        )
        if err := rows.Scan(&kind, &p.HoursBefore, &desc); err != nil {
            return nil, err
        }
        p.Kind = model.PolicyKind(kind)
        if desc.Valid {
            p.Description = desc.String
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Invalidate drops the cached policy entries so the next reads re-load
// from MySQL after hours or policies change out of band.
func (r *PolicyRepo) Invalidate(ctx context.Context) error {
    if r.cache == nil {
        return nil
    }
    keys := make([]string, 0, 9)
    for d := 1; d <= 7; d++ {
        keys = append(keys, fmt.Sprintf("policy:hours:%d", d))
    }
    keys = append(keys,
        fmt.Sprintf("policy:cutoff:%s", model.PolicyCancellation),
        fmt.Sprintf("policy:cutoff:%s", model.PolicyModification),
    )
    return r.cache.Del(ctx, keys...).Err()
}

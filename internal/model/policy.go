package model

import (
    "fmt"
    "time"
)

// PolicyKind selects which cutoff policy applies to an operation.
type PolicyKind string

const (
    PolicyCancellation PolicyKind = "cancellation"
    PolicyModification PolicyKind = "modification"
)

// Policy is a single row of the reservation_policies table: how many
// hours before the scheduled time a customer-initiated change of the
// given kind remains allowed.
type Policy struct {
    Kind        PolicyKind // reservation_policies.policy_type
    HoursBefore int        // reservation_policies.hours_before
    Description string     // reservation_policies.description
}

// DayTime is a wall-clock time of day with minute precision, used for
// business hours bounds.
type DayTime struct {
    Hour   int
    Minute int
}

// ParseDayTime accepts "HH:MM" or "HH:MM:SS" (the DB TIME column format)
// and returns the corresponding DayTime.
func ParseDayTime(s string) (DayTime, error) {
    var h, m, sec int
    if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
        if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
            return DayTime{}, fmt.Errorf("invalid time of day %q", s)
        }
    }
    if h < 0 || h > 23 || m < 0 || m > 59 {
        return DayTime{}, fmt.Errorf("invalid time of day %q", s)
    }
    return DayTime{Hour: h, Minute: m}, nil
}

// Minutes returns the time of day as minutes since midnight.
func (d DayTime) Minutes() int { return d.Hour*60 + d.Minute }

// String renders the time as "HH:MM".
func (d DayTime) String() string { return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute) }

// BusinessHours is the open/close interval for one ISO day of week
// (1=Monday .. 7=Sunday).  A day with no row in the business_hours
// table is closed.
type BusinessHours struct {
    DayOfWeek int     // business_hours.day_of_week (ISO 1..7)
    Open      DayTime // business_hours.open_time
    Close     DayTime // business_hours.close_time
}

// Contains reports whether the wall-clock time of t falls within the
// open interval.  Both bounds are inclusive: a reservation exactly at
// opening or closing time is accepted.
func (b BusinessHours) Contains(t time.Time) bool {
    m := t.Hour()*60 + t.Minute()
    return m >= b.Open.Minutes() && m <= b.Close.Minutes()
}

// ISOWeekday returns the ISO day of week (1=Monday .. 7=Sunday) for t.
// time.Weekday counts Sunday as 0, which does not match the
// business_hours schema.
func ISOWeekday(t time.Time) int {
    wd := int(t.Weekday())
    if wd == 0 {
        return 7
    }
    return wd
}

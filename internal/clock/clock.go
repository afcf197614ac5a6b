// Package clock abstracts "now" so that validation against business
// hours and cutoffs can be tested with a pinned time.  All instants are
// produced in the restaurant's configured zone.
package clock

import "time"

// Clock supplies the current instant in the restaurant's local zone.
type Clock interface {
    Now() time.Time
    Location() *time.Location
}

// System is the production clock.  It reads the wall clock and converts
// into the configured zone.
type System struct {
    loc *time.Location
}

// NewSystem returns a System clock for the named IANA zone.
func NewSystem(zone string) (*System, error) {
    loc, err := time.LoadLocation(zone)
    if err != nil {
        return nil, err
    }
    return &System{loc: loc}, nil
}

func (s *System) Now() time.Time           { return time.Now().In(s.loc) }
func (s *System) Location() *time.Location { return s.loc }

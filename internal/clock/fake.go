package clock

import (
    "sync"
    "time"
)

// Fake is a settable clock for tests.  It is safe for concurrent use so
// scenarios can advance time while handlers are in flight.
type Fake struct {
    mu  sync.Mutex
    now time.Time
}

// NewFake returns a Fake pinned to t.
func NewFake(t time.Time) *Fake {
    return &Fake{now: t}
}

func (f *Fake) Now() time.Time {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.now
}

func (f *Fake) Location() *time.Location {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.now.Location()
}

// Set pins the clock to t.
func (f *Fake) Set(t time.Time) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.now = t
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.now = f.now.Add(d)
}

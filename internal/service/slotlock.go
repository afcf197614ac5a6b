package service

import (
    "sync"
    "time"

    "github.com/pizzas505/table-reservation/internal/model"
)

// slotKey identifies one bookable slot: a table at a minute.
type slotKey struct {
    table  model.TableID
    minute int64
}

// slotLocks serializes check-then-write sequences per slot.  Without
// this, two concurrent creators can both observe "no conflict" and both
// insert.  Entries are reference-counted and removed when the last
// holder releases, so the map stays small.
type slotLocks struct {
    mu    sync.Mutex
    slots map[slotKey]*slotEntry
}

type slotEntry struct {
    mu   sync.Mutex
    refs int
}

func newSlotLocks() *slotLocks {
    return &slotLocks{slots: make(map[slotKey]*slotEntry)}
}

// lock acquires the mutex for (tableID, at) and returns the unlock
// function.  at must already be truncated to minute precision.
func (s *slotLocks) lock(tableID model.TableID, at time.Time) func() {
    key := slotKey{table: tableID, minute: at.Unix() / 60}

    s.mu.Lock()
    e, ok := s.slots[key]
    if !ok {
        e = &slotEntry{}
        s.slots[key] = e
    }
    e.refs++
    s.mu.Unlock()

    e.mu.Lock()
    return func() {
        e.mu.Unlock()
        s.mu.Lock()
        e.refs--
        if e.refs == 0 {
            delete(s.slots, key)
        }
        s.mu.Unlock()
    }
}

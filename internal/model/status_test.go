package model

import "testing"

func TestStatusTransitions(t *testing.T) {
    cases := []struct {
        from, to Status
        want     bool
    }{
        {StatusConfirmed, StatusSeated, true},
        {StatusConfirmed, StatusCancelled, true},
        {StatusConfirmed, StatusNoShow, true},
        {StatusConfirmed, StatusCompleted, false},
        {StatusSeated, StatusCompleted, true},
        {StatusSeated, StatusCancelled, false},
        {StatusSeated, StatusNoShow, false},
        {StatusCancelled, StatusConfirmed, false},
        {StatusNoShow, StatusSeated, false},
        {StatusCompleted, StatusConfirmed, false},
        {StatusConfirmed, StatusConfirmed, false},
    }
    for _, c := range cases {
        if got := c.from.CanTransitionTo(c.to); got != c.want {
            t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
        }
    }
}

func TestStatusActive(t *testing.T) {
    active := []Status{StatusConfirmed, StatusSeated, StatusCompleted}
    for _, s := range active {
        if !s.Active() {
            t.Errorf("%s should occupy its slot", s)
        }
    }
    freed := []Status{StatusCancelled, StatusNoShow}
    for _, s := range freed {
        if s.Active() {
            t.Errorf("%s should free its slot", s)
        }
    }
}

func TestStatusValid(t *testing.T) {
    for _, s := range []Status{StatusConfirmed, StatusSeated, StatusCancelled, StatusNoShow, StatusCompleted} {
        if !s.Valid() {
            t.Errorf("%s should be valid", s)
        }
    }
    if Status("pending").Valid() {
        t.Error("pending should not be a known status")
    }
}

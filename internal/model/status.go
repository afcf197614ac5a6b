package model

// Status is the lifecycle state of a reservation.  The set is closed:
// every reservation starts out confirmed and can only move along the
// transitions listed below.
//
//	confirmed -> seated | cancelled | no-show
//	seated    -> completed
//	cancelled, no-show, completed are terminal
type Status string

const (
    StatusConfirmed Status = "confirmed"
    StatusSeated    Status = "seated"
    StatusCancelled Status = "cancelled"
    StatusNoShow    Status = "no-show"
    StatusCompleted Status = "completed"
)

// transitions enumerates every permitted state change.  Anything not in
// this table is rejected.
var transitions = map[Status][]Status{
    StatusConfirmed: {StatusSeated, StatusCancelled, StatusNoShow},
    StatusSeated:    {StatusCompleted},
}

// Valid reports whether s is one of the five known states.
func (s Status) Valid() bool {
    switch s {
    case StatusConfirmed, StatusSeated, StatusCancelled, StatusNoShow, StatusCompleted:
        return true
    }
    return false
}

// CanTransitionTo reports whether moving from s to next is a permitted
// lifecycle transition.
func (s Status) CanTransitionTo(next Status) bool {
    for _, t := range transitions[s] {
        if t == next {
            return true
        }
    }
    return false
}

// Active reports whether a reservation in this state occupies its slot
// for conflict detection.  Cancelled and no-show reservations free the
// slot.
func (s Status) Active() bool {
    return s != StatusCancelled && s != StatusNoShow
}

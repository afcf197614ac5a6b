package model

// Nominal identifier types for the reservation domain.  Using distinct
// types prevents a table ID from being passed where a reservation ID is
// expected; the compiler catches the mix-up instead of the database.

// ReservationID is the surrogate key assigned by the store on insert.
type ReservationID uint64

// NoReservation is the sentinel "exclude nothing" value for conflict
// queries on new reservations.
const NoReservation ReservationID = 0

// TableID references a row in the tables catalog.
type TableID uint64

// CustomerID identifies an authenticated account in the users table.
// Reservations created by staff for walk-ins carry no customer ID.
type CustomerID uint64

// ReferenceID is the short opaque token customers use to look up or
// modify a booking without logging in.
type ReferenceID string

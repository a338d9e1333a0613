// Package repository contains the data access layer. Sentinel errors
// defined here let handlers and services distinguish failure scenarios
// with errors.Is instead of inspecting driver errors: ErrSeatConflict is
// the expected signal of a lost seat race, ErrImmutableSeat guards paid
// tickets, ErrConflict covers state conflicts such as shrinking a session
// grid below issued tickets or scheduling two sessions in one room at the
// same time.
package repository

import "errors"

// ErrSeatConflict is returned when a seat claim loses the uniqueness race
// on (session, row, seat). Any ticket status counts as occupying the
// seat. Handlers translate this into HTTP 409.
var ErrSeatConflict = errors.New("seat already taken for this session")

// ErrImmutableSeat is returned when a caller tries to change the seat
// identity of a ticket that has been paid. Handlers translate this into
// HTTP 409.
var ErrImmutableSeat = errors.New("seat of a paid ticket cannot be changed")

// ErrConflict is returned when an update or delete cannot proceed because
// of conflicting state, such as reducing a session's grid below an
// existing ticket's coordinates. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

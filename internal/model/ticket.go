package model

import "time"

// TicketStatus is the lifecycle state of a ticket. It is a closed enum:
// tickets are created RESERVED and may move to PAID exactly once. There is
// no transition out of PAID.
type TicketStatus string

const (
	StatusReserved TicketStatus = "RESERVED"
	StatusPaid     TicketStatus = "PAID"
)

// Valid reports whether the status is one of the two known states.
func (s TicketStatus) Valid() bool {
	return s == StatusReserved || s == StatusPaid
}

// CanTransition reports whether moving from s to next is a legal edge of
// the lifecycle. Re-applying the current state is allowed so that paying a
// paid ticket stays an idempotent no-op.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	switch {
	case s == next:
		return true
	case s == StatusReserved && next == StatusPaid:
		return true
	}
	return false
}

// Ticket is a claim on one seat of one session. The triple
// (SessionID, RowLetter, SeatNumber) is unique across all tickets
// regardless of status; the database constraint is the arbiter under
// concurrent claims. RowLetter is stored uppercase. Once the ticket is
// PAID its seat identity is frozen.
type Ticket struct {
	ID         uint64       `json:"id"`
	SessionID  uint64       `json:"session_id"`
	RowLetter  string       `json:"row_letter"`
	SeatNumber uint32       `json:"seat_number"`
	Status     TicketStatus `json:"status"`
	Email      string       `json:"email,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// SeatOccupancy is one occupied cell of a session's grid, as reported by
// the ticket store's snapshot read.
type SeatOccupancy struct {
	RowLetter  string       `json:"row_letter"`
	SeatNumber uint32       `json:"seat_number"`
	Status     TicketStatus `json:"status"`
}

// Package queue defines the domain events exchanged over the message
// broker and the publisher/consumer pair that moves them.
package queue

// TicketEvent is published whenever a ticket is created or paid. It
// carries enough for downstream consumers (notifications, analytics) to
// act without querying the primary database. Kind distinguishes the two
// queues sharing this payload.
type TicketEvent struct {
	Kind       string `json:"kind"` // "reserved" | "paid"
	TicketID   uint64 `json:"ticket_id"`
	SessionID  uint64 `json:"session_id"`
	SeatLabel  string `json:"seat_label"`
	Status     string `json:"status"`
	Email      string `json:"email,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Queue names. Both queues are declared durable by publisher and
// consumer alike, so declaration order does not matter.
const (
	QueueTicketReserved = "ticket.reserved"
	QueueTicketPaid     = "ticket.paid"
)

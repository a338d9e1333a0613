// Package booking implements the ticket lifecycle: reservation, payment,
// seat moves and seat-map reads. The state machine per ticket is
// {none} --reserve--> RESERVED --pay--> PAID, with PAID terminal. The
// service never decides seat races itself; it delegates to the ticket
// store, whose uniqueness constraint makes exactly one concurrent claim
// win.
package booking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cinebook/booking-api/internal/cache"
	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/queue"
	"github.com/cinebook/booking-api/internal/repository"
	"github.com/cinebook/booking-api/internal/seatmap"
)

// TicketStore is the persistence contract the lifecycle relies on. Claim
// must be atomic: the losing side of two racing claims for one seat gets
// repository.ErrSeatConflict without partial writes. Snapshot must read
// occupancy and counts from one consistent view.
type TicketStore interface {
	Claim(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	SetStatus(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error)
	MoveSeat(ctx context.Context, id uint64, letter string, number uint32) (*model.Ticket, error)
	Snapshot(ctx context.Context, sessionID uint64) ([]model.SeatOccupancy, map[model.TicketStatus]uint32, error)
	CountsByStatus(ctx context.Context, sessionID uint64) (map[model.TicketStatus]uint32, error)
	Delete(ctx context.Context, id uint64) error
}

// SessionStore resolves session geometry for validation and rendering.
type SessionStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Session, error)
}

// EventPublisher receives domain events after successful writes.
// Publishing is best effort; implementations must not block the booking
// flow on broker failures.
type EventPublisher interface {
	TicketReserved(ctx context.Context, ev queue.TicketEvent)
	TicketPaid(ctx context.Context, ev queue.TicketEvent)
}

// Service orchestrates the ticket lifecycle over the stores.
type Service struct {
	tickets  TicketStore
	sessions SessionStore
	maps     *cache.SeatMaps
	events   EventPublisher
}

// NewService wires the lifecycle controller. maps and events may be nil;
// both are optional collaborators.
func NewService(tickets TicketStore, sessions SessionStore, maps *cache.SeatMaps, events EventPublisher) *Service {
	if tickets == nil || sessions == nil {
		panic("nil store passed to booking.NewService")
	}
	return &Service{tickets: tickets, sessions: sessions, maps: maps, events: events}
}

// Reserve creates a ticket in RESERVED status for the given seat. The row
// letter is normalized to uppercase before anything else, then validated
// against the session's geometry; out-of-grid addresses fail with
// seatmap.ErrInvalidSeat and an occupied seat with
// repository.ErrSeatConflict. Email may be empty.
func (s *Service) Reserve(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	letter = seatmap.NormalizeRow(letter)
	if err := seatmap.Validate(sess.Rows, sess.Columns, letter, number); err != nil {
		return nil, err
	}
	t := &model.Ticket{
		SessionID:  sessionID,
		RowLetter:  letter,
		SeatNumber: number,
		Status:     model.StatusReserved,
		Email:      email,
	}
	if err := s.tickets.Claim(ctx, t); err != nil {
		return nil, err
	}
	s.maps.Invalidate(ctx, sessionID)
	if s.events != nil {
		s.events.TicketReserved(ctx, eventFor(t))
	}
	return t, nil
}

// Pay transitions a ticket to PAID. Paying an already paid ticket is a
// no-op returning the current record, so payment confirmations can be
// delivered at least once without errors. The seat identity is untouched
// here, which is why the immutability rule never triggers on this path.
func (s *Service) Pay(ctx context.Context, ticketID uint64) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.StatusPaid {
		return t, nil
	}
	if !t.Status.CanTransition(model.StatusPaid) {
		return nil, repository.ErrConflict
	}
	paid, err := s.tickets.SetStatus(ctx, ticketID, model.StatusPaid)
	if err != nil {
		return nil, err
	}
	s.maps.Invalidate(ctx, paid.SessionID)
	if s.events != nil {
		s.events.TicketPaid(ctx, eventFor(paid))
	}
	return paid, nil
}

// MoveSeat relocates a reserved ticket to another seat of its session.
// The destination is validated against geometry first; a paid ticket
// fails with repository.ErrImmutableSeat and an occupied destination with
// repository.ErrSeatConflict, leaving the ticket unchanged either way.
func (s *Service) MoveSeat(ctx context.Context, ticketID uint64, letter string, number uint32) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.StatusPaid {
		return nil, repository.ErrImmutableSeat
	}
	sess, err := s.sessions.GetByID(ctx, t.SessionID)
	if err != nil {
		return nil, err
	}
	letter = seatmap.NormalizeRow(letter)
	if err := seatmap.Validate(sess.Rows, sess.Columns, letter, number); err != nil {
		return nil, err
	}
	moved, err := s.tickets.MoveSeat(ctx, ticketID, letter, number)
	if err != nil {
		return nil, err
	}
	s.maps.Invalidate(ctx, moved.SessionID)
	return moved, nil
}

// Delete removes a ticket administratively, freeing its seat. This is not
// a lifecycle transition; paid tickets can be deleted too.
func (s *Service) Delete(ctx context.Context, ticketID uint64) error {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return err
	}
	s.maps.Invalidate(ctx, t.SessionID)
	return nil
}

// SeatMap is the rendered grid of one session plus the metadata clients
// need to draw it.
type SeatMap struct {
	SessionID   uint64                        `json:"session_id"`
	MovieID     uint64                        `json:"movie_id"`
	Rows        uint32                        `json:"rows"`
	Columns     uint32                        `json:"columns"`
	Layout      [][]seatmap.Cell              `json:"layout"`
	Counts      map[model.TicketStatus]uint32 `json:"counts"`
	GeneratedAt time.Time                     `json:"generated_at"`
}

// GetSeatMap renders the full grid of a session. detailed selects the
// tri-state cells over the boolean default. The grid and the counts come
// from one store snapshot, and the rendered result is served from the
// seat-map cache between writes.
func (s *Service) GetSeatMap(ctx context.Context, sessionID uint64, detailed bool) (*SeatMap, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if bs, ok := s.maps.Get(ctx, sessionID, detailed); ok {
		var cached SeatMap
		if err := json.Unmarshal(bs, &cached); err == nil {
			return &cached, nil
		}
	}
	occ, counts, err := s.tickets.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m := &SeatMap{
		SessionID:   sess.ID,
		MovieID:     sess.MovieID,
		Rows:        sess.Rows,
		Columns:     sess.Columns,
		Layout:      seatmap.Build(sess.Rows, sess.Columns, occ, detailed),
		Counts:      counts,
		GeneratedAt: time.Now().UTC(),
	}
	if bs, err := json.Marshal(m); err == nil {
		s.maps.Set(ctx, sessionID, detailed, bs)
	}
	return m, nil
}

// InvalidateSeatMap drops the cached maps of a session. Ticket writes
// invalidate internally; session handlers call this after geometry or
// schedule edits so a resized grid is visible before the cache TTL runs
// out.
func (s *Service) InvalidateSeatMap(ctx context.Context, sessionID uint64) {
	s.maps.Invalidate(ctx, sessionID)
}

// Availability reports the live seat counts of a session.
func (s *Service) Availability(ctx context.Context, sessionID uint64) (*model.SessionCounts, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	counts, err := s.tickets.CountsByStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c := &model.SessionCounts{
		Reserved: counts[model.StatusReserved],
		Paid:     counts[model.StatusPaid],
		Total:    sess.TotalSeats(),
	}
	c.Available = c.Total - c.Reserved - c.Paid
	return c, nil
}

func eventFor(t *model.Ticket) queue.TicketEvent {
	return queue.TicketEvent{
		TicketID:   t.ID,
		SessionID:  t.SessionID,
		SeatLabel:  seatmap.Label(t.RowLetter, t.SeatNumber),
		Status:     string(t.Status),
		Email:      t.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

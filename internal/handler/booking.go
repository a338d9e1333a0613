package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/booking"
	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/repository"
	"github.com/cinebook/booking-api/internal/seatmap"
)

// BookingService is the slice of the lifecycle controller the HTTP layer
// needs. *booking.Service implements it; tests substitute mocks.
type BookingService interface {
	Reserve(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error)
	Pay(ctx context.Context, ticketID uint64) (*model.Ticket, error)
	MoveSeat(ctx context.Context, ticketID uint64, letter string, number uint32) (*model.Ticket, error)
	Delete(ctx context.Context, ticketID uint64) error
	GetSeatMap(ctx context.Context, sessionID uint64, detailed bool) (*booking.SeatMap, error)
	Availability(ctx context.Context, sessionID uint64) (*model.SessionCounts, error)
	InvalidateSeatMap(ctx context.Context, sessionID uint64)
}

// writeDomainError maps lifecycle errors onto HTTP statuses: invalid seat
// addresses are client input errors, lost seat races and paid-seat moves
// are conflicts, unknown ids are 404 and anything else is a generic
// internal failure that is never conflated with a seat conflict.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, seatmap.ErrInvalidSeat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSeatConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already reserved or paid for this session"})
	case errors.Is(err, repository.ErrImmutableSeat):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change the seat of a paid ticket"})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/repository"
	"github.com/cinebook/booking-api/internal/seatmap"
)

// TicketHandler serves the ticket lifecycle endpoints. Lifecycle
// operations go through the booking service; listing and export read the
// repository directly.
type TicketHandler struct {
	Booking BookingService
	Tickets *repository.TicketRepo
}

// NewTicketHandler constructs a TicketHandler. Tickets may be nil in
// tests that only exercise the lifecycle routes.
func NewTicketHandler(svc BookingService, tickets *repository.TicketRepo) *TicketHandler {
	if svc == nil {
		panic("nil booking service passed to NewTicketHandler")
	}
	return &TicketHandler{Booking: svc, Tickets: tickets}
}

// ticketResponse decorates a ticket with its seat label.
type ticketResponse struct {
	model.Ticket
	SeatLabel string `json:"seat_label"`
}

func ticketOut(t *model.Ticket) ticketResponse {
	return ticketResponse{Ticket: *t, SeatLabel: seatmap.Label(t.RowLetter, t.SeatNumber)}
}

// Reserve handles POST /v1/tickets. It creates a RESERVED ticket for the
// requested seat; the row letter may arrive in any case and is returned
// uppercase. 400 signals a seat outside the grid, 409 a seat already
// claimed.
func (h *TicketHandler) Reserve(c echo.Context) error {
	var body struct {
		SessionID  uint64 `json:"session_id"`
		RowLetter  string `json:"row_letter"`
		SeatNumber uint32 `json:"seat_number"`
		Email      string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}
	t, err := h.Booking.Reserve(c.Request().Context(), body.SessionID, body.RowLetter, body.SeatNumber, body.Email)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, ticketOut(t))
}

// Pay handles POST /v1/tickets/:id/pay. Paying an already paid ticket
// returns 200 with the unchanged record.
func (h *TicketHandler) Pay(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.Booking.Pay(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, ticketOut(t))
}

// Move handles PATCH /v1/tickets/:id, relocating a reserved ticket to a
// different seat of its session. Paid tickets are immutable (409).
func (h *TicketHandler) Move(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var body struct {
		RowLetter  string `json:"row_letter"`
		SeatNumber uint32 `json:"seat_number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	t, err := h.Booking.MoveSeat(c.Request().Context(), id, body.RowLetter, body.SeatNumber)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, ticketOut(t))
}

// Get handles GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.Tickets.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, ticketOut(t))
}

// List handles GET /v1/tickets with optional filters: session_id, status,
// email (substring), created_after and created_before (RFC3339).
func (h *TicketHandler) List(c echo.Context) error {
	var f repository.TicketFilter
	if v := c.QueryParam("session_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session_id"})
		}
		f.SessionID = id
	}
	if v := c.QueryParam("status"); v != "" {
		st := model.TicketStatus(v)
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be RESERVED or PAID"})
		}
		f.Status = st
	}
	f.Email = c.QueryParam("email")
	if v := c.QueryParam("created_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid created_after"})
		}
		f.CreatedAfter = t
	}
	if v := c.QueryParam("created_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid created_before"})
		}
		f.CreatedBefore = t
	}
	tickets, err := h.Tickets.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, ticketOut(&tickets[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Delete handles DELETE /v1/tickets/:id, an administrative removal that
// frees the seat.
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Booking.Delete(c.Request().Context(), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportCSV handles GET /v1/sessions/:id/tickets.csv, streaming every
// ticket of a session as CSV for back-office use.
func (h *TicketHandler) ExportCSV(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	rows, err := h.Tickets.ExportBySession(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	filename := fmt.Sprintf("tickets_session_%d_%s.csv", id, time.Now().UTC().Format("20060102_1504"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"ticket_id", "movie", "room", "starts_at", "seat", "status", "email", "created_at"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatUint(r.TicketID, 10),
			r.MovieTitle,
			r.Room,
			r.StartsAt.UTC().Format(time.RFC3339),
			seatmap.Label(r.RowLetter, r.SeatNumber),
			string(r.Status),
			r.Email,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

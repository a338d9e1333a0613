package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/repository"
)

// SessionHandler serves scheduled screenings, including the seat-map and
// availability reads that delegate to the booking service.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Movies   *repository.MovieRepo
	Booking  BookingService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions *repository.SessionRepo, movies *repository.MovieRepo, svc BookingService) *SessionHandler {
	if sessions == nil || svc == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions, Movies: movies, Booking: svc}
}

type sessionRequest struct {
	MovieID  uint64    `json:"movie_id"`
	StartsAt time.Time `json:"starts_at"`
	Room     string    `json:"room"`
	Rows     uint32    `json:"rows"`
	Columns  uint32    `json:"columns"`
}

func (r *sessionRequest) toModel(id uint64) *model.Session {
	room := r.Room
	if room == "" {
		room = "Sala 1"
	}
	return &model.Session{
		ID:       id,
		MovieID:  r.MovieID,
		StartsAt: r.StartsAt,
		Room:     room,
		Rows:     r.Rows,
		Columns:  r.Columns,
	}
}

func (r *sessionRequest) validate() string {
	if r.MovieID == 0 {
		return "movie_id is required"
	}
	if r.StartsAt.IsZero() {
		return "starts_at is required"
	}
	if r.Rows < 1 || r.Columns < 1 {
		return "rows and columns must be at least 1"
	}
	if r.Rows > model.MaxRows {
		return "rows cannot exceed 26 (rows are addressed A-Z)"
	}
	return ""
}

// Create handles POST /v1/sessions. The referenced movie must exist and
// the (starts_at, room) pair must be free.
func (h *SessionHandler) Create(c echo.Context) error {
	var body sessionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, body.MovieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	s := body.toModel(0)
	if err := h.Sessions.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "another session is scheduled in this room at this time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, s)
}

// List handles GET /v1/sessions with optional filters movie_id, room,
// starts_after and starts_before (RFC3339). Every item carries its
// ticket counts.
func (h *SessionHandler) List(c echo.Context) error {
	var f repository.SessionFilter
	if v := c.QueryParam("movie_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
		}
		f.MovieID = id
	}
	f.Room = c.QueryParam("room")
	if v := c.QueryParam("starts_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_after"})
		}
		f.StartsAfter = t
	}
	if v := c.QueryParam("starts_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_before"})
		}
		f.StartsBefore = t
	}
	sessions, err := h.Sessions.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": sessions})
}

// Get handles GET /v1/sessions/:id, returning the session with counts.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	d, err := h.Sessions.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PUT /v1/sessions/:id. Shrinking the grid below an
// issued ticket's coordinates is rejected with 409 so no ticket can be
// orphaned outside the grid.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var body sessionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	s := body.toModel(id)
	if err := h.Sessions.Update(c.Request().Context(), s); err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "geometry or schedule conflicts with existing state"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// A resized grid must not be served from the seat-map cache.
	h.Booking.InvalidateSeatMap(c.Request().Context(), id)
	d, err := h.Sessions.GetDetail(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /v1/sessions/:id; tickets cascade.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.Booking.InvalidateSeatMap(c.Request().Context(), id)
	return c.NoContent(http.StatusNoContent)
}

// SeatMap handles GET /v1/sessions/:id/seats. The optional
// ?include=status query switches each cell from a boolean occupied flag
// to the tri-state free/reserved/paid rendering.
func (h *SessionHandler) SeatMap(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	detailed := c.QueryParam("include") == "status"
	m, err := h.Booking.GetSeatMap(c.Request().Context(), id, detailed)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Availability handles GET /v1/sessions/:id/availability, the live seat
// counts of one session.
func (h *SessionHandler) Availability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	counts, err := h.Booking.Availability(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

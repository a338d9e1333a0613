package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/cinebook/booking-api/internal/booking"
	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/repository"
	"github.com/cinebook/booking-api/internal/seatmap"
)

// mockBooking implements BookingService with overridable function fields.
type mockBooking struct {
	reserve      func(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error)
	pay          func(ctx context.Context, ticketID uint64) (*model.Ticket, error)
	moveSeat     func(ctx context.Context, ticketID uint64, letter string, number uint32) (*model.Ticket, error)
	delete       func(ctx context.Context, ticketID uint64) error
	getSeatMap   func(ctx context.Context, sessionID uint64, detailed bool) (*booking.SeatMap, error)
	availability func(ctx context.Context, sessionID uint64) (*model.SessionCounts, error)

	invalidated []uint64 // session ids passed to InvalidateSeatMap
}

func (m *mockBooking) Reserve(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error) {
	return m.reserve(ctx, sessionID, letter, number, email)
}

func (m *mockBooking) Pay(ctx context.Context, ticketID uint64) (*model.Ticket, error) {
	return m.pay(ctx, ticketID)
}

func (m *mockBooking) MoveSeat(ctx context.Context, ticketID uint64, letter string, number uint32) (*model.Ticket, error) {
	return m.moveSeat(ctx, ticketID, letter, number)
}

func (m *mockBooking) Delete(ctx context.Context, ticketID uint64) error {
	return m.delete(ctx, ticketID)
}

func (m *mockBooking) GetSeatMap(ctx context.Context, sessionID uint64, detailed bool) (*booking.SeatMap, error) {
	return m.getSeatMap(ctx, sessionID, detailed)
}

func (m *mockBooking) Availability(ctx context.Context, sessionID uint64) (*model.SessionCounts, error) {
	return m.availability(ctx, sessionID)
}

func (m *mockBooking) InvalidateSeatMap(ctx context.Context, sessionID uint64) {
	m.invalidated = append(m.invalidated, sessionID)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTicketReserve(t *testing.T) {
	mock := &mockBooking{
		reserve: func(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error) {
			assert.Equal(t, uint64(1), sessionID)
			assert.Equal(t, "b", letter)
			assert.Equal(t, uint32(7), number)
			return &model.Ticket{
				ID:         42,
				SessionID:  sessionID,
				RowLetter:  seatmap.NormalizeRow(letter),
				SeatNumber: number,
				Status:     model.StatusReserved,
				Email:      email,
			}, nil
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets",
		`{"session_id":1,"row_letter":"b","seat_number":7,"email":"ana@example.com"}`)
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var out struct {
		ID        uint64 `json:"id"`
		RowLetter string `json:"row_letter"`
		Status    string `json:"status"`
		SeatLabel string `json:"seat_label"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, uint64(42), out.ID)
	assert.Equal(t, "B", out.RowLetter)
	assert.Equal(t, "RESERVED", out.Status)
	assert.Equal(t, "B7", out.SeatLabel)
}

func TestTicketReserveConflict(t *testing.T) {
	mock := &mockBooking{
		reserve: func(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error) {
			return nil, repository.ErrSeatConflict
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets",
		`{"session_id":1,"row_letter":"A","seat_number":1}`)
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTicketReserveInvalidSeat(t *testing.T) {
	mock := &mockBooking{
		reserve: func(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error) {
			return nil, fmt.Errorf("%w: row ZZ", seatmap.ErrInvalidSeat)
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets",
		`{"session_id":1,"row_letter":"ZZ","seat_number":1}`)
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketReserveUnknownSession(t *testing.T) {
	mock := &mockBooking{
		reserve: func(ctx context.Context, sessionID uint64, letter string, number uint32, email string) (*model.Ticket, error) {
			return nil, repository.ErrSessionNotFound
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets",
		`{"session_id":99,"row_letter":"A","seat_number":1}`)
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTicketReserveMissingSession(t *testing.T) {
	h := NewTicketHandler(&mockBooking{}, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets",
		`{"row_letter":"A","seat_number":1}`)
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketPay(t *testing.T) {
	mock := &mockBooking{
		pay: func(ctx context.Context, ticketID uint64) (*model.Ticket, error) {
			assert.Equal(t, uint64(42), ticketID)
			return &model.Ticket{ID: 42, SessionID: 1, RowLetter: "B", SeatNumber: 7, Status: model.StatusPaid}, nil
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets/42/pay", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.Pay(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"PAID"`)
}

func TestTicketPayBadID(t *testing.T) {
	h := NewTicketHandler(&mockBooking{}, nil)

	c, rec := newJSONContext(http.MethodPost, "/v1/tickets/abc/pay", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assert.NoError(t, h.Pay(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketMovePaidTicket(t *testing.T) {
	mock := &mockBooking{
		moveSeat: func(ctx context.Context, ticketID uint64, letter string, number uint32) (*model.Ticket, error) {
			return nil, repository.ErrImmutableSeat
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPatch, "/v1/tickets/42",
		`{"row_letter":"C","seat_number":3}`)
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.Move(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTicketMove(t *testing.T) {
	mock := &mockBooking{
		moveSeat: func(ctx context.Context, ticketID uint64, letter string, number uint32) (*model.Ticket, error) {
			return &model.Ticket{ID: ticketID, SessionID: 1, RowLetter: "C", SeatNumber: 3, Status: model.StatusReserved}, nil
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodPatch, "/v1/tickets/42",
		`{"row_letter":"c","seat_number":3}`)
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.Move(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"C3"`)
}

func TestTicketDelete(t *testing.T) {
	mock := &mockBooking{
		delete: func(ctx context.Context, ticketID uint64) error {
			assert.Equal(t, uint64(42), ticketID)
			return nil
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodDelete, "/v1/tickets/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTicketDeleteNotFound(t *testing.T) {
	mock := &mockBooking{
		delete: func(ctx context.Context, ticketID uint64) error {
			return repository.ErrTicketNotFound
		},
	}
	h := NewTicketHandler(mock, nil)

	c, rec := newJSONContext(http.MethodDelete, "/v1/tickets/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

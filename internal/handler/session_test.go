package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/cinebook/booking-api/internal/booking"
	"github.com/cinebook/booking-api/internal/model"
	"github.com/cinebook/booking-api/internal/repository"
	"github.com/cinebook/booking-api/internal/seatmap"
)

func TestSessionCreateValidation(t *testing.T) {
	h := &SessionHandler{Booking: &mockBooking{}}

	cases := []struct {
		name string
		body string
	}{
		{"missing movie", `{"starts_at":"2026-09-01T20:00:00Z","rows":5,"columns":8}`},
		{"zero rows", `{"movie_id":1,"starts_at":"2026-09-01T20:00:00Z","rows":0,"columns":8}`},
		{"zero columns", `{"movie_id":1,"starts_at":"2026-09-01T20:00:00Z","rows":5,"columns":0}`},
		{"too many rows", `{"movie_id":1,"starts_at":"2026-09-01T20:00:00Z","rows":27,"columns":8}`},
		{"missing start", `{"movie_id":1,"rows":5,"columns":8}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPost, "/v1/sessions", tc.body)
			assert.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSessionUpdateDropsCachedSeatMap(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"max_row", "max_seat"}).AddRow(2, 2))
	mock.ExpectExec("UPDATE sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	detail := sqlmock.NewRows([]string{
		"id", "movie_id", "starts_at", "room", "seat_rows", "seat_cols",
		"created_at", "updated_at", "reserved", "paid",
	}).AddRow(5, 1, now, "Sala 1", 4, 6, now, now, 1, 1)
	mock.ExpectQuery("SELECT s.id").WillReturnRows(detail)

	mb := &mockBooking{}
	h := &SessionHandler{Sessions: repository.NewSessionRepo(db), Booking: mb}

	c, rec := newJSONContext(http.MethodPut, "/v1/sessions/5",
		`{"movie_id":1,"starts_at":"2026-09-01T20:00:00Z","room":"Sala 1","rows":4,"columns":6}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	assert.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A grown grid must not be served from the old cached seat map.
	assert.Equal(t, []uint64{5}, mb.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionUpdateShrinkConflictKeepsCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Occupied bounding box is (C, 5); shrinking to 2 rows must fail and
	// leave the cached map alone since nothing changed.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"max_row", "max_seat"}).AddRow(3, 5))
	mock.ExpectRollback()

	mb := &mockBooking{}
	h := &SessionHandler{Sessions: repository.NewSessionRepo(db), Booking: mb}

	c, rec := newJSONContext(http.MethodPut, "/v1/sessions/5",
		`{"movie_id":1,"starts_at":"2026-09-01T20:00:00Z","room":"Sala 1","rows":2,"columns":6}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	assert.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, mb.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionDeleteDropsCachedSeatMap(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mb := &mockBooking{}
	h := &SessionHandler{Sessions: repository.NewSessionRepo(db), Booking: mb}

	c, rec := newJSONContext(http.MethodDelete, "/v1/sessions/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint64{5}, mb.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionSeatMap(t *testing.T) {
	var gotDetailed bool
	mock := &mockBooking{
		getSeatMap: func(ctx context.Context, sessionID uint64, detailed bool) (*booking.SeatMap, error) {
			gotDetailed = detailed
			assert.Equal(t, uint64(5), sessionID)
			return &booking.SeatMap{
				SessionID: sessionID,
				Rows:      2,
				Columns:   2,
				Layout:    seatmap.Build(2, 2, nil, detailed),
				Counts:    map[model.TicketStatus]uint32{},
			}, nil
		},
	}
	h := &SessionHandler{Booking: mock}

	c, rec := newJSONContext(http.MethodGet, "/v1/sessions/5/seats", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	assert.NoError(t, h.SeatMap(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotDetailed)

	var out struct {
		Layout [][]struct {
			Label    string `json:"label"`
			Occupied *bool  `json:"occupied"`
		} `json:"layout"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Layout, 2)
	assert.Equal(t, "A1", out.Layout[0][0].Label)
	assert.NotNil(t, out.Layout[0][0].Occupied)
}

func TestSessionSeatMapDetailed(t *testing.T) {
	var gotDetailed bool
	mock := &mockBooking{
		getSeatMap: func(ctx context.Context, sessionID uint64, detailed bool) (*booking.SeatMap, error) {
			gotDetailed = detailed
			return &booking.SeatMap{Layout: seatmap.Build(1, 1, nil, detailed)}, nil
		},
	}
	h := &SessionHandler{Booking: mock}

	c, rec := newJSONContext(http.MethodGet, "/v1/sessions/5/seats?include=status", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	assert.NoError(t, h.SeatMap(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotDetailed)
	assert.Contains(t, rec.Body.String(), `"free"`)
}

func TestSessionSeatMapUnknownSession(t *testing.T) {
	mock := &mockBooking{
		getSeatMap: func(ctx context.Context, sessionID uint64, detailed bool) (*booking.SeatMap, error) {
			return nil, repository.ErrSessionNotFound
		},
	}
	h := &SessionHandler{Booking: mock}

	c, rec := newJSONContext(http.MethodGet, "/v1/sessions/99/seats", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	assert.NoError(t, h.SeatMap(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionAvailability(t *testing.T) {
	mock := &mockBooking{
		availability: func(ctx context.Context, sessionID uint64) (*model.SessionCounts, error) {
			return &model.SessionCounts{Reserved: 2, Paid: 3, Total: 40, Available: 35}, nil
		},
	}
	h := &SessionHandler{Booking: mock}

	c, rec := newJSONContext(http.MethodGet, "/v1/sessions/5/availability", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	assert.NoError(t, h.Availability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out model.SessionCounts
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, uint32(35), out.Available)
}

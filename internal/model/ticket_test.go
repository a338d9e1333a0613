package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, StatusReserved.Valid())
	assert.True(t, StatusPaid.Valid())
	assert.False(t, TicketStatus("").Valid())
	assert.False(t, TicketStatus("CANCELLED").Valid())
	assert.False(t, TicketStatus("paid").Valid())
}

func TestTicketStatusTransitions(t *testing.T) {
	// Paying a reservation is the only real transition; re-applying the
	// current state is allowed, going back from PAID is not.
	assert.True(t, StatusReserved.CanTransition(StatusPaid))
	assert.True(t, StatusReserved.CanTransition(StatusReserved))
	assert.True(t, StatusPaid.CanTransition(StatusPaid))
	assert.False(t, StatusPaid.CanTransition(StatusReserved))
}

func TestSessionGeometry(t *testing.T) {
	s := Session{Rows: 5, Columns: 8}
	assert.True(t, s.ValidGeometry())
	assert.Equal(t, uint32(40), s.TotalSeats())

	for _, bad := range []Session{
		{Rows: 0, Columns: 8},
		{Rows: 5, Columns: 0},
		{Rows: 27, Columns: 1},
	} {
		assert.False(t, bad.ValidGeometry(), "rows=%d columns=%d", bad.Rows, bad.Columns)
	}
	max := Session{Rows: 26, Columns: 1}
	assert.True(t, max.ValidGeometry())
}

func TestAgeRating(t *testing.T) {
	for _, r := range []AgeRating{"", RatingAll, RatingOver7, RatingOver12, RatingOver16, RatingOver18} {
		assert.True(t, r.Valid(), "rating %q", r)
	}
	assert.False(t, AgeRating("PG-13").Valid())

	assert.Equal(t, "Todos los públicos", RatingAll.Display())
	assert.Equal(t, "Mayores de 18", RatingOver18.Display())
	assert.Empty(t, AgeRating("").Display())
}

package model

import "time"

// MaxRows is the largest seat grid height a session may declare. Rows are
// addressed by a single letter A..Z, so a hall can never have more than 26
// rows.
const MaxRows = 26

// Session is a scheduled screening of a movie in a room. The seat grid is
// defined by Rows (number of lettered rows, A first) and Columns (seats per
// row). Geometry may only grow once tickets exist against the session; the
// repository rejects shrinking below any issued ticket.
type Session struct {
	ID       uint64    `json:"id"`
	MovieID  uint64    `json:"movie_id"`
	StartsAt time.Time `json:"starts_at"`
	Room     string    `json:"room"`
	Rows     uint32    `json:"rows"`
	Columns  uint32    `json:"columns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalSeats is the capacity of the session's grid.
func (s *Session) TotalSeats() uint32 { return s.Rows * s.Columns }

// ValidGeometry reports whether the declared grid is usable: at least one
// row and one column, and never more rows than can be addressed by a
// single letter.
func (s *Session) ValidGeometry() bool {
	return s.Rows >= 1 && s.Rows <= MaxRows && s.Columns >= 1
}

// SessionCounts carries the per-status ticket counts for one session along
// with the derived totals the listings display.
type SessionCounts struct {
	Reserved  uint32 `json:"reserved"`
	Paid      uint32 `json:"paid"`
	Total     uint32 `json:"total_seats"`
	Available uint32 `json:"available_seats"`
}

// SessionDetail is a session enriched with its counts, returned by list
// and detail endpoints in a single query.
type SessionDetail struct {
	Session
	Counts SessionCounts `json:"counts"`
}

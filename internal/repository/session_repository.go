package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/cinebook/booking-api/internal/model"
)

// ErrSessionNotFound is returned when a session lookup yields no rows.
var ErrSessionNotFound = errors.New("session not found")

// roomTimeUniqueKey is the unique index on sessions(starts_at, room): a
// room can host only one session at a given start time.
const roomTimeUniqueKey = "uniq_session_room"

// SessionRepo provides CRUD for scheduled screenings. Geometry updates
// are guarded against orphaning tickets: a grid may never shrink below
// the coordinates of an issued ticket.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *SessionRepo) DB() *sql.DB { return r.db }

func isRoomTimeConflict(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062 && strings.Contains(me.Message, roomTimeUniqueKey)
}

// Create inserts a session. A duplicate (starts_at, room) pair returns
// ErrConflict.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (movie_id, starts_at, room, seat_rows, seat_cols)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.StartsAt.UTC(), s.Room, s.Rows, s.Columns)
	if err != nil {
		if isRoomTimeConflict(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM sessions WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a session without counts.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT id, movie_id, starts_at, room, seat_rows, seat_cols, created_at, updated_at
	           FROM sessions WHERE id = ?`
	var s model.Session
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.MovieID, &s.StartsAt, &s.Room, &s.Rows, &s.Columns, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// detailColumns selects a session together with its per-status ticket
// counts in one statement, avoiding a query per session in listings.
const detailColumns = `SELECT s.id, s.movie_id, s.starts_at, s.room, s.seat_rows, s.seat_cols,
       s.created_at, s.updated_at,
       COALESCE(SUM(t.status = 'RESERVED'), 0),
       COALESCE(SUM(t.status = 'PAID'), 0)
FROM sessions s
LEFT JOIN tickets t ON t.session_id = s.id`

func scanDetail(scan func(dest ...any) error) (*model.SessionDetail, error) {
	var d model.SessionDetail
	if err := scan(
		&d.ID, &d.MovieID, &d.StartsAt, &d.Room, &d.Rows, &d.Columns,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Counts.Reserved, &d.Counts.Paid,
	); err != nil {
		return nil, err
	}
	d.Counts.Total = d.TotalSeats()
	d.Counts.Available = d.Counts.Total - d.Counts.Reserved - d.Counts.Paid
	return &d, nil
}

// GetDetail retrieves a session with its ticket counts.
func (r *SessionRepo) GetDetail(ctx context.Context, id uint64) (*model.SessionDetail, error) {
	q := detailColumns + ` WHERE s.id = ? GROUP BY s.id`
	row := r.db.QueryRowContext(ctx, q, id)
	d, err := scanDetail(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return d, nil
}

// SessionFilter narrows List results. Zero values disable a criterion.
type SessionFilter struct {
	MovieID      uint64
	Room         string
	StartsAfter  time.Time
	StartsBefore time.Time
}

// List returns sessions with counts matching the filter, newest first.
func (r *SessionRepo) List(ctx context.Context, f SessionFilter) ([]model.SessionDetail, error) {
	query := detailColumns + ` WHERE 1=1`
	args := make([]any, 0, 4)
	if f.MovieID != 0 {
		query += ` AND s.movie_id = ?`
		args = append(args, f.MovieID)
	}
	if f.Room != "" {
		query += ` AND s.room = ?`
		args = append(args, f.Room)
	}
	if !f.StartsAfter.IsZero() {
		query += ` AND s.starts_at >= ?`
		args = append(args, f.StartsAfter.UTC())
	}
	if !f.StartsBefore.IsZero() {
		query += ` AND s.starts_at <= ?`
		args = append(args, f.StartsBefore.UTC())
	}
	query += ` GROUP BY s.id ORDER BY s.starts_at DESC, s.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SessionDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update rewrites a session's mutable fields. Geometry may only change if
// every issued ticket still fits: inside one transaction the occupied
// bounding box (highest row index, highest seat number) is read with a
// lock, and shrinking below it returns ErrConflict. Growing a grid is
// always allowed.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// ASCII(row_letter)-64 maps 'A'..'Z' onto 1..26; letters are stored
	// uppercase so the expression matches seatmap.RowIndex.
	const boundsQ = `SELECT COALESCE(MAX(ASCII(row_letter) - 64), 0), COALESCE(MAX(seat_number), 0)
	                 FROM tickets WHERE session_id = ? FOR UPDATE`
	var maxRow, maxSeat uint32
	if err := tx.QueryRowContext(ctx, boundsQ, s.ID).Scan(&maxRow, &maxSeat); err != nil {
		return err
	}
	if s.Rows < maxRow || s.Columns < maxSeat {
		return ErrConflict
	}

	const upd = `UPDATE sessions
	             SET movie_id = ?, starts_at = ?, room = ?, seat_rows = ?, seat_cols = ?, updated_at = CURRENT_TIMESTAMP
	             WHERE id = ?`
	res, err := tx.ExecContext(ctx, upd, s.MovieID, s.StartsAt.UTC(), s.Room, s.Rows, s.Columns, s.ID)
	if err != nil {
		if isRoomTimeConflict(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Could be a no-op update of an existing row; confirm existence.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a session; its tickets go with it via the foreign key
// cascade.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM sessions WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

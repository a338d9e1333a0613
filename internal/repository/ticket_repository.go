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

// seatUniqueKey is the name of the unique index on
// tickets(session_id, row_letter, seat_number). The database is the final
// arbiter of seat claims: two concurrent inserts for the same seat can
// both pass any application-level check, but only one survives this
// constraint.
const seatUniqueKey = "uniq_session_seat"

// ErrTicketNotFound is returned when a ticket lookup yields no rows.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo provides access to tickets. It is the only writer of ticket
// rows; seat-map rendering and reporting consume its read snapshots.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// isSeatConflict reports whether err is a duplicate-key violation of the
// seat uniqueness index specifically. Other 1062 errors (e.g. the session
// room/time constraint) must not be mistaken for a lost seat race.
func isSeatConflict(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062 && strings.Contains(me.Message, seatUniqueKey)
}

// Claim atomically inserts a ticket for the given seat. The existence
// check and the insert are not separable: the insert either wins the
// unique index or fails, so a lost race leaves no partial write. On a
// lost race it returns ErrSeatConflict. The insert and the read-back of
// the server-assigned creation timestamp run in one transaction, so a
// cancellation between the two rolls the claim back instead of leaving a
// seat taken behind an error.
func (r *TicketRepo) Claim(ctx context.Context, t *model.Ticket) error {
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

	const q = `INSERT INTO tickets (session_id, row_letter, seat_number, status, email)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.SessionID, t.RowLetter, t.SeatNumber, t.Status, t.Email)
	if err != nil {
		if isSeatConflict(err) {
			return ErrSeatConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT created_at FROM tickets WHERE id = ?`
	var created time.Time
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&created); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	t.ID = uint64(id)
	t.CreatedAt = created
	return nil
}

// GetByID retrieves a single ticket.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT id, session_id, row_letter, seat_number, status, email, created_at
	           FROM tickets WHERE id = ?`
	var t model.Ticket
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.SessionID, &t.RowLetter, &t.SeatNumber, &t.Status, &t.Email, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// SetStatus updates only the lifecycle status of a ticket and returns the
// resulting row. Status-only transitions never touch seat identity, so
// the paid-seat immutability rule does not apply here. Writing the status
// a ticket already has is a no-op that still returns the row.
func (r *TicketRepo) SetStatus(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error) {
	const q = `UPDATE tickets SET status = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, status, id); err != nil {
		return nil, err
	}
	// MySQL reports zero affected rows both for a missing ticket and for
	// an update that changes nothing, so the read-back distinguishes them.
	return r.GetByID(ctx, id)
}

// MoveSeat changes the seat identity of a ticket. It runs in a
// transaction: the current status is locked and checked first, so a paid
// ticket fails with ErrImmutableSeat before any write, and a destination
// seat held by another ticket fails with ErrSeatConflict via the unique
// index. No partial state survives either failure.
func (r *TicketRepo) MoveSeat(ctx context.Context, id uint64, letter string, number uint32) (*model.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT status FROM tickets WHERE id = ? FOR UPDATE`
	var status model.TicketStatus
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if status == model.StatusPaid {
		return nil, ErrImmutableSeat
	}

	const upd = `UPDATE tickets SET row_letter = ?, seat_number = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, letter, number, id); err != nil {
		if isSeatConflict(err) {
			return nil, ErrSeatConflict
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// Occupancy returns every occupied seat of a session ordered by row then
// seat number for deterministic output.
func (r *TicketRepo) Occupancy(ctx context.Context, sessionID uint64) ([]model.SeatOccupancy, error) {
	return scanOccupancy(ctx, r.db, sessionID)
}

// CountsByStatus returns the number of tickets per status for a session.
// Statuses with no tickets are present with a zero count.
func (r *TicketRepo) CountsByStatus(ctx context.Context, sessionID uint64) (map[model.TicketStatus]uint32, error) {
	return scanCounts(ctx, r.db, sessionID)
}

// Snapshot returns occupancy and per-status counts from a single
// read-only transaction so the seat map and the reported counts always
// agree, even while claims are committing concurrently.
func (r *TicketRepo) Snapshot(ctx context.Context, sessionID uint64) ([]model.SeatOccupancy, map[model.TicketStatus]uint32, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	occ, err := scanOccupancy(ctx, tx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	counts, err := scanCounts(ctx, tx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return occ, counts, nil
}

// querier abstracts *sql.DB and *sql.Tx for the shared snapshot readers.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanOccupancy(ctx context.Context, q querier, sessionID uint64) ([]model.SeatOccupancy, error) {
	const query = `SELECT row_letter, seat_number, status
	               FROM tickets
	               WHERE session_id = ?
	               ORDER BY row_letter, seat_number`
	rows, err := q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occ := make([]model.SeatOccupancy, 0)
	for rows.Next() {
		var o model.SeatOccupancy
		if err := rows.Scan(&o.RowLetter, &o.SeatNumber, &o.Status); err != nil {
			return nil, err
		}
		occ = append(occ, o)
	}
	return occ, rows.Err()
}

func scanCounts(ctx context.Context, q querier, sessionID uint64) (map[model.TicketStatus]uint32, error) {
	const query = `SELECT status, COUNT(*) FROM tickets WHERE session_id = ? GROUP BY status`
	rows, err := q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.TicketStatus]uint32{
		model.StatusReserved: 0,
		model.StatusPaid:     0,
	}
	for rows.Next() {
		var st model.TicketStatus
		var n uint32
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// TicketFilter narrows List results. Zero values disable a criterion.
// Email matches as a case-insensitive substring.
type TicketFilter struct {
	SessionID     uint64
	Status        model.TicketStatus
	Email         string
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// List returns tickets matching the filter, newest first.
func (r *TicketRepo) List(ctx context.Context, f TicketFilter) ([]model.Ticket, error) {
	query := `SELECT id, session_id, row_letter, seat_number, status, email, created_at
	          FROM tickets WHERE 1=1`
	args := make([]any, 0, 5)
	if f.SessionID != 0 {
		query += ` AND session_id = ?`
		args = append(args, f.SessionID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Email != "" {
		query += ` AND email LIKE ?`
		args = append(args, "%"+f.Email+"%")
	}
	if !f.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, f.CreatedAfter.UTC())
	}
	if !f.CreatedBefore.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, f.CreatedBefore.UTC())
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.SessionID, &t.RowLetter, &t.SeatNumber, &t.Status, &t.Email, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Delete removes a ticket. Deletion is an administrative operation, not a
// lifecycle transition; the freed seat becomes claimable again.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM tickets WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// ExportRow is one line of the per-session CSV export, joining ticket,
// session and movie details.
type ExportRow struct {
	TicketID   uint64
	MovieTitle string
	Room       string
	StartsAt   time.Time
	RowLetter  string
	SeatNumber uint32
	Status     model.TicketStatus
	Email      string
	CreatedAt  time.Time
}

// ExportBySession returns all tickets of a session joined with movie and
// session details, ordered by row then seat for a stable export.
func (r *TicketRepo) ExportBySession(ctx context.Context, sessionID uint64) ([]ExportRow, error) {
	const q = `SELECT t.id, m.title, s.room, s.starts_at, t.row_letter, t.seat_number, t.status, t.email, t.created_at
	           FROM tickets t
	           JOIN sessions s ON s.id = t.session_id
	           JOIN movies m ON m.id = s.movie_id
	           WHERE t.session_id = ?
	           ORDER BY t.row_letter, t.seat_number`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExportRow, 0)
	for rows.Next() {
		var e ExportRow
		if err := rows.Scan(&e.TicketID, &e.MovieTitle, &e.Room, &e.StartsAt, &e.RowLetter, &e.SeatNumber, &e.Status, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

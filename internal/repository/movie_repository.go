package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinebook/booking-api/internal/model"
)

// ErrMovieNotFound is returned when a movie lookup yields no rows.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo provides CRUD for the movie catalog.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts a movie and populates its ID and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, duration_min, rating, poster_url)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Rating, m.PosterURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM movies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a single movie.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, description, duration_min, rating, poster_url, created_at, updated_at
	           FROM movies WHERE id = ?`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&m.ID, &m.Title, &m.Description, &m.DurationMin, &m.Rating, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns movies ordered by title. A non-empty search term matches
// titles as a case-insensitive substring. order accepts "title" (default)
// or "duration".
func (r *MovieRepo) List(ctx context.Context, search, order string) ([]model.Movie, error) {
	query := `SELECT id, title, description, duration_min, rating, poster_url, created_at, updated_at
	          FROM movies`
	args := make([]any, 0, 1)
	if search != "" {
		query += ` WHERE title LIKE ?`
		args = append(args, "%"+search+"%")
	}
	switch order {
	case "duration":
		query += ` ORDER BY duration_min, title`
	default:
		query += ` ORDER BY title`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.DurationMin, &m.Rating, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// Update rewrites all mutable fields of a movie.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies
	           SET title = ?, description = ?, duration_min = ?, rating = ?, poster_url = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Rating, m.PosterURL, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, m.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a movie; sessions and their tickets cascade.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM movies WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

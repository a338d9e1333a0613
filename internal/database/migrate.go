package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the idempotent DDL applied at startup. The
// uniq_session_seat key on tickets is load-bearing: it is the storage
// level arbiter that prevents two tickets from ever claiming the same
// seat of the same session, whatever their status.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title        VARCHAR(200)    NOT NULL,
		description  TEXT            NOT NULL,
		duration_min SMALLINT UNSIGNED NOT NULL,
		rating       VARCHAR(4)      NOT NULL DEFAULT '',
		poster_url   VARCHAR(500)    NOT NULL DEFAULT '',
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_movies_title (title)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id   BIGINT UNSIGNED NOT NULL,
		starts_at  DATETIME        NOT NULL,
		room       VARCHAR(20)     NOT NULL DEFAULT 'Sala 1',
		seat_rows  SMALLINT UNSIGNED NOT NULL,
		seat_cols  SMALLINT UNSIGNED NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_session_room (starts_at, room),
		KEY idx_sessions_movie_starts (movie_id, starts_at),
		CONSTRAINT fk_sessions_movie FOREIGN KEY (movie_id)
			REFERENCES movies (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		session_id  BIGINT UNSIGNED NOT NULL,
		row_letter  CHAR(1)         NOT NULL,
		seat_number SMALLINT UNSIGNED NOT NULL,
		status      ENUM('RESERVED','PAID') NOT NULL DEFAULT 'RESERVED',
		email       VARCHAR(254)    NOT NULL DEFAULT '',
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_session_seat (session_id, row_letter, seat_number),
		KEY idx_tickets_session_status (session_id, status),
		KEY idx_tickets_email (email),
		CONSTRAINT fk_tickets_session FOREIGN KEY (session_id)
			REFERENCES sessions (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema. Every statement is idempotent so running it
// on every boot is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Package sqlite implements the store interface on SQLite via database/sql.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/readroomapp/readroom-server/internal/domain"
	"github.com/readroomapp/readroom-server/internal/id"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for the ReadRoom server.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Small pool; SQLite allows one writer.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	// Run schema migration.
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrateLegacyLibrary(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate legacy library: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrateLegacyLibrary converts rows from the pre-shelf user_library table
// into memberships placed on the matching reading-status shelf, then drops
// the table. Runs once; later startups find no table and return early.
func (s *Store) migrateLegacyLibrary() error {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'user_library'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT user_id, book_id, status, added_at FROM user_library`)
	if err != nil {
		return err
	}

	type legacyRow struct {
		userID  string
		bookID  string
		status  string
		addedAt string
	}
	var legacy []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.userID, &r.bookID, &r.status, &r.addedAt); err != nil {
			rows.Close()
			return err
		}
		legacy = append(legacy, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	migrated := 0
	for _, r := range legacy {
		shelfName := legacyStatusShelfName(r.status)

		var shelfID sql.NullString
		err := tx.QueryRow(
			`SELECT id FROM shelves WHERE owner_id = ? AND name = ?`,
			r.userID, shelfName).Scan(&shelfID.String)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		shelfID.Valid = err == nil

		memID, err := id.Generate("mem")
		if err != nil {
			return err
		}

		addedAt := r.addedAt
		if addedAt == "" {
			addedAt = formatTime(time.Now())
		}

		result, err := tx.Exec(`
			INSERT OR IGNORE INTO memberships (id, created_at, updated_at, user_id, book_id, shelf_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			memID, addedAt, addedAt, r.userID, r.bookID, shelfID,
		)
		if err != nil {
			return err
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			migrated++
		}
	}

	if _, err := tx.Exec(`DROP TABLE user_library`); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("migrated legacy library entries", "count", migrated)
	return nil
}

// legacyStatusShelfName maps a legacy reading status to a seeded shelf name.
func legacyStatusShelfName(status string) string {
	switch status {
	case "reading":
		return domain.ShelfNameReading
	case "finished":
		return domain.ShelfNameRead
	default:
		return domain.ShelfNameToRead
	}
}

// nowUTC returns the current time in UTC.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// parseNullableTime parses an optional time string.
func parseNullableTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return parseTime(s.String)
}

// nullString returns a sql.NullString from a string, treating empty as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt returns a sql.NullInt64 from an int, treating zero as NULL.
func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

// nullTimeString returns a sql.NullString from a time.Time, treating the zero
// value as NULL.
func nullTimeString(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

// boolToInt converts a bool for storage in an INTEGER column.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

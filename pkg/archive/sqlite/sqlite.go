// Package sqlite provides a SQLite-backed archive driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mindneox/recall/pkg/archive"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id                 TEXT PRIMARY KEY,
	user_id            TEXT NOT NULL,
	session_id         TEXT NOT NULL,
	user_message       TEXT NOT NULL,
	assistant_response TEXT NOT NULL,
	model              TEXT NOT NULL DEFAULT '',
	has_context        INTEGER NOT NULL DEFAULT 0,
	user_email         TEXT NOT NULL DEFAULT '',
	user_name          TEXT NOT NULL DEFAULT '',
	created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS conversations_created_at ON conversations (created_at);
CREATE INDEX IF NOT EXISTS conversations_user_id ON conversations (user_id);
`

// addedColumns were introduced after the first schema; databases created
// before then get them through ALTER TABLE.
var addedColumns = []string{"user_email", "user_name"}

const columns = `id, user_id, session_id, user_message, assistant_response, model, has_context, user_email, user_name, created_at`

// Driver implements archive.Driver on SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (and migrates) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	// registered as "sqlite3" by github.com/mattn/go-sqlite3
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Driver{db: db}, nil
}

func migrate(db *sql.DB) error {
	for _, col := range addedColumns {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('conversations') WHERE name = ?`, col).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := db.Exec(`ALTER TABLE conversations ADD COLUMN ` + col + ` TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) Save(ctx context.Context, rec archive.Record) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversations (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.SessionID, rec.UserMessage, rec.AssistantResponse,
		rec.Model, rec.HasContext, rec.UserEmail, rec.UserName, rec.Timestamp.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving conversation %s: %w", rec.ID, err)
	}
	return nil
}

func (d *Driver) List(ctx context.Context, limit int) ([]archive.Record, error) {
	if limit <= 0 {
		return []archive.Record{}, nil
	}
	return d.query(ctx,
		`SELECT `+columns+` FROM conversations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (d *Driver) ListByUser(ctx context.Context, userID string, limit int) ([]archive.Record, error) {
	if limit <= 0 {
		return []archive.Record{}, nil
	}
	return d.query(ctx,
		`SELECT `+columns+` FROM conversations WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
}

func (d *Driver) Get(ctx context.Context, id string) (*archive.Record, error) {
	rec, err := scanRecord(d.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM conversations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, archive.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation %s: %w", id, err)
	}
	return &rec, nil
}

func (d *Driver) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	if n == 0 {
		return archive.ErrNotFound
	}
	return nil
}

func (d *Driver) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting conversations: %w", err)
	}
	return n, nil
}

func (d *Driver) Stats(ctx context.Context) (archive.Stats, error) {
	var total, users, withContext int64
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id), COALESCE(SUM(has_context), 0) FROM conversations`,
	).Scan(&total, &users, &withContext)
	if err != nil {
		return archive.Stats{}, fmt.Errorf("aggregating conversations: %w", err)
	}
	return archive.NewStats(total, users, withContext), nil
}

func (d *Driver) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) query(ctx context.Context, query string, args ...any) ([]archive.Record, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	records := []archive.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (archive.Record, error) {
	var (
		rec     archive.Record
		created int64
	)
	err := s.Scan(&rec.ID, &rec.UserID, &rec.SessionID, &rec.UserMessage,
		&rec.AssistantResponse, &rec.Model, &rec.HasContext,
		&rec.UserEmail, &rec.UserName, &created)
	rec.Timestamp = time.Unix(0, created).UTC()
	return rec, err
}

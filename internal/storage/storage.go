// Package storage provides SQLite-backed persistence for cached draws and saved tickets.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rewired-gh/luckylogic/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db         *sql.DB
	maxTickets int
}

// New opens or creates the SQLite database at dbPath and applies migrations.
// An empty dbPath defaults to $TMPDIR/luckylogic/data.db.
func New(maxTickets int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "luckylogic", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; also keeps :memory: on one connection
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{db: db, maxTickets: maxTickets}, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveDraws replaces the cached draw history with ds (kept in the given order)
// and records the fetch.
func (s *Storage) SaveDraws(ctx context.Context, ds []models.Draw, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM draws`); err != nil {
		return fmt.Errorf("failed to clear draws: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO draws (position, draw_date, numbers, stars, jackpot, source, draw_id)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare draw insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range ds {
		numbers, err := json.Marshal(nonNil(d.Numbers))
		if err != nil {
			return fmt.Errorf("failed to marshal numbers: %w", err)
		}
		stars, err := json.Marshal(nonNil(d.Stars))
		if err != nil {
			return fmt.Errorf("failed to marshal stars: %w", err)
		}
		var drawDate int64
		if d.HasDate() {
			drawDate = d.Date.Unix()
		}
		var jackpot sql.NullInt64
		if d.Jackpot != nil {
			jackpot = sql.NullInt64{Int64: *d.Jackpot, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, drawDate, string(numbers), string(stars), jackpot, d.Source, d.DrawID); err != nil {
			return fmt.Errorf("failed to insert draw: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO draw_fetches (fetched_at, draw_count, source) VALUES (?,?,?)`,
		time.Now().UnixNano(), len(ds), source,
	); err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return tx.Commit()
}

// LoadDraws returns cached draws in stored order. limit <= 0 returns all.
func (s *Storage) LoadDraws(ctx context.Context, limit int) ([]models.Draw, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT draw_date, numbers, stars, jackpot, source, draw_id
		FROM draws ORDER BY position ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	out := []models.Draw{}
	for rows.Next() {
		var (
			d              models.Draw
			drawDate       int64
			numbers, stars string
			jackpot        sql.NullInt64
		)
		if err := rows.Scan(&drawDate, &numbers, &stars, &jackpot, &d.Source, &d.DrawID); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		if err := json.Unmarshal([]byte(numbers), &d.Numbers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal numbers: %w", err)
		}
		if err := json.Unmarshal([]byte(stars), &d.Stars); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stars: %w", err)
		}
		if drawDate != 0 {
			d.Date = time.Unix(drawDate, 0).UTC()
		}
		if jackpot.Valid {
			v := jackpot.Int64
			d.Jackpot = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LastFetch returns when draws were last saved. ok is false if never.
func (s *Storage) LastFetch(ctx context.Context) (at time.Time, ok bool, err error) {
	var nanos int64
	err = s.db.QueryRowContext(ctx, `SELECT fetched_at FROM draw_fetches ORDER BY fetched_at DESC LIMIT 1`).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query last fetch: %w", err)
	}
	return time.Unix(0, nanos), true, nil
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

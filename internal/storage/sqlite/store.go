// Package sqlite provides a SQLite-backed engine storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/emberfall/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/emberfall/internal/storage"
	"github.com/louisbranch/emberfall/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the request journal and counters in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite engine store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetResponse returns the recorded response for a request id.
func (s *Store) GetResponse(ctx context.Context, roomID, requestID string) (storage.RecordedResponse, error) {
	if err := ctx.Err(); err != nil {
		return storage.RecordedResponse{}, err
	}

	var payload []byte
	var recordedAt int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT payload, recorded_at FROM request_journal WHERE room_id = ? AND request_id = ?`,
		roomID,
		requestID,
	)
	if err := row.Scan(&payload, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RecordedResponse{}, storage.ErrNotFound
		}
		return storage.RecordedResponse{}, fmt.Errorf("query journal: %w", err)
	}

	return storage.RecordedResponse{
		RoomID:     roomID,
		RequestID:  requestID,
		Payload:    payload,
		RecordedAt: time.UnixMilli(recordedAt).UTC(),
	}, nil
}

// PutResponse records a response exactly once per (room, request).
// The conditional insert keeps duplicate retransmissions from
// overwriting the original record.
func (s *Store) PutResponse(ctx context.Context, record storage.RecordedResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.RoomID == "" || record.RequestID == "" {
		return fmt.Errorf("room id and request id are required")
	}

	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO request_journal (room_id, request_id, payload, recorded_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (room_id, request_id) DO NOTHING`,
		record.RoomID,
		record.RequestID,
		record.Payload,
		recordedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert journal record: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("journal rows affected: %w", err)
	}
	if inserted == 0 {
		return storage.ErrAlreadyRecorded
	}
	return nil
}

// PurgeBefore drops journal entries recorded before the cutoff.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM request_journal WHERE recorded_at < ?`,
		cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge journal: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return int(removed), nil
}

// SetCounter creates or resets a counter's available uses.
func (s *Store) SetCounter(ctx context.Context, key string, available int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("counter key is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO counters (key, available) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET available = excluded.available`,
		key,
		available,
	)
	if err != nil {
		return fmt.Errorf("set counter: %w", err)
	}
	return nil
}

// DecrementIfAvailable consumes one use through a single conditional
// update, so concurrent callers cannot both spend the last use.
func (s *Store) DecrementIfAvailable(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE counters SET available = available - 1 WHERE key = ? AND available > 0`,
		key,
	)
	if err != nil {
		return 0, fmt.Errorf("decrement counter: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counter rows affected: %w", err)
	}

	if updated == 0 {
		// Distinguish a missing counter from an exhausted one.
		var available int
		row := s.sqlDB.QueryRowContext(ctx, `SELECT available FROM counters WHERE key = ?`, key)
		if err := row.Scan(&available); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, storage.ErrCounterNotFound
			}
			return 0, fmt.Errorf("query counter: %w", err)
		}
		return 0, storage.ErrCounterExhausted
	}

	var remaining int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT available FROM counters WHERE key = ?`, key)
	if err := row.Scan(&remaining); err != nil {
		return 0, fmt.Errorf("query counter: %w", err)
	}
	return remaining, nil
}

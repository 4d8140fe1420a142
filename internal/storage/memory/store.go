// Package memory provides in-process storage implementations for
// tests and single-process rooms.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/emberfall/internal/storage"
)

// Store is an in-memory request journal and counter store.
type Store struct {
	mu       sync.Mutex
	journal  map[string]storage.RecordedResponse
	counters map[string]int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		journal:  make(map[string]storage.RecordedResponse),
		counters: make(map[string]int),
	}
}

func journalKey(roomID, requestID string) string {
	return roomID + "/" + requestID
}

// GetResponse returns the recorded response for a request id.
func (s *Store) GetResponse(ctx context.Context, roomID, requestID string) (storage.RecordedResponse, error) {
	if err := ctx.Err(); err != nil {
		return storage.RecordedResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.journal[journalKey(roomID, requestID)]
	if !ok {
		return storage.RecordedResponse{}, storage.ErrNotFound
	}
	return record, nil
}

// PutResponse records a response exactly once per (room, request).
func (s *Store) PutResponse(ctx context.Context, record storage.RecordedResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := journalKey(record.RoomID, record.RequestID)
	if _, ok := s.journal[key]; ok {
		return storage.ErrAlreadyRecorded
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	s.journal[key] = record
	return nil
}

// PurgeBefore drops journal entries recorded before the cutoff.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.journal {
		if record.RecordedAt.Before(cutoff) {
			delete(s.journal, key)
			removed++
		}
	}
	return removed, nil
}

// SetCounter creates or resets a counter's available uses.
func (s *Store) SetCounter(ctx context.Context, key string, available int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key] = available
	return nil
}

// DecrementIfAvailable atomically consumes one use of a counter.
func (s *Store) DecrementIfAvailable(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	available, ok := s.counters[key]
	if !ok {
		return 0, storage.ErrCounterNotFound
	}
	if available <= 0 {
		return 0, storage.ErrCounterExhausted
	}
	s.counters[key] = available - 1
	return available - 1, nil
}

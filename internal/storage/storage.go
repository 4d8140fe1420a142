// Package storage defines the persistence contracts the engine's
// reliability layer depends on: a request journal backing the
// at-most-once command guarantee, and conditional counters for shared
// countable resources.
//
// The journal is a session-scoped dedup window, not game-state
// persistence; entries are purged once the retention window passes.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/emberfall/internal/errors"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrAlreadyRecorded indicates a response was already recorded for
	// the request id; callers must replay the stored response.
	ErrAlreadyRecorded = apperrors.New(apperrors.CodeAlreadyRecorded, "request already recorded")
	// ErrCounterExhausted indicates a conditional decrement found no
	// remaining capacity. Only the losing caller's command fails.
	ErrCounterExhausted = apperrors.New(apperrors.CodeCounterExhausted, "counter has no remaining uses")
	// ErrCounterNotFound indicates an unknown counter key.
	ErrCounterNotFound = apperrors.New(apperrors.CodeCounterNotFound, "counter not found")
)

// RecordedResponse is one journal entry: the serialized response sent
// for a fully processed request.
type RecordedResponse struct {
	RoomID     string
	RequestID  string
	Payload    []byte
	RecordedAt time.Time
}

// RequestJournal retains requestId -> response mappings long enough to
// answer retransmissions.
type RequestJournal interface {
	// GetResponse returns the recorded response for a request id, or
	// ErrNotFound when the request has not been processed.
	GetResponse(ctx context.Context, roomID, requestID string) (RecordedResponse, error)
	// PutResponse records a response exactly once. A duplicate write
	// for the same (room, request) returns ErrAlreadyRecorded and
	// leaves the original record untouched.
	PutResponse(ctx context.Context, record RecordedResponse) error
	// PurgeBefore drops entries recorded before the cutoff and
	// reports how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// CounterStore provides the single conditional decrement-if-available
// operation shared countable resources must be mutated through.
// Read-then-write sequences race under concurrent callers; this
// contract does not.
type CounterStore interface {
	// SetCounter creates or resets a counter's available uses.
	SetCounter(ctx context.Context, key string, available int) error
	// DecrementIfAvailable atomically consumes one use and returns the
	// remainder. It returns ErrCounterExhausted when no uses remain
	// and ErrCounterNotFound for unknown keys.
	DecrementIfAvailable(ctx context.Context, key string) (remaining int, err error)
}

package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/louisbranch/emberfall/internal/errors"
	"github.com/louisbranch/emberfall/internal/storage"
)

// Handler applies a validated command to its room and returns the
// caller-visible outcome. Returned errors should carry a taxonomy code;
// anything else surfaces as UNKNOWN_ERROR.
type Handler interface {
	Handle(ctx context.Context, roomID string, req Request) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, roomID string, req Request) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, roomID string, req Request) error {
	return f(ctx, roomID, req)
}

// Dispatcher applies each request at most once per room. A request id
// already present in the journal replays the recorded response without
// touching game state, which makes blind client retries safe.
type Dispatcher struct {
	journal storage.RequestJournal
	handler Handler
	logger  *slog.Logger
	clock   func() time.Time

	// DedupWindow bounds how long answered request ids are retained.
	DedupWindow time.Duration
}

// DefaultDedupWindow retains answered requests long enough to cover a
// reconnection grace period plus client retry backoff.
const DefaultDedupWindow = 10 * time.Minute

// NewDispatcher creates a dispatcher over a journal and a command handler.
func NewDispatcher(journal storage.RequestJournal, handler Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		journal:     journal,
		handler:     handler,
		logger:      logger,
		clock:       func() time.Time { return time.Now().UTC() },
		DedupWindow: DefaultDedupWindow,
	}
}

// WithClock overrides the dispatcher's time source.
func (d *Dispatcher) WithClock(clock func() time.Time) *Dispatcher {
	if clock != nil {
		d.clock = clock
	}
	return d
}

// Dispatch applies a request and always returns a response. Replayed
// request ids return the original response verbatim.
func (d *Dispatcher) Dispatch(ctx context.Context, roomID string, req Request) Response {
	now := d.clock()

	if err := req.Validate(); err != nil {
		return failure(req.RequestID, now, err)
	}

	record, err := d.journal.GetResponse(ctx, roomID, req.RequestID)
	switch {
	case err == nil:
		replay, decodeErr := DecodeResponse(record.Payload)
		if decodeErr != nil {
			d.logger.Error("journaled response is corrupt",
				"room_id", roomID,
				"request_id", req.RequestID,
				"error", decodeErr,
			)
			return failure(req.RequestID, now, apperrors.Wrap(apperrors.CodeUnknown, "stored response could not be replayed", decodeErr))
		}
		d.logger.Info("replayed recorded response",
			"room_id", roomID,
			"request_id", req.RequestID,
		)
		return replay
	case errors.Is(err, storage.ErrNotFound):
		// First sighting of this request id.
	default:
		return failure(req.RequestID, now, apperrors.Wrap(apperrors.CodeUnknown, "request journal unavailable", err))
	}

	resp := d.apply(ctx, roomID, req, now)

	payload, err := EncodeResponse(resp)
	if err != nil {
		d.logger.Error("response could not be journaled",
			"room_id", roomID,
			"request_id", req.RequestID,
			"error", err,
		)
		return resp
	}
	putErr := d.journal.PutResponse(ctx, storage.RecordedResponse{
		RoomID:     roomID,
		RequestID:  req.RequestID,
		Payload:    payload,
		RecordedAt: now,
	})
	if putErr != nil && !errors.Is(putErr, storage.ErrAlreadyRecorded) {
		d.logger.Error("response could not be journaled",
			"room_id", roomID,
			"request_id", req.RequestID,
			"error", putErr,
		)
	}
	return resp
}

// apply invokes the handler with panic containment. A handler panic
// becomes an UNKNOWN_ERROR response instead of tearing down the room.
func (d *Dispatcher) apply(ctx context.Context, roomID string, req Request, now time.Time) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked",
				"room_id", roomID,
				"request_id", req.RequestID,
				"command", req.Command.Type,
				"panic", r,
			)
			resp = failure(req.RequestID, now, apperrors.New(apperrors.CodeUnknown, fmt.Sprintf("command failed: %v", r)))
		}
	}()

	if err := d.handler.Handle(ctx, roomID, req); err != nil {
		return failure(req.RequestID, now, err)
	}
	return Response{
		RequestID:       req.RequestID,
		Success:         true,
		ServerTimestamp: now.UnixMilli(),
	}
}

// PurgeExpired removes journal entries older than the dedup window.
// Callers run this periodically from the room scheduler.
func (d *Dispatcher) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := d.clock().Add(-d.DedupWindow)
	removed, err := d.journal.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge dedup window: %w", err)
	}
	if removed > 0 {
		d.logger.Info("purged expired request records", "removed", removed)
	}
	return removed, nil
}

// Package telemetry records domain notifications produced while a
// room applies commands. Sinks deliver them to clients or logs; the
// engine itself never blocks on delivery transport.
package telemetry

import (
	"context"
	"time"
)

// EventType identifies a domain notification.
type EventType string

const (
	EventAttackResolved     EventType = "attack_resolved"
	EventCharacterExhausted EventType = "character_exhausted"
	EventObjectiveProgress  EventType = "objective_progress"
	EventObjectiveMilestone EventType = "objective_milestone"
	EventScenarioComplete   EventType = "scenario_complete"
	EventScenarioFailed     EventType = "scenario_failed"
)

// Event is one domain notification with free-form attributes.
type Event struct {
	Type       EventType
	RoomID     string
	Timestamp  time.Time
	Attributes map[string]any
}

// Sink receives emitted events.
type Sink interface {
	AppendEvent(ctx context.Context, evt Event) error
}

// Emitter stamps and forwards events to a sink.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter creates a new emitter.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now}
}

// WithClock overrides the emitter's time source.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// Emit records an event. It is a no-op when the sink is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.sink == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.sink.AppendEvent(ctx, evt)
}

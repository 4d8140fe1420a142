// Package errors provides structured error handling for the scenario
// engine: machine-readable codes, metadata, and gRPC status mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code. Every caller-visible
// rejection of a player command maps to exactly one code.
type Code string

const (
	// CodeUnknown represents an unanticipated error. A response is
	// still always sent; a hung request is a defect.
	CodeUnknown Code = "UNKNOWN_ERROR"

	// Connection errors
	CodeNotConnected Code = "NOT_CONNECTED"
	CodeTimeout      Code = "TIMEOUT"

	// Turn legality errors
	CodeNotYourTurn       Code = "NOT_YOUR_TURN"
	CodeInvalidAction     Code = "INVALID_ACTION"
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	CodeTargetNotFound    Code = "TARGET_NOT_FOUND"

	// Card state errors
	CodeCardNotInHand        Code = "CARD_NOT_IN_HAND"
	CodeCardsAlreadySelected Code = "CARDS_ALREADY_SELECTED"

	// Movement errors
	CodeInvalidHex           Code = "INVALID_HEX"
	CodeHexBlocked           Code = "HEX_BLOCKED"
	CodeInsufficientMovement Code = "INSUFFICIENT_MOVEMENT"

	// Attack errors
	CodeTargetOutOfRange  Code = "TARGET_OUT_OF_RANGE"
	CodeNoAttackAvailable Code = "NO_ATTACK_AVAILABLE"

	// Rest errors
	CodeInsufficientCardsForRest Code = "INSUFFICIENT_CARDS_FOR_REST"
	CodeRestNotAllowed           Code = "REST_NOT_ALLOWED"

	// Exhaustion errors
	CodeCharacterExhausted Code = "CHARACTER_EXHAUSTED"
	CodeAlreadyExhausted   Code = "ALREADY_EXHAUSTED"

	// Objective errors
	CodeObjectiveUnknownType    Code = "OBJECTIVE_UNKNOWN_TYPE"
	CodeObjectiveScriptRejected Code = "OBJECTIVE_SCRIPT_REJECTED"
	CodeObjectiveScriptTimeout  Code = "OBJECTIVE_SCRIPT_TIMEOUT"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyRecorded  Code = "ALREADY_RECORDED"
	CodeCounterExhausted Code = "COUNTER_EXHAUSTED"
	CodeCounterNotFound  Code = "COUNTER_NOT_FOUND"
	CodeStorageConflict  Code = "STORAGE_CONFLICT"
)

// GRPCCode maps engine codes to gRPC status codes so the session layer
// can surface rejections without re-translating them.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed input
	case CodeInvalidAction,
		CodeInvalidHex,
		CodeObjectiveUnknownType,
		CodeObjectiveScriptRejected:
		return codes.InvalidArgument

	// FailedPrecondition - state does not allow the operation
	case CodeNotYourTurn,
		CodeCardNotInHand,
		CodeCardsAlreadySelected,
		CodeHexBlocked,
		CodeInsufficientMovement,
		CodeTargetOutOfRange,
		CodeNoAttackAvailable,
		CodeInsufficientCardsForRest,
		CodeRestNotAllowed,
		CodeCharacterExhausted,
		CodeAlreadyExhausted,
		CodeCounterExhausted:
		return codes.FailedPrecondition

	// NotFound - referenced entity is missing
	case CodeCharacterNotFound,
		CodeTargetNotFound,
		CodeNotFound,
		CodeCounterNotFound:
		return codes.NotFound

	// AlreadyExists - duplicate conditional writes
	case CodeAlreadyRecorded:
		return codes.AlreadyExists

	// Aborted - lost a conditional-update race
	case CodeStorageConflict:
		return codes.Aborted

	// Unavailable - transport-level rejections
	case CodeNotConnected:
		return codes.Unavailable

	case CodeTimeout, CodeObjectiveScriptTimeout:
		return codes.DeadlineExceeded

	default:
		return codes.Internal
	}
}

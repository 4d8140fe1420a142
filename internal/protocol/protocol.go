// Package protocol defines the request/response envelope wrapping every
// player command and the dispatcher that applies each request at most
// once per room.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/emberfall/internal/errors"
	"github.com/louisbranch/emberfall/internal/scenario/domain"
)

// CommandType identifies a player command on the wire.
type CommandType string

const (
	CommandSelectCards  CommandType = "select_cards"
	CommandMove         CommandType = "move"
	CommandAttack       CommandType = "attack"
	CommandEndTurn      CommandType = "end_turn"
	CommandRest         CommandType = "rest"
	CommandRestDecision CommandType = "rest_decision"
)

// Command is the payload of a player request. Exactly one field is set,
// selected by the envelope's type tag.
type Command struct {
	Type         CommandType          `json:"type"`
	SelectCards  *SelectCardsCommand  `json:"selectCards,omitempty"`
	Move         *MoveCommand         `json:"move,omitempty"`
	Attack       *AttackCommand       `json:"attack,omitempty"`
	EndTurn      *EndTurnCommand      `json:"endTurn,omitempty"`
	Rest         *RestCommand         `json:"rest,omitempty"`
	RestDecision *RestDecisionCommand `json:"restDecision,omitempty"`
}

// SelectCardsCommand picks the two cards a character plays this round.
type SelectCardsCommand struct {
	CharacterID string   `json:"characterId"`
	CardIDs     []string `json:"cardIds"`
}

// MoveCommand moves a character along a hex path using a played card's
// movement value.
type MoveCommand struct {
	CharacterID string       `json:"characterId"`
	CardID      string       `json:"cardId"`
	Path        []domain.Hex `json:"path"`
}

// AttackCommand attacks a target with a played card.
type AttackCommand struct {
	CharacterID  string `json:"characterId"`
	TargetID     string `json:"targetId"`
	CardID       string `json:"cardId"`
	Ranged       bool   `json:"ranged"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
}

// EndTurnCommand ends the acting character's turn.
type EndTurnCommand struct {
	CharacterID string `json:"characterId"`
}

// RestCommand declares a short or long rest. LoseCardID names the
// discard to lose on a long rest; short rests lose a random one.
type RestCommand struct {
	CharacterID string          `json:"characterId"`
	RestType    domain.RestType `json:"restType"`
	LoseCardID  string          `json:"loseCardId,omitempty"`
}

// RestDecisionCommand answers a short rest reshuffle prompt.
type RestDecisionCommand struct {
	CharacterID string `json:"characterId"`
	Accept      bool   `json:"accept"`
}

// Request is the wire envelope for one player command. The request id
// is caller-generated and reused verbatim on retries.
type Request struct {
	RequestID string  `json:"requestId"`
	Timestamp int64   `json:"timestamp"`
	Command   Command `json:"command"`
}

// Error is the caller-visible failure carried in a response.
type Error struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// Response correlates a result to its request id. Every dispatched
// request produces exactly one response, success or not.
type Response struct {
	RequestID       string `json:"requestId"`
	Success         bool   `json:"success"`
	Error           *Error `json:"error,omitempty"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// NewRequestID generates a caller token for a fresh request.
func NewRequestID() (string, error) {
	return domain.NewID()
}

// Validate checks that the envelope is well formed before dispatch.
func (r Request) Validate() error {
	if r.RequestID == "" {
		return apperrors.New(apperrors.CodeInvalidAction, "request id is required")
	}
	switch r.Command.Type {
	case CommandSelectCards:
		if r.Command.SelectCards == nil {
			return missingPayload(r.Command.Type)
		}
	case CommandMove:
		if r.Command.Move == nil {
			return missingPayload(r.Command.Type)
		}
	case CommandAttack:
		if r.Command.Attack == nil {
			return missingPayload(r.Command.Type)
		}
	case CommandEndTurn:
		if r.Command.EndTurn == nil {
			return missingPayload(r.Command.Type)
		}
	case CommandRest:
		if r.Command.Rest == nil {
			return missingPayload(r.Command.Type)
		}
	case CommandRestDecision:
		if r.Command.RestDecision == nil {
			return missingPayload(r.Command.Type)
		}
	default:
		return apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("unknown command type %q", r.Command.Type))
	}
	return nil
}

func missingPayload(kind CommandType) error {
	return apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("command %q is missing its payload", kind))
}

// EncodeResponse serializes a response for the journal and the wire.
func EncodeResponse(resp Response) ([]byte, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return payload, nil
}

// DecodeResponse restores a journaled response.
func DecodeResponse(payload []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// failure builds an error response for a request.
func failure(requestID string, at time.Time, err error) Response {
	return Response{
		RequestID: requestID,
		Success:   false,
		Error: &Error{
			Code:    apperrors.GetCode(err),
			Message: err.Error(),
		},
		ServerTimestamp: at.UnixMilli(),
	}
}

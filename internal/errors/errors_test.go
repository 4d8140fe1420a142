package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIs(t *testing.T) {
	base := New(CodeNotYourTurn, "not your turn")
	wrapped := fmt.Errorf("apply command: %w", base)

	if !errors.Is(wrapped, New(CodeNotYourTurn, "other message")) {
		t.Error("expected errors with the same code to match")
	}
	if errors.Is(wrapped, New(CodeTimeout, "timeout")) {
		t.Error("expected errors with different codes not to match")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"engine error", New(CodeCardNotInHand, "card missing"), CodeCardNotInHand},
		{"wrapped engine error", fmt.Errorf("outer: %w", New(CodeHexBlocked, "blocked")), CodeHexBlocked},
		{"plain error", errors.New("boom"), CodeUnknown},
		{"with cause", Wrap(CodeStorageConflict, "lost race", errors.New("sql")), CodeStorageConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeNotConnected, codes.Unavailable},
		{CodeTimeout, codes.DeadlineExceeded},
		{CodeNotYourTurn, codes.FailedPrecondition},
		{CodeInvalidAction, codes.InvalidArgument},
		{CodeCharacterNotFound, codes.NotFound},
		{CodeAlreadyRecorded, codes.AlreadyExists},
		{CodeStorageConflict, codes.Aborted},
		{CodeUnknown, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.want {
				t.Errorf("%s.GRPCCode() = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestToGRPCStatus(t *testing.T) {
	err := WithMetadata(CodeTargetOutOfRange, "target beyond attack range", map[string]string{
		"range": "3",
	}).ToGRPCStatus()

	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Errorf("status code = %v, want %v", st.Code(), codes.FailedPrecondition)
	}
	if st.Message() != "target beyond attack range" {
		t.Errorf("status message = %q", st.Message())
	}
	if len(st.Details()) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(st.Details()))
	}
}

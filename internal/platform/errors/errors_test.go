package errors

import (
	stderrors "errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeScoreInsufficient, "not enough score")
	target := New(CodeScoreInsufficient, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}

	other := New(CodeAchievementMissing, "not enough score")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "persist score", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be found, got %v", err)
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeRuleInvalidMode, codes.InvalidArgument},
		{CodeAbilityUnknownSelector, codes.InvalidArgument},
		{CodeScoreInsufficient, codes.FailedPrecondition},
		{CodeHardmodeLocked, codes.FailedPrecondition},
		{CodeRewardUnknown, codes.NotFound},
		{CodeUnknown, codes.Internal},
	}

	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("code %s: expected %v, got %v", tt.code, tt.want, got)
		}
	}
}

func TestToGRPCStatusCarriesReason(t *testing.T) {
	err := WithMetadata(CodeScoreInsufficient, "need 50, have 40", map[string]string{
		"price":   "50",
		"balance": "40",
	})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", st.Code())
	}
	if len(st.Details()) == 0 {
		t.Fatal("expected errdetails to be attached")
	}
}

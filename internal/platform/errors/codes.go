// Package errors provides structured error handling for the difficulty engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Rule loading errors
	CodeRuleInvalidMode    Code = "RULE_INVALID_MODE"
	CodeRuleInvalidPhase   Code = "RULE_INVALID_PHASE"
	CodeRuleNegativeFactor Code = "RULE_NEGATIVE_FACTOR"

	// Scripted-ability errors
	CodeAbilityUnknownSelector Code = "ABILITY_UNKNOWN_SELECTOR"
	CodeAbilityInvalid         Code = "ABILITY_INVALID"

	// Score and redemption errors
	CodeScoreInsufficient     Code = "SCORE_INSUFFICIENT"
	CodeAchievementMissing    Code = "ACHIEVEMENT_MISSING"
	CodeRewardUnknown         Code = "REWARD_UNKNOWN"
	CodeRedemptionInvalidStep Code = "REDEMPTION_INVALID_STEP"

	// Instance difficulty errors
	CodeHardmodeLocked         Code = "HARDMODE_LOCKED"
	CodeEncounterInProgress    Code = "ENCOUNTER_IN_PROGRESS"
	CodeConfirmationRequired   Code = "CONFIRMATION_REQUIRED"
	CodeInstanceUnknown        Code = "INSTANCE_UNKNOWN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeRuleInvalidMode,
		CodeRuleInvalidPhase,
		CodeRuleNegativeFactor,
		CodeAbilityUnknownSelector,
		CodeAbilityInvalid,
		CodeRedemptionInvalidStep:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeScoreInsufficient,
		CodeAchievementMissing,
		CodeHardmodeLocked,
		CodeEncounterInProgress,
		CodeConfirmationRequired:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeRewardUnknown,
		CodeInstanceUnknown:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

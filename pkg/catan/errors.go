package catan

import "fmt"

// Error codes surfaced to the submitting client. Rules and state-machine
// failures are local: the command is rejected, state is untouched, and
// only the submitter sees the error.
const (
	CodeNotInGame        = "not_in_game"
	CodeNotYourTurn      = "not_your_turn"
	CodeWrongPhase       = "wrong_phase"
	CodeWrongTurnPhase   = "wrong_turn_phase"
	CodeIllegalPlacement = "illegal_placement"
	CodeCannotAfford     = "cannot_afford"
	CodePieceExhausted   = "piece_exhausted"
	CodeDeckEmpty        = "deck_empty"
	CodeBankShortage     = "bank_shortage"
	CodeInvalidPayload   = "invalid_payload"
	CodeInvalidID        = "invalid_id"
	CodeInternal         = "internal_error"
)

// RuleError is a rejected command. Code is one of the constants above.
type RuleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RuleError) Error() string {
	return e.Code + ": " + e.Message
}

func ruleErr(code, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

package errors

import "errors"

var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrSuggestionFailure  = errors.New("suggestion failure")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrMalformedBoard     = errors.New("malformed board")
	ErrAdvisorUnavailable = errors.New("advisor unavailable")
	ErrJournalDisabled    = errors.New("decision journal disabled")
	ErrInternal           = errors.New("internal error")
)

package services

import "errors"

// Shared service-level errors, mapped to HTTP statuses in handlers.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrTournamentAlreadyFinalized is the incremental path's
	// idempotency guard: ranking rows already exist for the tournament,
	// so another finalize would duplicate or clobber them. The batch
	// recompute path is the only one allowed past existing rows.
	ErrTournamentAlreadyFinalized = errors.New("tournament rankings already finalized")

	// ErrIncompleteResults means not every expected session has a
	// submitted result; the wrap carries the missing count.
	ErrIncompleteResults = errors.New("tournament has incomplete results")

	// ErrRankingConstraintViolation means the ranking store's
	// uniqueness constraint fired even though the application-level
	// guard passed. That is an invariant breach upstream, not a caller
	// mistake; it is logged as severe and surfaced as an internal error.
	ErrRankingConstraintViolation = errors.New("ranking store uniqueness constraint violated")

	ErrSessionTournamentMismatch = errors.New("session does not belong to tournament")
	ErrSessionNotCompleted       = errors.New("session is not completed")
	ErrSessionHasNoResults       = errors.New("session has no submitted results")

	// ErrTournamentNotFinalizable guards the lifecycle: rankings are
	// only derived for tournaments whose play has finished and whose
	// rewards have not yet been paid out.
	ErrTournamentNotFinalizable = errors.New("tournament is not in a finalizable state")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)

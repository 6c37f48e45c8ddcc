package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Validation errors — raised before any write; retrying the same
	// input unmodified will fail again.
	ErrMissingUser     = errors.New("user id is required")
	ErrMissingDate     = errors.New("date is required")
	ErrBadDate         = errors.New("date must be YYYY-MM-DD")
	ErrNoGrades        = errors.New("check-in must include at least one behavior grade")
	ErrGradeOutOfRange = errors.New("behavior grade must be one of 0, 50, 80, 100")

	// Record errors
	ErrRecordNotFound = errors.New("daily record not found")

	// ErrVersionConflict signals a lost optimistic-concurrency race on a
	// record write. The whole orchestration is safe to retry.
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrIncompleteRecord is a structural-integrity failure: a derived
	// record is missing a required field. Internal, never persisted.
	ErrIncompleteRecord = errors.New("derived record failed structural validation")

	// Gap reconciliation errors
	ErrNothingToReconcile = errors.New("no missed day awaiting reconciliation")
)

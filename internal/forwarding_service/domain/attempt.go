package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttemptOutcome labels one entry in the local attempt audit trail.
type AttemptOutcome string

const (
	// AttemptCodeIssued records that a literal dial code was presented to the operator.
	AttemptCodeIssued AttemptOutcome = "code_issued"
	// AttemptAppManaged records that carrier-app instructions were presented instead
	// of a code.
	AttemptAppManaged AttemptOutcome = "app_managed"
	// AttemptConfirmed records an operator assertion that the carrier honored a code.
	AttemptConfirmed AttemptOutcome = "confirmed"
	// AttemptFailureReported records an operator assertion that the carrier did not.
	AttemptFailureReported AttemptOutcome = "failure_reported"
)

// AttemptRecord is one row of the support audit trail. Every presented code,
// confirmation and failure report is appended here so support can reconstruct what
// was asserted, for which carrier, by whom.
type AttemptRecord struct {
	ID            uuid.UUID
	TargetID      uuid.UUID
	Carrier       string
	Transition    Transition
	Outcome       AttemptOutcome
	Code          string // the literal code presented, empty otherwise
	FailureReason string
	ActorID       string // operator identity from the auth token
	CreatedAt     time.Time
}

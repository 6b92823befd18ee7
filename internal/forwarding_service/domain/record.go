package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationStatus labels why a patch was issued. The backend stores it alongside
// the record for support triage.
type ConfirmationStatus string

const (
	ConfirmationCarrierSelected ConfirmationStatus = "carrier_selected"
	ConfirmationConfirmed       ConfirmationStatus = "confirmed"
	ConfirmationFailureReported ConfirmationStatus = "failure_reported"
	ConfirmationNotesUpdated    ConfirmationStatus = "notes_updated"
)

// ForwardingStateRecord is the persisted forwarding state for one managed user.
//
// The record reflects operator assertions, never verified carrier-side facts: dial
// codes fire into an external network that gives no programmatic acknowledgment, so
// a flag changes only when the operator explicitly confirms the carrier honored a
// code. Dialing alone never mutates the record.
type ForwardingStateRecord struct {
	TargetID                  uuid.UUID
	Carrier                   *string // nil until the operator selects one
	ConditionalEnabled        bool
	UnconditionalEnabled      bool
	LastUnconditionalChangeAt *time.Time
	LastFailureReason         *string
	OperatorNotes             *string
	AssignedNumber            *string // last number the backend saw bound to the target
	UpdatedAt                 time.Time
}

// CarrierSet reports whether the carrier axis has left its initial Unset state.
// All forwarding transitions are blocked until it has.
func (r *ForwardingStateRecord) CarrierSet() bool {
	return r != nil && r.Carrier != nil && *r.Carrier != ""
}

// FlagFor returns the current value of the flag governed by the given axis.
func (r *ForwardingStateRecord) FlagFor(axis ForwardingAxis) bool {
	if r == nil {
		return false
	}
	if axis == AxisConditional {
		return r.ConditionalEnabled
	}
	return r.UnconditionalEnabled
}

// StatePatch is a partial update applied through the state API. Nil fields are left
// untouched server-side. Patches are side-effect-bearing human confirmations and are
// never retried automatically.
type StatePatch struct {
	Carrier              *string            `json:"carrier,omitempty"`
	ConditionalEnabled   *bool              `json:"conditional_enabled,omitempty"`
	UnconditionalEnabled *bool              `json:"unconditional_enabled,omitempty"`
	ConfirmationStatus   ConfirmationStatus `json:"confirmation_status"`
	FailureReason        *string            `json:"failure_reason,omitempty"`
	Notes                *string            `json:"notes,omitempty"`
}

package http

import (
	"time"

	"github.com/rentalops/telephony_services/internal/forwarding_service/app"
	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

// --- Request DTOs ---

type SelectCarrierRequestDTO struct {
	Carrier string `json:"carrier" validate:"required"`
}

type ConfirmTransitionRequestDTO struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type FailureReportRequestDTO struct {
	Transition string  `json:"transition" validate:"required"`
	Reason     string  `json:"reason" validate:"required,max=2000"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateNotesRequestDTO struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// --- Response DTOs ---

type CarrierResponseDTO struct {
	Name                string `json:"name"`
	Family              string `json:"family"`
	SupportsConditional bool   `json:"supports_conditional"`
	Notes               string `json:"notes,omitempty"`
}

type StateViewResponseDTO struct {
	TargetID                  string     `json:"target_id"`
	NumberAssigned            bool       `json:"number_assigned"`
	AssignedNumber            string     `json:"assigned_number,omitempty"`
	Carrier                   *string    `json:"carrier"`
	CarrierKnown              bool       `json:"carrier_known"`
	ConditionalEnabled        bool       `json:"conditional_enabled"`
	UnconditionalEnabled      bool       `json:"unconditional_enabled"`
	LastUnconditionalChangeAt *time.Time `json:"last_unconditional_change_at,omitempty"`
	LastFailureReason         *string    `json:"last_failure_reason,omitempty"`
	OperatorNotes             *string    `json:"operator_notes,omitempty"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

type DialCodeResponseDTO struct {
	TargetID         string `json:"target_id"`
	Carrier          string `json:"carrier"`
	Transition       string `json:"transition"`
	Kind             string `json:"kind"` // "literal" or "app_managed"
	Code             string `json:"code,omitempty"`
	Instructions     string `json:"instructions"`
	ConfirmAvailable bool   `json:"confirm_available"`
}

type AttemptResponseDTO struct {
	ID            string    `json:"id"`
	TargetID      string    `json:"target_id"`
	Carrier       string    `json:"carrier,omitempty"`
	Transition    string    `json:"transition,omitempty"`
	Outcome       string    `json:"outcome"`
	Code          string    `json:"code,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListAttemptsResponseDTO struct {
	Attempts []AttemptResponseDTO `json:"attempts"`
	Offset   int                  `json:"offset"`
	Limit    int                  `json:"limit"`
}

// BlockingResponseDTO describes a non-alarming blocked state the operator must
// resolve out of band (assign a number, pick a carrier) before forwarding actions
// become available.
type BlockingResponseDTO struct {
	Blocking string `json:"blocking"`
	Message  string `json:"message"`
}

type ErrorResponseDTO struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// --- Mapping helpers ---

func stateViewToDTO(view *app.StateView) StateViewResponseDTO {
	rec := view.Record
	if rec == nil {
		rec = &domain.ForwardingStateRecord{TargetID: view.TargetID}
	}
	return StateViewResponseDTO{
		TargetID:                  view.TargetID.String(),
		NumberAssigned:            view.NumberAssigned,
		AssignedNumber:            view.AssignedNumber,
		Carrier:                   rec.Carrier,
		CarrierKnown:              view.Carrier != nil,
		ConditionalEnabled:        rec.ConditionalEnabled,
		UnconditionalEnabled:      rec.UnconditionalEnabled,
		LastUnconditionalChangeAt: rec.LastUnconditionalChangeAt,
		LastFailureReason:         rec.LastFailureReason,
		OperatorNotes:             rec.OperatorNotes,
		UpdatedAt:                 rec.UpdatedAt,
	}
}

func presentationToDTO(p *app.DialCodePresentation) DialCodeResponseDTO {
	return DialCodeResponseDTO{
		TargetID:         p.TargetID.String(),
		Carrier:          p.Carrier,
		Transition:       string(p.Transition),
		Kind:             string(p.Code.Kind),
		Code:             p.Code.Code,
		Instructions:     p.Instructions,
		ConfirmAvailable: p.ConfirmAvailable,
	}
}

func attemptToDTO(a *domain.AttemptRecord) AttemptResponseDTO {
	return AttemptResponseDTO{
		ID:            a.ID.String(),
		TargetID:      a.TargetID.String(),
		Carrier:       a.Carrier,
		Transition:    string(a.Transition),
		Outcome:       string(a.Outcome),
		Code:          a.Code,
		FailureReason: a.FailureReason,
		ActorID:       a.ActorID,
		CreatedAt:     a.CreatedAt,
	}
}

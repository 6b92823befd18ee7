package domain

import (
	"time"

	"github.com/google/uuid"
)

// NATS subjects for forwarding lifecycle events consumed elsewhere in the platform.
const (
	EventSubjectCarrierSelected     = "forwarding.carrier.selected"
	EventSubjectTransitionConfirmed = "forwarding.transition.confirmed"
	EventSubjectFailureReported     = "forwarding.failure.reported"
)

// ForwardingEvent is the JSON payload published on the subjects above.
type ForwardingEvent struct {
	TargetID   uuid.UUID  `json:"target_id"`
	Carrier    string     `json:"carrier,omitempty"`
	Transition Transition `json:"transition,omitempty"`
	ActorID    string     `json:"actor_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

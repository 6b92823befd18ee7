package app

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

// StateView is what the dashboard displays for the active target: the authoritative
// record plus derived availability per transition.
type StateView struct {
	TargetID       uuid.UUID
	NumberAssigned bool
	AssignedNumber string
	Record         *domain.ForwardingStateRecord
	Carrier        *domain.CarrierProfile // nil while selection is pending or unknown
}

// viewTracker enforces the ordering rules for the displayed state: responses carry
// the sequence number handed out when their operation was issued, and a response is
// applied only if no later-issued operation has already been applied and the target
// it belongs to is still the active one. Last-operation-wins by issuance order, not
// response order; stale responses for a switched-away target are discarded outright.
type viewTracker struct {
	mu           sync.Mutex
	activeTarget uuid.UUID
	lastIssued   uint64
	lastApplied  uint64
	current      *StateView
}

func newViewTracker() *viewTracker {
	return &viewTracker{}
}

// begin registers the start of an operation for a target and returns its sequence
// number. Switching targets invalidates the cached view immediately so a stale
// record is never displayed while the new target's fetch is in flight.
func (vt *viewTracker) begin(target uuid.UUID) uint64 {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	vt.lastIssued++
	if target != vt.activeTarget {
		vt.activeTarget = target
		vt.current = nil
	}
	return vt.lastIssued
}

// apply installs a finished operation's view. Returns false (and leaves the current
// view untouched) when the response is stale: the operator has switched targets, or
// a later-issued operation already resolved.
func (vt *viewTracker) apply(target uuid.UUID, seq uint64, view *StateView) bool {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	if target != vt.activeTarget {
		return false
	}
	if seq <= vt.lastApplied {
		return false
	}
	vt.lastApplied = seq
	vt.current = view
	return true
}

// currentView returns the view for the active target, if one has been applied.
func (vt *viewTracker) currentView() (*StateView, bool) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	if vt.current == nil {
		return nil, false
	}
	return vt.current, true
}

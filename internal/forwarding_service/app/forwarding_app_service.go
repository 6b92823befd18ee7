package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rentalops/telephony_services/internal/forwarding_service/catalog"
	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

// ErrSuperseded is returned when an operation's result was discarded because a
// later-issued operation already resolved. The caller should re-read the current
// view instead of displaying the stale result.
var ErrSuperseded = errors.New("result superseded by a newer operation")

// StateStore reads and patches the authoritative forwarding-state records.
type StateStore interface {
	FetchState(ctx context.Context, targetID uuid.UUID) (*domain.ForwardingStateRecord, error)
	PatchState(ctx context.Context, targetID uuid.UUID, patch domain.StatePatch) (*domain.ForwardingStateRecord, error)
}

// NumberProvider reports which pool number, if any, is bound to a target.
type NumberProvider interface {
	FetchAssignedNumber(ctx context.Context, targetID uuid.UUID) (string, error)
}

// EventPublisher publishes forwarding lifecycle events for the rest of the platform.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// DialCodePresentation is what the operator is shown for one requested transition:
// either a literal code with confirm/report actions, or carrier-app instructions
// with no confirm action at all.
type DialCodePresentation struct {
	TargetID         uuid.UUID
	Carrier          string
	Transition       domain.Transition
	Code             domain.DialCode
	Instructions     string
	ConfirmAvailable bool
}

// ForwardingAppService sequences the confirmation workflow: choose carrier, dial
// code, manual confirmation, record transition, plus the parallel failure-report
// branch. No record mutation ever happens without an explicit operator action.
type ForwardingAppService struct {
	states   StateStore
	numbers  NumberProvider
	catalog  *catalog.Catalog
	attempts domain.AttemptRepository
	events   EventPublisher
	logger   *slog.Logger
	tracker  *viewTracker
}

// NewForwardingAppService creates the workflow controller. events may be nil, in
// which case no platform events are published.
func NewForwardingAppService(
	states StateStore,
	numbers NumberProvider,
	cat *catalog.Catalog,
	attempts domain.AttemptRepository,
	events EventPublisher,
	logger *slog.Logger,
) *ForwardingAppService {
	return &ForwardingAppService{
		states:   states,
		numbers:  numbers,
		catalog:  cat,
		attempts: attempts,
		events:   events,
		logger:   logger,
		tracker:  newViewTracker(),
	}
}

// Carriers lists the catalog entries for selection.
func (s *ForwardingAppService) Carriers() []domain.CarrierProfile {
	return s.catalog.All()
}

// CurrentView returns the last applied view for the active target.
func (s *ForwardingAppService) CurrentView() (*StateView, bool) {
	return s.tracker.currentView()
}

// GetStateView fetches the authoritative state for a target. Selecting a target
// here is what switches the active target: any in-flight operation for a previous
// target is discarded when it resolves.
func (s *ForwardingAppService) GetStateView(ctx context.Context, targetID uuid.UUID) (*StateView, error) {
	seq := s.tracker.begin(targetID)

	view, err := s.fetchView(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.finish(targetID, seq, view)
}

// SelectCarrier records the operator's carrier choice. This is the one transition
// that needs no dial code; it is patched directly and unblocks the others.
func (s *ForwardingAppService) SelectCarrier(ctx context.Context, targetID uuid.UUID, carrierName, actorID string) (*StateView, error) {
	profile, ok := s.catalog.Lookup(carrierName)
	if !ok {
		return nil, domain.ErrUnknownCarrier
	}

	patch := domain.StatePatch{
		Carrier:            &profile.Name,
		ConfirmationStatus: domain.ConfirmationCarrierSelected,
	}
	view, err := s.patchAndRefresh(ctx, targetID, patch)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventSubjectCarrierSelected, domain.ForwardingEvent{
		TargetID:   targetID,
		Carrier:    profile.Name,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	return view, nil
}

// PrepareTransition resolves what to show the operator for a requested transition.
// Blocking conditions short-circuit: no assigned number, carrier unset, or no dial
// code offered by the carrier. Preparing never mutates the record; it only audits
// what was presented.
func (s *ForwardingAppService) PrepareTransition(ctx context.Context, targetID uuid.UUID, t domain.Transition, actorID string) (*DialCodePresentation, error) {
	number, _, profile, err := s.loadForTransition(ctx, targetID)
	if err != nil {
		return nil, err
	}

	code := domain.ResolveDialCode(profile, number, t)
	dialCodeResolutionsCounter.WithLabelValues(string(profile.Family), string(code.Kind)).Inc()

	switch code.Kind {
	case domain.DialCodeUnavailable:
		// Number presence was already checked, so this is the carrier not offering
		// the mode. Permanent for this carrier; no dial is presented.
		return nil, domain.ErrUnsupportedTransition
	case domain.DialCodeAppManaged:
		s.audit(ctx, &domain.AttemptRecord{
			TargetID:   targetID,
			Carrier:    profile.Name,
			Transition: t,
			Outcome:    domain.AttemptAppManaged,
			ActorID:    actorID,
		})
		return &DialCodePresentation{
			TargetID:   targetID,
			Carrier:    profile.Name,
			Transition: t,
			Code:       code,
			Instructions: fmt.Sprintf(
				"%s does not use dial codes. Open the carrier's own app and change call forwarding there.",
				profile.Name),
			ConfirmAvailable: false,
		}, nil
	default:
		s.audit(ctx, &domain.AttemptRecord{
			TargetID:   targetID,
			Carrier:    profile.Name,
			Transition: t,
			Outcome:    domain.AttemptCodeIssued,
			Code:       code.Code,
			ActorID:    actorID,
		})
		return &DialCodePresentation{
			TargetID:   targetID,
			Carrier:    profile.Name,
			Transition: t,
			Code:       code,
			Instructions: fmt.Sprintf(
				"Dial %s from the handset, then confirm below once the carrier announces the change.",
				code.Code),
			ConfirmAvailable: true,
		}, nil
	}
}

// ConfirmTransition records the operator's assertion that the carrier honored the
// dialed code and flips the relevant flag. Confirming a flag that already holds the
// target value is not an error; the patch still goes through so notes and the
// confirmation trail stay current.
func (s *ForwardingAppService) ConfirmTransition(ctx context.Context, targetID uuid.UUID, t domain.Transition, notes *string, actorID string) (*StateView, error) {
	number, _, profile, err := s.loadForTransition(ctx, targetID)
	if err != nil {
		return nil, err
	}

	code := domain.ResolveDialCode(profile, number, t)
	switch code.Kind {
	case domain.DialCodeAppManaged:
		// There was never a code to confirm.
		return nil, domain.ErrAppManagedTransition
	case domain.DialCodeUnavailable:
		return nil, domain.ErrUnsupportedTransition
	}

	enabled := t.Enables()
	patch := domain.StatePatch{
		ConfirmationStatus: domain.ConfirmationConfirmed,
		Notes:              notes,
	}
	if t.Axis() == domain.AxisConditional {
		patch.ConditionalEnabled = &enabled
	} else {
		patch.UnconditionalEnabled = &enabled
	}

	view, err := s.patchAndRefresh(ctx, targetID, patch)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, &domain.AttemptRecord{
		TargetID:   targetID,
		Carrier:    profile.Name,
		Transition: t,
		Outcome:    domain.AttemptConfirmed,
		Code:       code.Code,
		ActorID:    actorID,
	})
	s.publish(ctx, domain.EventSubjectTransitionConfirmed, domain.ForwardingEvent{
		TargetID:   targetID,
		Carrier:    profile.Name,
		Transition: t,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	return view, nil
}

// ReportFailure records the operator's assertion that the carrier did not honor a
// code. The forwarding flags are left exactly as last asserted: the system cannot
// observe the true carrier-side state, so the report only stores the reason for
// support follow-up.
func (s *ForwardingAppService) ReportFailure(ctx context.Context, targetID uuid.UUID, t domain.Transition, reason string, notes *string, actorID string) (*StateView, error) {
	_, _, profile, err := s.loadForTransition(ctx, targetID)
	if err != nil {
		return nil, err
	}

	patch := domain.StatePatch{
		ConfirmationStatus: domain.ConfirmationFailureReported,
		FailureReason:      &reason,
		Notes:              notes,
	}
	view, err := s.patchAndRefresh(ctx, targetID, patch)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, &domain.AttemptRecord{
		TargetID:      targetID,
		Carrier:       profile.Name,
		Transition:    t,
		Outcome:       domain.AttemptFailureReported,
		FailureReason: reason,
		ActorID:       actorID,
	})
	s.publish(ctx, domain.EventSubjectFailureReported, domain.ForwardingEvent{
		TargetID:   targetID,
		Carrier:    profile.Name,
		Transition: t,
		ActorID:    actorID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	return view, nil
}

// UpdateNotes patches the free-text operator notes on the record.
func (s *ForwardingAppService) UpdateNotes(ctx context.Context, targetID uuid.UUID, notes string, actorID string) (*StateView, error) {
	patch := domain.StatePatch{
		ConfirmationStatus: domain.ConfirmationNotesUpdated,
		Notes:              &notes,
	}
	return s.patchAndRefresh(ctx, targetID, patch)
}

// ListAttempts returns the local audit trail for a target, newest first.
func (s *ForwardingAppService) ListAttempts(ctx context.Context, targetID uuid.UUID, offset, limit int) ([]*domain.AttemptRecord, error) {
	return s.attempts.ListByTarget(ctx, targetID, offset, limit)
}

// --- internals ---

// loadForTransition performs the blocking checks shared by prepare, confirm and
// report: a number must be assigned and a known carrier must be selected.
func (s *ForwardingAppService) loadForTransition(ctx context.Context, targetID uuid.UUID) (string, *domain.ForwardingStateRecord, *domain.CarrierProfile, error) {
	number, err := s.fetchNumber(ctx, targetID)
	if err != nil {
		return "", nil, nil, err
	}
	if number == "" {
		return "", nil, nil, domain.ErrNoNumberAssigned
	}

	rec, err := s.fetchRecord(ctx, targetID)
	if err != nil {
		return "", nil, nil, err
	}
	if !rec.CarrierSet() {
		return "", nil, nil, domain.ErrCarrierUnset
	}

	profile, ok := s.catalog.Lookup(*rec.Carrier)
	if !ok {
		return "", nil, nil, domain.ErrUnknownCarrier
	}
	return number, rec, profile, nil
}

// fetchView assembles the display state for a target. A target with no assigned
// number is a valid terminal view, not an error.
func (s *ForwardingAppService) fetchView(ctx context.Context, targetID uuid.UUID) (*StateView, error) {
	number, err := s.fetchNumber(ctx, targetID)
	if err != nil {
		return nil, err
	}

	rec, err := s.fetchRecord(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return s.buildView(targetID, rec, number), nil
}

func (s *ForwardingAppService) fetchNumber(ctx context.Context, targetID uuid.UUID) (string, error) {
	start := time.Now()
	number, err := s.numbers.FetchAssignedNumber(ctx, targetID)
	upstreamRequestDurationHist.WithLabelValues("number_api", "fetch_assigned_number").Observe(time.Since(start).Seconds())
	if errors.Is(err, domain.ErrNoNumberAssigned) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

// fetchRecord reads the record, mapping the backend's "nothing for this target yet"
// answer to a fresh empty record so the carrier-selection flow can start.
func (s *ForwardingAppService) fetchRecord(ctx context.Context, targetID uuid.UUID) (*domain.ForwardingStateRecord, error) {
	start := time.Now()
	rec, err := s.states.FetchState(ctx, targetID)
	upstreamRequestDurationHist.WithLabelValues("state_api", "fetch_state").Observe(time.Since(start).Seconds())
	if errors.Is(err, domain.ErrNoNumberAssigned) {
		return &domain.ForwardingStateRecord{TargetID: targetID}, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ForwardingAppService) buildView(targetID uuid.UUID, rec *domain.ForwardingStateRecord, number string) *StateView {
	view := &StateView{
		TargetID:       targetID,
		NumberAssigned: number != "",
		AssignedNumber: number,
		Record:         rec,
	}
	if rec.CarrierSet() {
		if profile, ok := s.catalog.Lookup(*rec.Carrier); ok {
			view.Carrier = profile
		}
	}
	return view
}

// patchAndRefresh writes a patch and then re-fetches the authoritative record
// rather than trusting the optimistic response: a managing operator and a managed
// individual may race on the same record, and the display must reflect the server's
// resolution. Patches are never retried; a 429 surfaces verbatim.
func (s *ForwardingAppService) patchAndRefresh(ctx context.Context, targetID uuid.UUID, patch domain.StatePatch) (*StateView, error) {
	seq := s.tracker.begin(targetID)

	start := time.Now()
	_, err := s.states.PatchState(ctx, targetID, patch)
	upstreamRequestDurationHist.WithLabelValues("state_api", "patch_state").Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		var rle *domain.RateLimitedError
		if errors.As(err, &rle) {
			outcome = "rate_limited"
		}
		statePatchesCounter.WithLabelValues(string(patch.ConfirmationStatus), outcome).Inc()
		s.logger.WarnContext(ctx, "forwarding-state patch rejected",
			"target_id", targetID, "confirmation_status", patch.ConfirmationStatus, "error", err)
		return nil, err
	}
	statePatchesCounter.WithLabelValues(string(patch.ConfirmationStatus), "success").Inc()

	view, err := s.fetchView(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.finish(targetID, seq, view)
}

// finish applies a resolved operation to the tracked view. When a later operation
// already won, the fresher same-target view is returned instead of the stale one;
// a view for a switched-away target is discarded entirely.
func (s *ForwardingAppService) finish(targetID uuid.UUID, seq uint64, view *StateView) (*StateView, error) {
	if s.tracker.apply(targetID, seq, view) {
		return view, nil
	}
	staleResponsesCounter.Inc()
	if cur, ok := s.tracker.currentView(); ok && cur.TargetID == targetID {
		return cur, nil
	}
	return nil, ErrSuperseded
}

// audit is best-effort: losing an audit row must not fail the operator's action.
func (s *ForwardingAppService) audit(ctx context.Context, attempt *domain.AttemptRecord) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.ErrorContext(ctx, "failed to record forwarding attempt",
			"target_id", attempt.TargetID, "outcome", attempt.Outcome, "error", err)
	}
}

// publish is best-effort: event delivery never blocks or fails the operation.
func (s *ForwardingAppService) publish(ctx context.Context, subject string, event domain.ForwardingEvent) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal forwarding event", "subject", subject, "error", err)
		return
	}
	if err := s.events.Publish(ctx, subject, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish forwarding event", "subject", subject, "error", err)
	}
}

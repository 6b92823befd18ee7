package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentalops/telephony_services/internal/forwarding_service/app"
	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

// ForwardingService is the slice of the app layer this handler drives.
type ForwardingService interface {
	Carriers() []domain.CarrierProfile
	GetStateView(ctx context.Context, targetID uuid.UUID) (*app.StateView, error)
	SelectCarrier(ctx context.Context, targetID uuid.UUID, carrierName, actorID string) (*app.StateView, error)
	PrepareTransition(ctx context.Context, targetID uuid.UUID, t domain.Transition, actorID string) (*app.DialCodePresentation, error)
	ConfirmTransition(ctx context.Context, targetID uuid.UUID, t domain.Transition, notes *string, actorID string) (*app.StateView, error)
	ReportFailure(ctx context.Context, targetID uuid.UUID, t domain.Transition, reason string, notes *string, actorID string) (*app.StateView, error)
	UpdateNotes(ctx context.Context, targetID uuid.UUID, notes string, actorID string) (*app.StateView, error)
	ListAttempts(ctx context.Context, targetID uuid.UUID, offset, limit int) ([]*domain.AttemptRecord, error)
}

// ForwardingHandler exposes the confirmation workflow to the dashboard.
type ForwardingHandler struct {
	service  ForwardingService
	logger   *slog.Logger
	validate *validator.Validate
}

func NewForwardingHandler(service ForwardingService, logger *slog.Logger, validate *validator.Validate) *ForwardingHandler {
	return &ForwardingHandler{
		service:  service,
		logger:   logger,
		validate: validate,
	}
}

// RegisterRoutes sets up the routing for the forwarding workflow.
func (h *ForwardingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/carriers", h.ListCarriers)

	r.Get("/forwarding/{targetID}", h.GetState)
	r.Put("/forwarding/{targetID}/carrier", h.SelectCarrier)
	r.Post("/forwarding/{targetID}/transitions/{transition}/prepare", h.PrepareTransition)
	r.Post("/forwarding/{targetID}/transitions/{transition}/confirm", h.ConfirmTransition)
	r.Post("/forwarding/{targetID}/failure-report", h.ReportFailure)
	r.Patch("/forwarding/{targetID}/notes", h.UpdateNotes)
	r.Get("/forwarding/{targetID}/attempts", h.ListAttempts)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponseDTO{Error: message})
}

// respondWithDomainError maps the error taxonomy onto HTTP statuses. Blocking
// conditions are 409s with a machine-readable "blocking" field; a 429 from the
// backend passes through verbatim with its cooldown; transient upstream failures
// get a retryable flag so the dashboard offers a manual retry, never retrying
// itself.
func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoNumberAssigned):
		respondWithJSON(w, http.StatusConflict, BlockingResponseDTO{
			Blocking: "no_number_assigned",
			Message:  "Assign a telephony number to this user before configuring forwarding.",
		})
	case errors.Is(err, domain.ErrCarrierUnset):
		respondWithJSON(w, http.StatusConflict, BlockingResponseDTO{
			Blocking: "carrier_unset",
			Message:  "Select the user's mobile carrier before configuring forwarding.",
		})
	case errors.Is(err, domain.ErrUnknownCarrier):
		respondWithJSON(w, http.StatusConflict, BlockingResponseDTO{
			Blocking: "carrier_unknown",
			Message:  "The recorded carrier is not in the catalog; re-select the carrier.",
		})
	case errors.Is(err, domain.ErrUnsupportedTransition):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAppManagedTransition):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, app.ErrSuperseded):
		respondWithError(w, http.StatusConflict, "a newer operation superseded this one; reload the forwarding state")
	default:
		var rle *domain.RateLimitedError
		if errors.As(err, &rle) {
			if rle.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
			}
			// The backend's cooldown message is surfaced untouched.
			respondWithError(w, http.StatusTooManyRequests, rle.Message)
			return
		}
		var remote *domain.RemoteError
		if errors.As(err, &remote) {
			if remote.Transient() {
				respondWithJSON(w, http.StatusBadGateway, ErrorResponseDTO{
					Error:     remote.Error(),
					Retryable: true,
				})
				return
			}
			respondWithError(w, remote.StatusCode, remote.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *ForwardingHandler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	profiles := h.service.Carriers()
	out := make([]CarrierResponseDTO, len(profiles))
	for i, p := range profiles {
		out[i] = CarrierResponseDTO{
			Name:                p.Name,
			Family:              string(p.Family),
			SupportsConditional: p.SupportsConditional,
			Notes:               p.Notes,
		}
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *ForwardingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetStateView(ctx, targetID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch forwarding state", "error", err, "target_id", targetID)
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stateViewToDTO(view))
}

func (h *ForwardingHandler) SelectCarrier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}

	var reqDTO SelectCarrierRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	view, err := h.service.SelectCarrier(ctx, targetID, reqDTO.Carrier, actorID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "carrier selection failed", "error", err, "target_id", targetID, "carrier", reqDTO.Carrier)
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stateViewToDTO(view))
}

func (h *ForwardingHandler) PrepareTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}
	transition, ok := h.transition(w, r)
	if !ok {
		return
	}

	presentation, err := h.service.PrepareTransition(ctx, targetID, transition, actorID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "transition preparation blocked",
			"error", err, "target_id", targetID, "transition", transition)
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, presentationToDTO(presentation))
}

func (h *ForwardingHandler) ConfirmTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}
	transition, ok := h.transition(w, r)
	if !ok {
		return
	}

	var reqDTO ConfirmTransitionRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
		defer r.Body.Close()
		if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
			respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
			return
		}
	}

	view, err := h.service.ConfirmTransition(ctx, targetID, transition, reqDTO.Notes, actorID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "transition confirmation failed",
			"error", err, "target_id", targetID, "transition", transition)
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stateViewToDTO(view))
}

func (h *ForwardingHandler) ReportFailure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}

	var reqDTO FailureReportRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	transition, err := domain.ParseTransition(reqDTO.Transition)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.ReportFailure(ctx, targetID, transition, reqDTO.Reason, reqDTO.Notes, actorID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failure report rejected",
			"error", err, "target_id", targetID, "transition", transition)
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stateViewToDTO(view))
}

func (h *ForwardingHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}

	var reqDTO UpdateNotesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	view, err := h.service.UpdateNotes(ctx, targetID, reqDTO.Notes, actorID(ctx))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stateViewToDTO(view))
}

func (h *ForwardingHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, ok := h.targetID(w, r)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	attempts, err := h.service.ListAttempts(ctx, targetID, offset, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list forwarding attempts", "error", err, "target_id", targetID)
		respondWithError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}

	out := make([]AttemptResponseDTO, len(attempts))
	for i, a := range attempts {
		out[i] = attemptToDTO(a)
	}
	respondWithJSON(w, http.StatusOK, ListAttemptsResponseDTO{Attempts: out, Offset: offset, Limit: limit})
}

func (h *ForwardingHandler) targetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "targetID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid target ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ForwardingHandler) transition(w http.ResponseWriter, r *http.Request) (domain.Transition, bool) {
	t, err := domain.ParseTransition(chi.URLParam(r, "transition"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return t, true
}

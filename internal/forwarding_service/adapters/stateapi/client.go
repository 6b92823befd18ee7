// Package stateapi is the HTTP adapter for the backend forwarding-state store.
// The store is the single source of truth for ForwardingStateRecords; this service
// only reads and patches it.
package stateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	authToken  string
}

func NewClient(logger *slog.Logger, baseURL, authToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		logger:     logger.With("adapter", "stateapi"),
		httpClient: httpClient,
		baseURL:    baseURL,
		authToken:  authToken,
	}
}

// stateRecordDTO mirrors the backend's forwarding-state wire shape.
type stateRecordDTO struct {
	Carrier                   *string    `json:"carrier"`
	ConditionalEnabled        bool       `json:"conditional_enabled"`
	UnconditionalEnabled      bool       `json:"unconditional_enabled"`
	LastUnconditionalChangeAt *time.Time `json:"last_unconditional_change_at"`
	FailureReason             *string    `json:"failure_reason"`
	Notes                     *string    `json:"notes"`
	AssignedNumber            *string    `json:"assigned_number"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

func (d *stateRecordDTO) toDomain(targetID uuid.UUID) *domain.ForwardingStateRecord {
	return &domain.ForwardingStateRecord{
		TargetID:                  targetID,
		Carrier:                   d.Carrier,
		ConditionalEnabled:        d.ConditionalEnabled,
		UnconditionalEnabled:      d.UnconditionalEnabled,
		LastUnconditionalChangeAt: d.LastUnconditionalChangeAt,
		LastFailureReason:         d.FailureReason,
		OperatorNotes:             d.Notes,
		AssignedNumber:            d.AssignedNumber,
		UpdatedAt:                 d.UpdatedAt,
	}
}

type errorResponseDTO struct {
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// FetchState reads the authoritative record for one target. A backend 404 means the
// target has no assigned number yet and is returned as domain.ErrNoNumberAssigned;
// callers treat that as a valid terminal display state, not a failure.
func (c *Client) FetchState(ctx context.Context, targetID uuid.UUID) (*domain.ForwardingStateRecord, error) {
	url := fmt.Sprintf("%s/v1/forwarding-state/%s", c.baseURL, targetID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create forwarding-state request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "forwarding-state fetch failed", "error", err, "target_id", targetID)
		return nil, &domain.RemoteError{Message: "forwarding-state store unreachable"}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read forwarding-state response: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusOK:
		var dto stateRecordDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			return nil, fmt.Errorf("failed to decode forwarding-state response: %w", err)
		}
		return dto.toDomain(targetID), nil
	case httpResp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNoNumberAssigned
	default:
		return nil, c.remoteError(ctx, httpResp, body, "fetch", targetID)
	}
}

// PatchState applies a partial update. It is never retried here or anywhere above:
// a patch is a side-effect-bearing human confirmation and may have partially applied
// server-side even when the response is an error.
func (c *Client) PatchState(ctx context.Context, targetID uuid.UUID, patch domain.StatePatch) (*domain.ForwardingStateRecord, error) {
	reqBytes, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal forwarding-state patch: %w", err)
	}

	url := fmt.Sprintf("%s/v1/forwarding-state/%s", c.baseURL, targetID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create forwarding-state patch request: %w", err)
	}
	c.setHeaders(httpReq)

	c.logger.DebugContext(ctx, "patching forwarding state",
		"target_id", targetID, "confirmation_status", patch.ConfirmationStatus)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "forwarding-state patch failed", "error", err, "target_id", targetID)
		return nil, &domain.RemoteError{Message: "forwarding-state store unreachable"}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read forwarding-state patch response: %w", err)
	}

	switch {
	case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
		var dto stateRecordDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			return nil, fmt.Errorf("failed to decode forwarding-state patch response: %w", err)
		}
		return dto.toDomain(targetID), nil
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, c.rateLimitedError(httpResp, body)
	default:
		return nil, c.remoteError(ctx, httpResp, body, "patch", targetID)
	}
}

// FetchCarrierCatalog reads the backend's copy of the carrier reference list.
func (c *Client) FetchCarrierCatalog(ctx context.Context) ([]domain.CarrierProfile, error) {
	url := fmt.Sprintf("%s/v1/carrier-catalog", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create carrier-catalog request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.RemoteError{Message: "forwarding-state store unreachable"}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read carrier-catalog response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, c.remoteError(ctx, httpResp, body, "catalog", uuid.Nil)
	}

	var profiles []domain.CarrierProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode carrier-catalog response: %w", err)
	}
	return profiles, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

// rateLimitedError surfaces the backend's throttling message verbatim, with any
// cooldown hint from the body or the Retry-After header.
func (c *Client) rateLimitedError(resp *http.Response, body []byte) *domain.RateLimitedError {
	out := &domain.RateLimitedError{Message: "too many forwarding changes; please wait before trying again"}

	var dto errorResponseDTO
	if err := json.Unmarshal(body, &dto); err == nil && dto.Message != "" {
		out.Message = dto.Message
	}
	if dto.RetryAfterSeconds > 0 {
		out.RetryAfter = time.Duration(dto.RetryAfterSeconds) * time.Second
	} else if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			out.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return out
}

func (c *Client) remoteError(ctx context.Context, resp *http.Response, body []byte, op string, targetID uuid.UUID) *domain.RemoteError {
	var dto errorResponseDTO
	_ = json.Unmarshal(body, &dto)
	c.logger.WarnContext(ctx, "forwarding-state store returned an error",
		"operation", op, "status_code", resp.StatusCode, "message", dto.Message, "target_id", targetID)
	return &domain.RemoteError{StatusCode: resp.StatusCode, Message: dto.Message}
}

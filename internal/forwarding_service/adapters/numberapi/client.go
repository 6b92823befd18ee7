// Package numberapi is the HTTP adapter for the number-assignment service, which
// owns the shared telephony-number pool. This service only asks which number, if
// any, is currently bound to a target.
package numberapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
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
		logger:     logger.With("adapter", "numberapi"),
		httpClient: httpClient,
		baseURL:    baseURL,
		authToken:  authToken,
	}
}

type assignedNumberDTO struct {
	Number string `json:"number"`
}

// FetchAssignedNumber returns the number bound to the target, or
// domain.ErrNoNumberAssigned when the pool has nothing for it (backend 404).
func (c *Client) FetchAssignedNumber(ctx context.Context, targetID uuid.UUID) (string, error) {
	url := fmt.Sprintf("%s/v1/assigned-number/%s", c.baseURL, targetID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create assigned-number request: %w", err)
	}
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "assigned-number fetch failed", "error", err, "target_id", targetID)
		return "", &domain.RemoteError{Message: "number-assignment service unreachable"}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read assigned-number response: %w", err)
	}

	switch httpResp.StatusCode {
	case http.StatusOK:
		var dto assignedNumberDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			return "", fmt.Errorf("failed to decode assigned-number response: %w", err)
		}
		if dto.Number == "" {
			return "", domain.ErrNoNumberAssigned
		}
		return dto.Number, nil
	case http.StatusNotFound:
		return "", domain.ErrNoNumberAssigned
	default:
		c.logger.WarnContext(ctx, "number-assignment service returned an error",
			"status_code", httpResp.StatusCode, "target_id", targetID)
		return "", &domain.RemoteError{StatusCode: httpResp.StatusCode}
	}
}

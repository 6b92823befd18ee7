package stateapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_FetchState_Success(t *testing.T) {
	targetID := uuid.New()
	carrier := "T-Mobile"
	number := "+15551234567"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/forwarding-state/"+targetID.String(), r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"carrier":               carrier,
			"conditional_enabled":   true,
			"unconditional_enabled": false,
			"assigned_number":       number,
			"updated_at":            time.Now().UTC(),
		})
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "test-token", server.Client())
	rec, err := client.FetchState(context.Background(), targetID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, targetID, rec.TargetID)
	require.NotNil(t, rec.Carrier)
	assert.Equal(t, carrier, *rec.Carrier)
	assert.True(t, rec.ConditionalEnabled)
	assert.False(t, rec.UnconditionalEnabled)
	require.NotNil(t, rec.AssignedNumber)
	assert.Equal(t, number, *rec.AssignedNumber)
}

func TestClient_FetchState_NotFoundMeansNoNumberAssigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "", server.Client())
	rec, err := client.FetchState(context.Background(), uuid.New())
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrNoNumberAssigned)
}

func TestClient_PatchState_SendsPatchAndDecodesRecord(t *testing.T) {
	targetID := uuid.New()
	enabled := true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, true, got["conditional_enabled"])
		assert.Equal(t, string(domain.ConfirmationConfirmed), got["confirmation_status"])
		// Untouched axis is omitted, not sent as false.
		_, present := got["unconditional_enabled"]
		assert.False(t, present)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"carrier":               "AT&T",
			"conditional_enabled":   true,
			"unconditional_enabled": false,
			"updated_at":            time.Now().UTC(),
		})
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "", server.Client())
	rec, err := client.PatchState(context.Background(), targetID, domain.StatePatch{
		ConditionalEnabled: &enabled,
		ConfirmationStatus: domain.ConfirmationConfirmed,
	})
	require.NoError(t, err)
	assert.True(t, rec.ConditionalEnabled)
}

func TestClient_PatchState_RateLimitedSurfacesVerbatimAndNeverRetries(t *testing.T) {
	requestCount := 0
	cooldownMessage := "too many forwarding toggles; wait 5 minutes before trying again"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":             cooldownMessage,
			"retry_after_seconds": 300,
		})
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "", server.Client())
	_, err := client.PatchState(context.Background(), uuid.New(), domain.StatePatch{
		ConfirmationStatus: domain.ConfirmationConfirmed,
	})
	require.Error(t, err)

	var rle *domain.RateLimitedError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, cooldownMessage, rle.Message)
	assert.Equal(t, 5*time.Minute, rle.RetryAfter)
	assert.Equal(t, 1, requestCount, "a 429 must not be retried")
}

func TestClient_PatchState_RetryAfterHeaderFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "", server.Client())
	_, err := client.PatchState(context.Background(), uuid.New(), domain.StatePatch{})

	var rle *domain.RateLimitedError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, time.Minute, rle.RetryAfter)
	assert.NotEmpty(t, rle.Message)
}

func TestClient_PatchState_ValidationErrorKeepsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "carrier must be set before toggling"})
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "", server.Client())
	_, err := client.PatchState(context.Background(), uuid.New(), domain.StatePatch{})

	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusUnprocessableEntity, remote.StatusCode)
	assert.Equal(t, "carrier must be set before toggling", remote.Message)
	assert.False(t, remote.Transient())
}

func TestClient_FetchCarrierCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/carrier-catalog", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "CarrierX", "family": "gsm", "supports_conditional": true},
			{"name": "CarrierY", "family": "app-managed", "supports_conditional": false},
		})
	}))
	defer server.Close()

	client := NewClient(testLogger(), server.URL, "", server.Client())
	profiles, err := client.FetchCarrierCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, domain.FamilyGSM, profiles[0].Family)
	assert.Equal(t, domain.FamilyAppManaged, profiles[1].Family)
}

func TestClient_FetchState_ServerDownIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(testLogger(), server.URL, "", nil)
	_, err := client.FetchState(context.Background(), uuid.New())

	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.True(t, remote.Transient())
}

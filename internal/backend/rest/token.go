package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/pkg/api"
)

// ExchangeToken меняет service key тенанта на bearer токен.
// Выполняется до создания Client: токена на этом этапе еще нет.
func ExchangeToken(ctx context.Context, baseURL, tenantID, serviceKey string) (*api.TokenResponse, error) {
	payload, err := json.Marshal(api.TokenRequest{
		ServiceKey: serviceKey,
		TenantID:   tenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		baseURL+apiPrefix+"/token", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &backend.NetworkError{Op: "token", Resource: "token", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &backend.NetworkError{Op: "token", Resource: "token", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &backend.ValidationError{Field: "service_key", Reason: "invalid service key"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &backend.NetworkError{
			Op:       "token",
			Resource: "token",
			Err:      fmt.Errorf("server error (%d): %s", resp.StatusCode, string(body)),
		}
	}

	var token api.TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

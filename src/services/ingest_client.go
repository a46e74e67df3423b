// backend/src/services/ingest_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tutum/covaex/backend/src/models"
)

// ErrIngestUnavailable wraps every transport-level failure of the
// ingestion API so handlers can map them to a single gateway error.
var ErrIngestUnavailable = errors.New("asset ingestion service unavailable")

type ingestClientImpl struct {
	baseURL    string
	userID     string
	httpClient http.Client
}

// NewIngestClient builds a client for the bulk asset registration endpoint.
func NewIngestClient(baseURL, userID string, timeout time.Duration) IngestClient {
	return &ingestClientImpl{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: http.Client{Timeout: timeout},
	}
}

// SubmitAssets POSTs the payload and decodes the per-row outcome report.
// A non-OK status is an error; per-row failures inside an OK response are
// not — they are the partial-failure result the caller must surface.
func (c *ingestClientImpl) SubmitAssets(ctx context.Context, payload models.BulkPayload) (*models.BulkResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling bulk payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/assets/bulk?user_id=%s", c.baseURL, url.QueryEscape(c.userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIngestUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrIngestUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var bulk models.BulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&bulk); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrIngestUnavailable, err)
	}

	if bulk.Failures == nil {
		bulk.Failures = []models.BulkFailure{}
	}
	if bulk.CreatedIDs == nil {
		bulk.CreatedIDs = []string{}
	}
	return &bulk, nil
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"meal-planner/internal/auth"
	"meal-planner/internal/document"
)

// ErrConflict reports that a submission was rejected because it was based on
// a stale version. The accompanying document is the rebase target.
var ErrConflict = errors.New("version conflict")

// Submitter is the remote surface the queue talks to.
type Submitter interface {
	// Fetch returns the current authoritative document.
	Fetch(ctx context.Context) (document.Document, error)
	// Push proposes doc based on baseVersion. Attempt is the zero-based retry
	// count for this operation; the server records it alongside the outcome.
	// On acceptance Push returns the persisted document. On a version conflict
	// it returns the authoritative document together with ErrConflict.
	Push(ctx context.Context, doc document.Document, baseVersion int64, attempt int) (document.Document, error)
}

// Remote talks to the sync server's /api/state endpoints.
type Remote struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// NewRemote creates a Remote for the given server.
func NewRemote(baseURL, secret string) *Remote {
	return &Remote{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type stateResponse struct {
	State   document.Document `json:"state"`
	Version int64             `json:"version"`
}

type conflictResponse struct {
	Error string            `json:"error"`
	State document.Document `json:"state"`
}

// Fetch reads the current document from the server.
func (r *Remote) Fetch(ctx context.Context) (document.Document, error) {
	req, err := r.newRequest(ctx, "GET", nil)
	if err != nil {
		return document.Document{}, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return document.Document{}, fmt.Errorf("state api error: status %d", resp.StatusCode)
	}

	var body stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return document.Document{}, fmt.Errorf("failed to decode state response: %w", err)
	}
	return body.State.Normalize(), nil
}

// Push submits a proposed document based on baseVersion.
func (r *Remote) Push(ctx context.Context, doc document.Document, baseVersion int64, attempt int) (document.Document, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"state":   doc,
		"version": baseVersion,
	})
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to marshal state: %w", err)
	}

	req, err := r.newRequest(ctx, "POST", bytes.NewReader(payload))
	if err != nil {
		return document.Document{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sync-Attempt", strconv.Itoa(attempt))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to push state: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body stateResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return document.Document{}, fmt.Errorf("failed to decode accept response: %w", err)
		}
		return body.State.Normalize(), nil
	case http.StatusConflict:
		var body conflictResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return document.Document{}, fmt.Errorf("failed to decode conflict response: %w", err)
		}
		return body.State.Normalize(), ErrConflict
	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return document.Document{}, fmt.Errorf("state api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}
}

func (r *Remote) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/api/state", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	token, err := auth.NewToken(r.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

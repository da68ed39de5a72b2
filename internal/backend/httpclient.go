package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pterm/pterm"

	"snapcourier/cli/internal/config"
	apperrors "snapcourier/cli/internal/errors"
	"snapcourier/cli/internal/logging"
)

// HTTP implements API over REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://api.snap.example")
	baseURL string
	// endpoints contains the URL paths for the auth endpoints
	endpoints config.Endpoints
	// client runs through the session pipeline
	client *http.Client
	// plain bypasses the pipeline; used for token renewal only
	plain *http.Client
	log   *pterm.Logger
}

var _ API = (*HTTP)(nil)

// GetVersion calls GET /api/version and returns the version string when available.
// No authentication required. This can be used to check connectivity to the backend service.
func (h *HTTP) GetVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+h.endpoints.Version, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.plain.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "unknown", nil
	}
	var out struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Version == "" {
		return "unknown", nil
	}
	return out.Version, nil
}

// Do performs an authenticated request through the pipeline.
func (h *HTTP) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	setStandardHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.client.Do(req)
}

// postJSON encodes payload and posts it with c.
func (h *HTTP) postJSON(ctx context.Context, c *http.Client, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// setStandardHeaders applies the headers every backend call carries.
func setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "snapcourier-cli/1.0")
}

// statusError converts a non-success response into a typed error. The body
// is masked before it lands in the message.
func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := fmt.Sprintf("%s failed: %d %s", op, resp.StatusCode, logging.Mask(strings.TrimSpace(string(b))))
	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.WithStatus(apperrors.Unauthorized, resp.StatusCode, msg)
	}
	return apperrors.WithStatus(apperrors.BadStatus, resp.StatusCode, msg)
}

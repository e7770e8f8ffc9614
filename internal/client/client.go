// Package client calls a running Unpack API over HTTP. The CLI and the
// extension flows both use it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/unpackhq/unpack/internal/core"
)

const (
	DefaultURL     = "http://localhost:3000"
	defaultTimeout = 90 * time.Second
	maxErrorBody   = 64 * 1024
)

// APIError is a non-2xx answer from the API. Message is the body's "error"
// field when one was sent.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unpack api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("unpack api: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the /simplify endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New returns a client for baseURL, defaulting to DefaultURL.
func New(baseURL string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = DefaultURL
	}
	return &Client{BaseURL: url, Timeout: defaultTimeout}
}

// Simplify posts text and returns the decoded success body.
func (c *Client) Simplify(ctx context.Context, text string) (*core.SimplifyResponse, error) {
	return c.SimplifyWith(ctx, core.SimplifyRequest{Text: text})
}

// SimplifyWith posts a full request, including an optional provider.
func (c *Client) SimplifyWith(ctx context.Context, req core.SimplifyRequest) (*core.SimplifyResponse, error) {
	if c == nil {
		return nil, errors.New("unpack client not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/simplify"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp)
	}

	var out core.SimplifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body struct {
		Error     string `json:"error"`
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		apiErr.RequestID = body.RequestID
	}
	return apiErr
}

// ErrorMessage returns the API's message for err, or "" when err is not an
// *APIError or carries none.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/core"
)

func TestSimplifySendsContract(t *testing.T) {
	var got core.SimplifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/simplify", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"simplified":"Easy words.","originalLength":20,"simplifiedLength":11,"provider":"anthropic"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	resp, err := c.Simplify(context.Background(), "Difficult vocabulary.")
	require.NoError(t, err)

	assert.Equal(t, "Difficult vocabulary.", got.Text)
	assert.Empty(t, got.Provider)
	assert.Equal(t, "Easy words.", resp.Simplified)
	assert.Equal(t, 20, resp.OriginalLength)
	assert.Equal(t, 11, resp.SimplifiedLength)
	assert.Equal(t, "anthropic", resp.Provider)
}

func TestSimplifyWithProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini", req["provider"])
		_, _ = w.Write([]byte(`{"simplified":"ok","provider":"gemini"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).SimplifyWith(context.Background(), core.SimplifyRequest{Text: "x", Provider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
}

func TestSimplifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Too many requests. Please wait a minute.","code":"RATE_LIMITED","request_id":"r-1"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Simplify(context.Background(), "some text here")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "RATE_LIMITED", apiErr.Code)
	assert.Equal(t, "r-1", apiErr.RequestID)
	assert.Equal(t, "Too many requests. Please wait a minute.", ErrorMessage(err))
}

func TestSimplifyAPIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Simplify(context.Background(), "some text here")
	require.Error(t, err)
	assert.Empty(t, ErrorMessage(err))
	assert.Contains(t, err.Error(), "502")
}

func TestSimplifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Timeout = 20 * time.Millisecond
	_, err := c.Simplify(context.Background(), "some text here")
	require.Error(t, err)
	assert.Empty(t, ErrorMessage(err))
}

func TestNewDefaultsURL(t *testing.T) {
	assert.Equal(t, DefaultURL, New("  ").BaseURL)
}

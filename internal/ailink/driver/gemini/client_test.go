package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/ailink/driver"
)

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "  ")
	_, err := client.Complete(context.Background(), &driver.Request{
		Model:    "gemini-test",
		Messages: []driver.Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	assert.Equal(t, defaultBaseURL, NewClient("", "k").BaseURL)
	assert.Equal(t, "http://local", NewClient(" http://local ", "k").BaseURL)
}

func TestClientSendsGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		require.Empty(t, r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload generateRequest
		require.NoError(t, json.Unmarshal(body, &payload))
		require.NotNil(t, payload.SystemInstruction)
		require.Equal(t, "be plain", payload.SystemInstruction.Parts[0].Text)
		require.Len(t, payload.Contents, 1)
		require.Equal(t, "user", payload.Contents[0].Role)
		require.Equal(t, "Simplify this text:\n\nhello", payload.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "We used "}, {"text": "it well."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 20, "candidatesTokenCount": 4, "totalTokenCount": 24}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	resp, err := client.Complete(context.Background(), &driver.Request{
		Model:    "gemini-test",
		System:   "be plain",
		Messages: []driver.Message{{Role: "user", Content: "Simplify this text:\n\nhello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "We used it well.", resp.Text)
	assert.Equal(t, "STOP", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 24, resp.Usage.TotalTokens)
}

func TestClientMapsRateLimitToProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	_, err := client.Complete(context.Background(), &driver.Request{
		Model:    "gemini-test",
		Messages: []driver.Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	assert.True(t, driver.IsRateLimited(err))

	var perr *driver.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "RESOURCE_EXHAUSTED: quota exceeded", perr.Message)
}

func TestClientRejectsEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	_, err := client.Complete(context.Background(), &driver.Request{
		Model:    "gemini-test",
		Messages: []driver.Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty response")
}

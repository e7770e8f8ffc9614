package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/core"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func sampleReport() *SimplifyReport {
	return NewSimplifyReport("The utilization of the mechanism.", &core.SimplifyResponse{
		Simplified:       "We used the tool.",
		OriginalLength:   33,
		SimplifiedLength: 17,
		Provider:         "anthropic",
	}, "local", 1500*time.Millisecond)
}

func TestFormatSimplify(t *testing.T) {
	report := sampleReport()

	rendered, err := NewFormatter(FormatTable).FormatSimplify(report)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "We used the tool."))
	require.Contains(t, rendered, "anthropic")
	require.Contains(t, rendered, "33 → 17 chars")

	rendered, err = NewFormatter(FormatJSON).FormatSimplify(report)
	require.NoError(t, err)
	require.Contains(t, rendered, `"simplified": "We used the tool."`)
	require.Contains(t, rendered, `"originalLength": 33`)
	require.Contains(t, rendered, `"duration_ms": 1500`)

	report.Cached = true
	rendered, err = NewFormatter(FormatMarkdown).FormatSimplify(report)
	require.NoError(t, err)
	require.Contains(t, rendered, "## Simplified")
	require.Contains(t, rendered, "local (cached)")
}

func TestFormatVerify(t *testing.T) {
	results := []VerifyResult{
		{Label: "default", Provider: "anthropic", OK: true, Output: "The tool worked well."},
		{Label: "gemini", Provider: "gemini", OK: false, Error: "api key is required"},
	}

	rendered, err := NewFormatter(FormatTable).FormatVerify(results)
	require.NoError(t, err)
	require.Contains(t, rendered, "1/2 ok")
	require.Contains(t, rendered, "api key is required")

	rendered, err = NewFormatter(FormatMarkdown).FormatVerify(results)
	require.NoError(t, err)
	require.Contains(t, rendered, "| gemini | gemini | failed | api key is required |")

	rendered, err = NewFormatter(FormatJSON).FormatVerify(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", rendered)
}

func TestFormatCache(t *testing.T) {
	created := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	entries := []core.CachedSimplification{{
		Key:        "0123456789abcdef0123",
		Provider:   "gemini",
		Model:      "gemini-3.0-pro",
		Simplified: "A | pipe and a rather long sentence that will need to be cut short somewhere.",
		CreatedAt:  created,
		ExpiresAt:  created.Add(24 * time.Hour),
	}}

	rendered, err := NewFormatter(FormatTable).FormatCache(entries)
	require.NoError(t, err)
	require.Contains(t, rendered, "0123456789ab")
	require.NotContains(t, rendered, "0123456789abcdef0123")
	require.Contains(t, rendered, "1 entries")

	rendered, err = NewFormatter(FormatMarkdown).FormatCache(entries)
	require.NoError(t, err)
	require.Contains(t, rendered, `A \| pipe`)
	require.Contains(t, rendered, "2026-03-16T12:00:00Z")
}

func TestPreview(t *testing.T) {
	require.Equal(t, "a b c", preview("a\n b\t c", 10))
	require.Equal(t, "abcd…", preview("abcdefgh", 5))
}

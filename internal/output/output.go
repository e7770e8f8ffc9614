package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/unpackhq/unpack/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// SimplifyReport is one simplification as the CLI prints it.
type SimplifyReport struct {
	Original         string        `json:"original"`
	Simplified       string        `json:"simplified"`
	OriginalLength   int           `json:"originalLength"`
	SimplifiedLength int           `json:"simplifiedLength"`
	Provider         string        `json:"provider,omitempty"`
	Model            string        `json:"model,omitempty"`
	Source           string        `json:"source"`
	Cached           bool          `json:"cached,omitempty"`
	Duration         time.Duration `json:"-"`
	DurationMs       int64         `json:"duration_ms"`
}

// NewSimplifyReport builds a report from the wire response. source is
// "api" or "local".
func NewSimplifyReport(original string, resp *core.SimplifyResponse, source string, took time.Duration) *SimplifyReport {
	report := &SimplifyReport{
		Original:   original,
		Source:     source,
		Duration:   took,
		DurationMs: took.Milliseconds(),
	}
	if resp != nil {
		report.Simplified = resp.Simplified
		report.OriginalLength = resp.OriginalLength
		report.SimplifiedLength = resp.SimplifiedLength
		report.Provider = resp.Provider
	}
	return report
}

// VerifyResult is one provider check from `unpack verify`.
type VerifyResult struct {
	Label      string `json:"label"`
	Provider   string `json:"provider"`
	Model      string `json:"model,omitempty"`
	OK         bool   `json:"ok"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Formatter renders CLI results.
type Formatter interface {
	FormatSimplify(report *SimplifyReport) (string, error)
	FormatVerify(results []VerifyResult) (string, error)
	FormatCache(entries []core.CachedSimplification) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// preview shortens s to max runes on one line for table cells.
func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func verifyStatus(r VerifyResult) string {
	if r.OK {
		return "ok"
	}
	return "failed"
}

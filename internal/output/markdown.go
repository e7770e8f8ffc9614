package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/unpackhq/unpack/internal/core"
)

// MarkdownFormatter renders results as Markdown.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) FormatSimplify(report *SimplifyReport) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Simplified\n\n")
	sb.WriteString(strings.TrimSpace(report.Simplified))
	sb.WriteString("\n\n<details><summary>Original</summary>\n\n")
	sb.WriteString(strings.TrimSpace(report.Original))
	sb.WriteString("\n\n</details>\n\n")
	sb.WriteString(fmt.Sprintf("**Provider**: %s · **Source**: %s · **Length**: %d → %d\n",
		escapeMarkdownCell(dash(report.Provider)),
		escapeMarkdownCell(sourceLabel(report)),
		report.OriginalLength, report.SimplifiedLength))
	return sb.String(), nil
}

func (f *MarkdownFormatter) FormatVerify(results []VerifyResult) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Provider verification\n\n")
	sb.WriteString("| Check | Provider | Status | Output |\n")
	sb.WriteString("|-------|----------|--------|--------|\n")
	for _, r := range results {
		detail := r.Output
		if !r.OK {
			detail = r.Error
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(r.Label),
			escapeMarkdownCell(r.Provider),
			verifyStatus(r),
			escapeMarkdownCell(preview(detail, 0)),
		))
	}
	return sb.String(), nil
}

func (f *MarkdownFormatter) FormatCache(entries []core.CachedSimplification) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Key | Provider | Model | Expires | Simplified |\n")
	sb.WriteString("|-----|----------|-------|---------|------------|\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			shortKey(e.Key),
			escapeMarkdownCell(e.Provider),
			escapeMarkdownCell(e.Model),
			e.ExpiresAt.Format(time.RFC3339),
			escapeMarkdownCell(preview(e.Simplified, cachePreviewSize)),
		))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}

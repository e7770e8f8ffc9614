package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/unpackhq/unpack/internal/core"
)

const (
	textColumnWidth  = 72
	cachePreviewSize = 48
)

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatSimplify prints the simplified text followed by a details table.
func (f *TableFormatter) FormatSimplify(report *SimplifyReport) (string, error) {
	if report == nil {
		return "", nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Provider", dash(report.Provider)})
	if report.Model != "" {
		t.AppendRow(table.Row{"Model", report.Model})
	}
	t.AppendRow(table.Row{"Source", sourceLabel(report)})
	t.AppendRow(table.Row{"Length", fmt.Sprintf("%d → %d chars", report.OriginalLength, report.SimplifiedLength)})
	t.AppendRow(table.Row{"Took", report.Duration.Round(time.Millisecond).String()})

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(report.Simplified))
	sb.WriteString("\n\n")
	sb.WriteString(t.Render())
	return sb.String(), nil
}

func (f *TableFormatter) FormatVerify(results []VerifyResult) (string, error) {
	t := newTable()
	t.AppendHeader(table.Row{"Check", "Provider", "Status", "Output"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: textColumnWidth}})

	passed := 0
	for _, r := range results {
		detail := r.Output
		if !r.OK {
			detail = r.Error
		} else {
			passed++
		}
		t.AppendRow(table.Row{r.Label, r.Provider, verifyStatus(r), strings.TrimSpace(detail)})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d/%d ok", passed, len(results)), ""})
	return t.Render(), nil
}

func (f *TableFormatter) FormatCache(entries []core.CachedSimplification) (string, error) {
	t := newTable()
	t.AppendHeader(table.Row{"Key", "Provider", "Model", "Created", "Expires", "Simplified"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			shortKey(e.Key),
			e.Provider,
			e.Model,
			e.CreatedAt.Format(time.RFC3339),
			e.ExpiresAt.Format(time.RFC3339),
			preview(e.Simplified, cachePreviewSize),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("%d entries", len(entries))})
	return t.Render(), nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	// Footers carry counts like "1/2 ok"; keep their case.
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func sourceLabel(report *SimplifyReport) string {
	if report.Cached {
		return report.Source + " (cached)"
	}
	return report.Source
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

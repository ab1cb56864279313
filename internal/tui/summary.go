package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
)

// RenderSummary formats a batch result for the terminal: one line per file
// and a totals footer.
func RenderSummary(r *lipgloss.Renderer, s *pipeline.Summary) string {
	st := NewStyles(r)

	var b strings.Builder
	b.WriteString(st.Header.Render("Batch summary"))
	b.WriteString(" ")
	b.WriteString(st.Subtle.Render(s.RunID))
	b.WriteString("\n\n")

	for _, f := range s.Files {
		b.WriteString(renderFile(st, f))
		b.WriteString("\n")
	}

	for _, err := range s.Cleanup {
		b.WriteString(st.Warning.Render("! workspace: " + err.Error()))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%d ok, %d partial, %d failed in %s",
		s.Count(pipeline.StatusOK),
		s.Count(pipeline.StatusPartial),
		s.Count(pipeline.StatusFailed),
		s.Elapsed.Round(time.Millisecond))
	b.WriteString("\n")
	b.WriteString(st.Box.Render(footer))
	b.WriteString("\n")
	return b.String()
}

func renderFile(st Styles, f pipeline.FileResult) string {
	name := filepath.Base(f.Path)

	switch f.Status() {
	case pipeline.StatusOK:
		return fmt.Sprintf("%s %s %s",
			st.Success.Render("✓"),
			st.Label.Render(name),
			st.Muted.Render(fmt.Sprintf("%s, %s → %s", f.Decision, segmentsLabel(f.Segments), f.Output)))

	case pipeline.StatusPartial:
		gaps := make([]string, len(f.Gaps))
		for i, g := range f.Gaps {
			gaps[i] = fmt.Sprint(g + 1)
		}
		line := fmt.Sprintf("%s %s %s",
			st.Warning.Render("◐"),
			st.Label.Render(name),
			st.Muted.Render(fmt.Sprintf("%s, missing %s → %s", segmentsLabel(f.Segments), strings.Join(gaps, ", "), f.Output)))
		for _, issue := range f.Issues {
			line += "\n    " + st.Subtle.Render(fmt.Sprintf("segment %d: %v", issue.Index+1, issue.Err))
		}
		return line

	default:
		return fmt.Sprintf("%s %s %s",
			st.Error.Render("✗"),
			st.Label.Render(name),
			st.Muted.Render(fmt.Sprintf("failed: %v", f.Err)))
	}
}

func segmentsLabel(n int) string {
	if n == 1 {
		return "1 segment"
	}
	return fmt.Sprintf("%d segments", n)
}

package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	version string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithVersion includes the tool version in the report footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders the summary.
func (f *MarkdownFormatter) Format(summary *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# compression-suite %s\n\n", summary.Command)
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05"))

	if summary.Source.Path != "" {
		b.WriteString("## Source\n\n")
		fmt.Fprintf(&b, "- File: %s\n", summary.Source.Path)
		fmt.Fprintf(&b, "- Resolution: %dx%d\n", summary.Source.Width, summary.Source.Height)
		fmt.Fprintf(&b, "- Frame rate: %g fps\n", summary.Source.FPS)
		fmt.Fprintf(&b, "- Duration: %.2fs\n\n", summary.Source.Duration)
	}

	if summary.Dedup.FramesProcessed > 0 {
		b.WriteString("## Deduplication\n\n")
		fmt.Fprintf(&b, "- Frames processed: %d\n", summary.Dedup.FramesProcessed)
		fmt.Fprintf(&b, "- Frame changes: %d\n", summary.Dedup.FrameChanges)
		fmt.Fprintf(&b, "- Unique images: %d\n", summary.Dedup.UniqueImages)
		fmt.Fprintf(&b, "- Hash threshold: %d\n", summary.Dedup.Threshold)
		if summary.Dedup.UniqueImages > 0 {
			ratio := float64(summary.Dedup.FramesProcessed) / float64(summary.Dedup.UniqueImages)
			fmt.Fprintf(&b, "- Reduction: %.1fx\n", ratio)
		}
		b.WriteString("\n")
	}

	if summary.Output.Path != "" {
		b.WriteString("## Output\n\n")
		fmt.Fprintf(&b, "- File: %s\n", summary.Output.Path)
		if summary.Output.Duration > 0 {
			fmt.Fprintf(&b, "- Duration: %.2fs\n", summary.Output.Duration)
		}
		if summary.Output.Bytes > 0 {
			fmt.Fprintf(&b, "- Size: %s\n", formatBytes(summary.Output.Bytes))
		}
		b.WriteString("\n")
	}

	if f.version != "" {
		fmt.Fprintf(&b, "---\ncompression-suite %s\n", f.version)
	}
	return b.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Ensure MarkdownFormatter implements Formatter
var _ Formatter = (*MarkdownFormatter)(nil)

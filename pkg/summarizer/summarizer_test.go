package summarizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSummary() *Summary {
	return NewBuilder("extract").
		WithSource(SourceInfo{Path: "talk.mp4", Width: 1920, Height: 1080, FPS: 30, Duration: 600}).
		WithDedup(DedupInfo{FramesProcessed: 1200, FrameChanges: 48, UniqueImages: 40, Threshold: 5}).
		WithOutput(OutputInfo{Path: "frames/", Bytes: 2 << 20}).
		Build()
}

func TestBuilder(t *testing.T) {
	s := testSummary()

	if s.Command != "extract" {
		t.Errorf("Command = %s", s.Command)
	}
	if s.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not stamped")
	}
	if s.Source.Width != 1920 || s.Dedup.UniqueImages != 40 {
		t.Errorf("builder lost fields: %+v", s)
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	out := NewMarkdownFormatter().Format(testSummary())

	for _, want := range []string{
		"# compression-suite extract",
		"- Resolution: 1920x1080",
		"- Frames processed: 1200",
		"- Unique images: 40",
		"- Reduction: 30.0x",
		"- Size: 2.0 MiB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	out := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(testSummary())
	if !strings.Contains(out, "compression-suite v1.2.0") {
		t.Errorf("missing version footer:\n%s", out)
	}
}

func TestMarkdownFormatter_SkipsEmptySections(t *testing.T) {
	out := NewMarkdownFormatter().Format(NewBuilder("reassemble").Build())
	if strings.Contains(out, "## Source") || strings.Contains(out, "## Deduplication") {
		t.Errorf("empty sections rendered:\n%s", out)
	}
}

func TestWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summary.md")

	if err := NewWriter(NewMarkdownFormatter()).Write(path, testSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(data), "# compression-suite extract") {
		t.Errorf("unexpected content:\n%s", data)
	}
}

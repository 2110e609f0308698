package timeline

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validModel() Model {
	return New(
		[]Entry{
			{Timestamp: 0, Hash: "00000000000000aa", ImageIndex: 0},
			{Timestamp: 1.5, Hash: "00000000000000bb", ImageIndex: 1},
			{Timestamp: 3.25, Hash: "00000000000000aa", ImageIndex: 0},
		},
		2,
		FormatPNG,
		VideoInfo{Width: 640, Height: 480, FPS: 25, Duration: 10},
	)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	m := validModel()

	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Interchange field names are part of the contract.
	for _, field := range []string{
		`"version"`, `"frame_changes_count"`, `"unique_images_count"`,
		`"timestamps"`, `"image_index"`, `"format"`, `"video_info"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("serialized metadata missing %s", field)
		}
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.FrameChangesCount != 3 || got.UniqueImagesCount != 2 {
		t.Errorf("counts = (%d, %d), want (3, 2)", got.FrameChangesCount, got.UniqueImagesCount)
	}
	if got.Format != FormatPNG {
		t.Errorf("format = %q, want png", got.Format)
	}
	if got.VideoInfo.FPS != 25 {
		t.Errorf("fps = %g, want 25", got.VideoInfo.FPS)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
	}{
		{"unsupported version", func(m *Model) { m.Version = "9.9" }},
		{"unknown format", func(m *Model) { m.Format = "gif" }},
		{"count mismatch", func(m *Model) { m.FrameChangesCount = 7 }},
		{"image index out of range", func(m *Model) { m.Timestamps[1].ImageIndex = 2 }},
		{"negative image index", func(m *Model) { m.Timestamps[0].ImageIndex = -1 }},
		{"decreasing timestamps", func(m *Model) { m.Timestamps[2].Timestamp = 0.5 }},
		{"bad hash", func(m *Model) { m.Timestamps[0].Hash = "nope" }},
		{"unreferenced image", func(m *Model) { m.UniqueImagesCount = 3 }},
		{"bad video info", func(m *Model) { m.VideoInfo.Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(&m)
			err := m.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v should wrap ErrInvalid", err)
			}
		})
	}
}

func TestUniqueHashes(t *testing.T) {
	m := validModel()

	hashes, err := m.UniqueHashes()
	if err != nil {
		t.Fatalf("UniqueHashes: %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("got %d hashes, want 2", len(hashes))
	}
	if hashes[0].String() != "00000000000000aa" || hashes[1].String() != "00000000000000bb" {
		t.Errorf("hashes = [%s %s], wrong order", hashes[0], hashes[1])
	}
}

func TestDurations(t *testing.T) {
	entries := []Entry{
		{Timestamp: 0},
		{Timestamp: 2.5},
		{Timestamp: 4.0},
	}

	// Known total duration: last entry runs to the end of the video.
	d := Durations(entries, 10.0, 25)
	want := []float64{2.5, 1.5, 6.0}
	for i := range want {
		if math.Abs(d[i]-want[i]) > 1e-9 {
			t.Errorf("duration[%d] = %g, want %g", i, d[i], want[i])
		}
	}

	// VFR property: durations sum to the video duration.
	var sum float64
	for _, v := range d {
		sum += v
	}
	if math.Abs(sum-10.0) > 1e-3 {
		t.Errorf("durations sum to %g, want 10.0", sum)
	}
}

func TestDurationsFallbackAndClamp(t *testing.T) {
	entries := []Entry{
		{Timestamp: 1.0},
		{Timestamp: 1.0}, // zero gap, must clamp to one frame
	}

	d := Durations(entries, 0, 25)
	if d[0] != 1.0/25 {
		t.Errorf("clamped duration = %g, want %g", d[0], 1.0/25)
	}
	if d[1] != FallbackLastDuration {
		t.Errorf("fallback duration = %g, want %g", d[1], FallbackLastDuration)
	}

	if Durations(nil, 10, 25) != nil {
		t.Error("no entries should yield nil durations")
	}
}

func TestRepeatCounts(t *testing.T) {
	tests := []struct {
		duration float64
		fps      float64
		want     int
	}{
		{3.0, 25, 75}, // exact per the CFR scenario
		{0.02, 25, 1}, // rounds to zero, clamps to one frame
		{0.1, 30, 3},
		{1.0, 30, 30},
	}

	for _, tt := range tests {
		got := RepeatCounts([]float64{tt.duration}, tt.fps)
		if got[0] != tt.want {
			t.Errorf("RepeatCounts(%g @ %g fps) = %d, want %d", tt.duration, tt.fps, got[0], tt.want)
		}
	}
}

func TestRepeatCountsApproximateTotalDuration(t *testing.T) {
	entries := []Entry{{Timestamp: 0}, {Timestamp: 1.97}, {Timestamp: 4.02}}
	fps := 25.0
	total := 9.5

	durations := Durations(entries, total, fps)
	counts := RepeatCounts(durations, fps)

	var rebuilt float64
	for _, c := range counts {
		rebuilt += float64(c) / fps
	}
	if math.Abs(rebuilt-total) > float64(len(entries))*(1.0/fps) {
		t.Errorf("CFR total %g deviates from %g by more than %d frames", rebuilt, total, len(entries))
	}
}

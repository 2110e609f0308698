package mp4inspect

import (
	"bytes"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildInit creates an in-memory MP4 init segment with the given tracks.
func buildInit(t *testing.T, video bool, audioCodec string) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	if video {
		init.AddEmptyTrack(90000, "video", "en")
	}
	if audioCodec != "" {
		init.AddEmptyTrack(48000, "audio", "en")
		trak := init.Moov.Traks[len(init.Moov.Traks)-1]
		entry := mp4.CreateAudioSampleEntryBox(audioCodec, 2, 16, 48000, nil)
		trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	}

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		t.Fatalf("encode init segment: %v", err)
	}
	return buf.Bytes()
}

func TestInspectReader_VideoOnly(t *testing.T) {
	data := buildInit(t, true, "")

	info, err := InspectReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("InspectReader failed: %v", err)
	}
	if !info.HasVideo {
		t.Error("expected HasVideo")
	}
	if info.HasAudio {
		t.Error("expected no audio track")
	}
	if info.CanCopyAudio() {
		t.Error("CanCopyAudio should be false without an audio track")
	}
}

func TestInspectReader_VideoAndAAC(t *testing.T) {
	data := buildInit(t, true, "mp4a")

	info, err := InspectReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("InspectReader failed: %v", err)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("expected video and audio, got %+v", info)
	}
	if info.AudioCodec != "mp4a" {
		t.Errorf("AudioCodec = %q, want mp4a", info.AudioCodec)
	}
	if !info.CanCopyAudio() {
		t.Error("AAC audio should be copy safe")
	}
}

func TestInspectReader_NotMP4(t *testing.T) {
	_, err := InspectReader(bytes.NewReader([]byte("not an mp4 file at all")))
	if err == nil {
		t.Error("expected error for non-MP4 data")
	}
}

func TestInspectFile_Missing(t *testing.T) {
	_, err := InspectFile("/nonexistent/video.mp4")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCanCopyAudio(t *testing.T) {
	tests := []struct {
		codec string
		want  bool
	}{
		{"mp4a", true},
		{"Opus", true},
		{"ac-3", true},
		{"ec-3", true},
		{"alac", false},
		{"", false},
	}

	for _, tt := range tests {
		info := Info{HasAudio: true, AudioCodec: tt.codec}
		if got := info.CanCopyAudio(); got != tt.want {
			t.Errorf("CanCopyAudio(%q) = %v, want %v", tt.codec, got, tt.want)
		}
	}
}

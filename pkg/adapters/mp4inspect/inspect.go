// Package mp4inspect reads MP4 containers to verify reconstructed
// output files and to check whether an audio stream can be copied into
// an MP4 mux without re-encoding.
package mp4inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Info summarizes the tracks of an MP4 container.
type Info struct {
	HasVideo   bool
	HasAudio   bool
	AudioCodec string  // sample entry type of the first audio track, e.g. mp4a
	Duration   float64 // movie duration in seconds, 0 when unknown
}

// copySafeAudio lists sample entry types that MP4 muxing accepts as a
// plain stream copy.
var copySafeAudio = map[string]bool{
	"mp4a": true, // AAC
	"Opus": true,
	"ac-3": true,
	"ec-3": true,
}

// CanCopyAudio reports whether the audio stream can be muxed into an
// MP4 output without re-encoding.
func (i Info) CanCopyAudio() bool {
	return i.HasAudio && copySafeAudio[i.AudioCodec]
}

// InspectFile parses the MP4 file at path.
func InspectFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := InspectReader(f)
	if err != nil {
		return Info{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	return info, nil
}

// InspectReader parses an MP4 container from an io.ReadSeeker.
func InspectReader(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return Info{}, fmt.Errorf("no moov box")
	}

	var info Info
	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		info.Duration = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			info.HasVideo = true
		case "soun":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = audioSampleEntry(trak)
			}
		}
	}
	return info, nil
}

func audioSampleEntry(trak *mp4.TrakBox) string {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ""
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		return child.Type()
	}
	return ""
}

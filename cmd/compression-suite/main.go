// Package main provides the CLI entry point for compression-suite.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/Schrubitteflau/compression-suite/pkg/adapters/ffmpegassembler"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/ffmpegdecoder"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/ffprober"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/filesink"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/logger"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/nullsink"
	"github.com/Schrubitteflau/compression-suite/pkg/adapters/osfilesystem"
	"github.com/Schrubitteflau/compression-suite/pkg/config"
	"github.com/Schrubitteflau/compression-suite/pkg/orchestrator"
	"github.com/Schrubitteflau/compression-suite/pkg/pipeline"
	"github.com/Schrubitteflau/compression-suite/pkg/ports"
	"github.com/Schrubitteflau/compression-suite/pkg/stages/extract"
	"github.com/Schrubitteflau/compression-suite/pkg/stages/optimize"
	"github.com/Schrubitteflau/compression-suite/pkg/stages/reassemble"
	"github.com/Schrubitteflau/compression-suite/pkg/summarizer"
	"github.com/Schrubitteflau/compression-suite/pkg/timeline"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Extract    ExtractCmd    `cmd:"" help:"Extract unique frames and a change timeline from a video."`
	Reassemble ReassembleCmd `cmd:"" help:"Rebuild a video from an extracted timeline folder."`
	Optimize   OptimizeCmd   `cmd:"" help:"Re-encode a slide recording in one pass."`
	Version    VersionCmd    `cmd:"" help:"Show version information."`
}

// commonFlags are shared by all processing subcommands.
type commonFlags struct {
	Config string `type:"path" help:"YAML configuration file."`
	FFmpeg string `help:"Path to the ffmpeg executable."`

	Debug    bool   `short:"d" help:"Enable debug output."`
	DebugDir string `default:"./debug" help:"Directory for debug output."`

	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`

	Summary string `type:"path" help:"Write a Markdown run summary to this path."`
}

// writeSummary saves the run report when --summary is given.
func (c *commonFlags) writeSummary(log ports.Logger, summary *summarizer.Summary) {
	if c.Summary == "" {
		return
	}
	writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(summarizer.WithVersion(version)))
	if err := writer.Write(c.Summary, summary); err != nil {
		log.Warn(l10n.F("Failed to write summary: %s", err))
		return
	}
	log.Info(l10n.F("Summary written to %s", c.Summary))
}

// outputBytes returns the size of the produced file, 0 when unknown.
func outputBytes(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// ExtractCmd defines the extract subcommand.
type ExtractCmd struct {
	Video  string `arg:"" help:"Input video file."`
	Output string `short:"o" required:"" help:"Output folder for unique frames and metadata."`

	Threshold    *int    `short:"t" help:"Hash distance threshold (default: 5)."`
	Format       *string `short:"f" help:"Image storage format: webp or png (default: webp)."`
	NoMPDecimate bool    `help:"Disable the decoder-side duplicate-dropping pre-filter."`
	Overwrite    bool    `help:"Allow a non-empty output folder."`

	commonFlags
}

// ReassembleCmd defines the reassemble subcommand.
type ReassembleCmd struct {
	Frames string `arg:"" help:"Extracted frames folder (with metadata.json)."`
	Output string `short:"o" required:"" help:"Output MP4 file path."`

	Mode   *string  `short:"m" help:"Reconstruction mode: vfr or cfr (default: vfr)."`
	FPS    *float64 `help:"Target frame rate for cfr mode (default: source fps)."`
	Codec  *string  `help:"Video codec (default: libx264)."`
	CRF    *int     `help:"Encoder CRF (default: 23)."`
	Preset *string  `help:"Encoder preset (default: medium)."`
	Audio  string   `help:"Optional audio file to mux into the output."`

	commonFlags
}

// OptimizeCmd defines the optimize subcommand.
type OptimizeCmd struct {
	Video  string `arg:"" help:"Input slide-recording video file."`
	Output string `short:"o" required:"" help:"Output MP4 file path."`

	Threshold    *int    `short:"t" help:"Hash distance threshold (default: 5)."`
	MPDecimate   bool    `help:"Enable the decoder-side duplicate-dropping pre-filter."`
	Codec        *string `help:"Video codec (default: libx264)."`
	CRF          *int    `help:"Encoder CRF (default: 23)."`
	Preset       *string `help:"Encoder preset (default: medium)."`
	AudioCodec   *string `help:"Audio codec (default: stream copy when safe)."`
	AudioBitrate *string `help:"Audio bitrate, e.g. 128k."`

	commonFlags
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("compression-suite"),
		kong.Description("Deduplicate near-static recordings into unique images and rebuild them with exact timing."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	ctx.FatalIfErrorf(err)
}

// interruptErr maps a failure that happened after the run context was
// canceled to the canceled sentinel. A killed ffmpeg surfaces
// "signal: killed" from Wait, which does not wrap context.Canceled on
// its own, and an interrupt must exit with its own code.
func interruptErr(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return context.Canceled
	}
	return err
}

// loadConfig loads the optional config file and returns defaults
// otherwise.
func (c *commonFlags) loadConfig() (config.Config, error) {
	if c.Config == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.LoadFromFile(c.Config)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *commonFlags) newLogger() ports.Logger {
	if c.Quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.LogLevel))
}

// setup builds the shared adapter set and the orchestrator.
func (c *commonFlags) setup(log ports.Logger) (*orchestrator.Orchestrator, context.Context, context.CancelFunc, error) {
	fs := osfilesystem.New()

	var sink ports.DebugSink
	if c.Debug {
		sink = filesink.New(c.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	prober := ffprober.New("")
	decoder := ffmpegdecoder.New(c.FFmpeg, log)
	assembler := ffmpegassembler.New(c.FFmpeg, log)

	orch := orchestrator.New(
		extract.NewStage(prober, decoder, assembler, fs, sink, log),
		reassemble.NewStage(decoder, assembler, fs, sink, log),
		optimize.NewStage(prober, decoder, assembler, sink, log),
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	return orch, ctx, cancel, nil
}

// Run executes the extract command.
func (cmd *ExtractCmd) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	log := cmd.newLogger()
	orch, ctx, cancel, err := cmd.setup(log)
	if err != nil {
		return err
	}
	defer cancel()

	input := pipeline.DefaultExtractInput()
	input.VideoPath = cmd.Video
	input.OutputDir = cmd.Output
	input.Threshold = cfg.Threshold
	input.MPDecimate = cfg.MPDecimate && !cmd.NoMPDecimate
	input.Overwrite = cmd.Overwrite

	format := cfg.Format
	if cmd.Format != nil {
		format = *cmd.Format
	}
	switch format {
	case "webp":
		input.Format = timeline.FormatWebP
	case "png":
		input.Format = timeline.FormatPNG
	default:
		return fmt.Errorf("unknown format %q (webp or png)", format)
	}
	if cmd.Threshold != nil {
		input.Threshold = *cmd.Threshold
	}

	result, err := orch.RunExtract(ctx, input)
	if err != nil {
		return interruptErr(ctx, err)
	}

	cmd.writeSummary(log, summarizer.NewBuilder("extract").
		WithSource(summarizer.SourceInfo{
			Path:     cmd.Video,
			Width:    result.Model.VideoInfo.Width,
			Height:   result.Model.VideoInfo.Height,
			FPS:      result.Model.VideoInfo.FPS,
			Duration: result.Model.VideoInfo.Duration,
		}).
		WithDedup(summarizer.DedupInfo{
			FramesProcessed: result.FramesProcessed,
			FrameChanges:    result.Model.FrameChangesCount,
			UniqueImages:    result.Model.UniqueImagesCount,
			Threshold:       input.Threshold,
		}).
		WithOutput(summarizer.OutputInfo{Path: result.OutputDir}).
		Build())
	return nil
}

// Run executes the reassemble command.
func (cmd *ReassembleCmd) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	log := cmd.newLogger()
	orch, ctx, cancel, err := cmd.setup(log)
	if err != nil {
		return err
	}
	defer cancel()

	input := pipeline.DefaultReassembleInput()
	input.FramesDir = cmd.Frames
	input.OutputPath = cmd.Output
	input.Encode = encodeSettings(cfg, cmd.Codec, cmd.CRF, cmd.Preset)

	mode := cfg.Mode
	if cmd.Mode != nil {
		mode = *cmd.Mode
	}
	switch mode {
	case "vfr":
		input.Mode = pipeline.ModeVFR
	case "cfr":
		input.Mode = pipeline.ModeCFR
	default:
		return fmt.Errorf("unknown mode %q (vfr or cfr)", mode)
	}

	input.FPS = cfg.FPS
	if cmd.FPS != nil {
		input.FPS = *cmd.FPS
	}
	if cmd.Audio != "" {
		input.Audio = &ports.AudioTrack{Path: cmd.Audio}
	}

	result, err := orch.RunReassemble(ctx, input)
	if err != nil {
		return interruptErr(ctx, err)
	}

	cmd.writeSummary(log, summarizer.NewBuilder("reassemble").
		WithOutput(summarizer.OutputInfo{
			Path:     result.OutputPath,
			Duration: result.Duration,
			Bytes:    outputBytes(result.OutputPath),
		}).
		Build())
	return nil
}

// Run executes the optimize command.
func (cmd *OptimizeCmd) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	log := cmd.newLogger()
	orch, ctx, cancel, err := cmd.setup(log)
	if err != nil {
		return err
	}
	defer cancel()

	input := pipeline.DefaultOptimizeInput()
	input.VideoPath = cmd.Video
	input.OutputPath = cmd.Output
	input.Threshold = cfg.Threshold
	input.MPDecimate = cmd.MPDecimate
	input.Encode = encodeSettings(cfg, cmd.Codec, cmd.CRF, cmd.Preset)

	if cmd.Threshold != nil {
		input.Threshold = *cmd.Threshold
	}
	input.AudioCodec = cfg.AudioCodec
	if cmd.AudioCodec != nil {
		input.AudioCodec = *cmd.AudioCodec
	}
	input.AudioBitrate = cfg.AudioBitrate
	if cmd.AudioBitrate != nil {
		input.AudioBitrate = *cmd.AudioBitrate
	}

	result, err := orch.RunOptimize(ctx, input)
	if err != nil {
		return interruptErr(ctx, err)
	}

	cmd.writeSummary(log, summarizer.NewBuilder("optimize").
		WithSource(summarizer.SourceInfo{Path: cmd.Video}).
		WithDedup(summarizer.DedupInfo{
			FramesProcessed: result.FramesProcessed,
			UniqueImages:    result.UniqueSlides,
			Threshold:       input.Threshold,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:  result.OutputPath,
			Bytes: outputBytes(result.OutputPath),
		}).
		Build())
	return nil
}

// encodeSettings merges config-file encoder values with CLI overrides.
func encodeSettings(cfg config.Config, codec *string, crf *int, preset *string) ports.EncodeSettings {
	settings := ports.EncodeSettings{
		Codec:  cfg.Codec.Codec,
		CRF:    cfg.Codec.CRF,
		Preset: cfg.Codec.Preset,
	}
	if codec != nil {
		settings.Codec = *codec
	}
	if crf != nil {
		settings.CRF = *crf
	}
	if preset != nil {
		settings.Preset = *preset
	}
	return settings
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("compression-suite (Go) version %s", version))
	return nil
}

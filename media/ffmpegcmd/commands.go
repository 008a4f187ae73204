package ffmpegcmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ReframeStrategy selects how reframe fits a wider source into a narrower
// target aspect ratio.
type ReframeStrategy string

const (
	StrategyCrop    ReframeStrategy = "crop"
	StrategyBlurBg  ReframeStrategy = "blur_bg"
	StrategyPad     ReframeStrategy = "pad"
)

// Command is an argv vector plus the output path it produces, ready to
// execute via a Runner.
type Command struct {
	Args   []string
	Output string
}

func run(ctx context.Context, runner Runner, cmd Command) error {
	if runner == nil {
		runner = DefaultRunner
	}
	_, _, err := runner.Run(ctx, "ffmpeg", cmd.Args)
	return err
}

// Thumbnail grabs a single frame at atSeconds and scales it to width pixels
// wide (height auto per aspect ratio).
func Thumbnail(ctx context.Context, runner Runner, video, out string, atSeconds float64, width int) error {
	return run(ctx, runner, BuildThumbnail(video, out, atSeconds, width))
}

func BuildThumbnail(video, out string, atSeconds float64, width int) Command {
	return Command{
		Args: []string{
			"-y", "-ss", formatSeconds(atSeconds), "-i", video,
			"-frames:v", "1", "-vf", fmt.Sprintf("scale=%d:-1", width),
			out,
		},
		Output: out,
	}
}

// ExtractAudio strips video and copies the audio stream as-is.
func ExtractAudio(ctx context.Context, runner Runner, video, audio string) error {
	return run(ctx, runner, BuildExtractAudio(video, audio))
}

func BuildExtractAudio(video, audio string) Command {
	return Command{
		Args:   []string{"-y", "-i", video, "-vn", "-acodec", "copy", audio},
		Output: audio,
	}
}

// CutClip trims [start, end) out of video via stream copy.
func CutClip(ctx context.Context, runner Runner, video string, start, end float64, out string) error {
	return run(ctx, runner, BuildCutClip(video, start, end, out))
}

func BuildCutClip(video string, start, end float64, out string) Command {
	duration := end - start
	if duration < 0 {
		duration = 0
	}
	return Command{
		Args: []string{
			"-y",
			"-ss", formatSeconds(start),
			"-i", video,
			"-t", formatSeconds(duration),
			"-c", "copy",
			out,
		},
		Output: out,
	}
}

// ExtractAudioPCM16kMono extracts a 16 kHz mono PCM WAV, the input format
// diarization backends expect.
func ExtractAudioPCM16kMono(ctx context.Context, runner Runner, video, out string) error {
	return run(ctx, runner, BuildExtractAudioPCM16kMono(video, out))
}

func BuildExtractAudioPCM16kMono(video, out string) Command {
	return Command{
		Args:   []string{"-y", "-i", video, "-vn", "-ar", "16000", "-ac", "1", "-f", "wav", out},
		Output: out,
	}
}

// Reframe re-letterboxes video to aspect (e.g. "9:16") via the given
// strategy.
func Reframe(ctx context.Context, runner Runner, video, out, aspect string, strategy ReframeStrategy) error {
	return run(ctx, runner, BuildReframe(video, out, aspect, strategy))
}

func BuildReframe(video, out, aspect string, strategy ReframeStrategy) Command {
	ratio := strings.ReplaceAll(aspect, ":", "/")

	var filterChain string
	switch strategy {
	case StrategyBlurBg:
		// Foreground: scaled to fit within the target height, centered
		// over a blurred, cropped-to-fill copy of the same source acting
		// as background.
		filterChain = fmt.Sprintf(
			"split=2[bg][fg];"+
				"[bg]scale=-1:ih,crop=iw*%[1]s:ih,boxblur=20:5[bg2];"+
				"[fg]scale=-1:ih*0.9[fg2];"+
				"[bg2][fg2]overlay=(W-w)/2:(H-h)/2",
			ratio)
	case StrategyPad:
		filterChain = fmt.Sprintf(
			"scale=-1:ih, pad=ceil(iw*%[1]s/2)*2:ceil(ih/%[1]s/2)*2:(ow-iw)/2:(oh-ih)/2",
			ratio)
	default: // StrategyCrop
		filterChain = fmt.Sprintf("scale=-1:ih, crop=iw:iw/%s", ratio)
	}

	return Command{
		Args:   []string{"-y", "-i", video, "-vf", filterChain, out},
		Output: out,
	}
}

// MergeOptions configures MergeVideoAudio.
type MergeOptions struct {
	Offset    float64
	Ducking   *float64 // nil = no ducking; non-nil = explicit volume multiplier (true maps to 0.25 by the caller)
	Normalize bool
	// VideoHasAudio controls whether the video's own audio track is mixed
	// in. When false, only the external audio is mapped.
	VideoHasAudio bool
}

// MergeVideoAudio combines video with an external audio track, optionally
// ducking the video's own audio under it and/or loudness-normalizing the
// result.
func MergeVideoAudio(ctx context.Context, runner Runner, video, audio, out string, opts MergeOptions) error {
	return run(ctx, runner, BuildMergeVideoAudio(video, audio, out, opts))
}

func BuildMergeVideoAudio(video, audio, out string, opts MergeOptions) Command {
	args := []string{"-y", "-i", video, "-itsoffset", formatSeconds(opts.Offset), "-i", audio}

	var filters []string
	if opts.VideoHasAudio {
		amixInputs := "[0:a][1:a]"
		if opts.Ducking != nil {
			filters = append(filters, fmt.Sprintf("[0:a]volume=%s[ducked]", formatSeconds(*opts.Ducking)))
			amixInputs = "[ducked][1:a]"
		}
		filters = append(filters, fmt.Sprintf("%samix=inputs=2:duration=shortest[aout]", amixInputs))
	}
	if opts.Normalize {
		filters = append(filters, "loudnorm")
	}

	if len(filters) > 0 {
		args = append(args, "-filter_complex", strings.Join(filters, ","))
		if opts.VideoHasAudio {
			args = append(args, "-map", "0:v", "-map", "[aout]")
		} else {
			args = append(args, "-map", "0:v", "-map", "1:a")
		}
	} else if !opts.VideoHasAudio {
		args = append(args, "-map", "0:v", "-map", "1:a")
	}

	args = append(args, "-c:v", "copy", "-c:a", "aac", "-shortest", out)
	return Command{Args: args, Output: out}
}

// BurnSubtitles hardcodes subs into the video via the subtitles filter,
// with any extra_filters appended after it in the same -vf chain.
func BurnSubtitles(ctx context.Context, runner Runner, video, subs, out string, extraFilters []string) error {
	return run(ctx, runner, BuildBurnSubtitles(video, subs, out, extraFilters))
}

func BuildBurnSubtitles(video, subs, out string, extraFilters []string) Command {
	filters := append([]string{fmt.Sprintf("subtitles=%s", subs)}, extraFilters...)
	return Command{
		Args:   []string{"-y", "-i", video, "-vf", strings.Join(filters, ","), out},
		Output: out,
	}
}

// DuckingVolume is the fixed volume multiplier MergeOptions.Ducking should
// carry when the caller passes the boolean `ducking=true` shorthand rather
// than an explicit numeric value.
const DuckingVolume = 0.25

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

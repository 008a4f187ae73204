package ffmpegcmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// forceStyleKeyOrder pins a stable, readable key order for the common
// style_subtitles keys; any other keys present in the map are appended
// after these in sorted order.
var forceStyleKeyOrder = []string{
	"Fontname", "Fontsize", "PrimaryColour", "SecondaryColour",
	"OutlineColour", "BorderStyle", "Outline", "Shadow", "Alignment",
}

// ComposeForceStyle renders a style map into the ffmpeg subtitles filter's
// `force_style='k=v,k=v,...'` value, escaping literal commas in values as
// `\,` per spec §4.5 (a comma inside a value would otherwise be parsed as
// a key/value separator).
func ComposeForceStyle(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}

	seen := make(map[string]bool, len(style))
	var keys []string
	for _, k := range forceStyleKeyOrder {
		if v, ok := style[k]; ok && v != "" {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range style {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(style[k], ",", `\,`)
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	return strings.Join(pairs, ",")
}

// BuildBurnStyledSubtitles composes the style_subtitles pipeline's ffmpeg
// invocation: hardcode subs with force_style, re-encode video as
// libx264/yuv420p, pass audio through untouched, optionally capped to
// previewSeconds.
func BuildBurnStyledSubtitles(video, subs, out string, style map[string]string, previewSeconds float64) Command {
	filter := fmt.Sprintf("subtitles=%s", subs)
	if fs := ComposeForceStyle(style); fs != "" {
		filter = fmt.Sprintf("%s:force_style='%s'", filter, fs)
	}

	args := []string{"-y", "-i", video, "-vf", filter}
	if previewSeconds > 0 {
		args = append(args, "-t", formatSeconds(previewSeconds))
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "copy", out)

	return Command{Args: args, Output: out}
}

func BurnStyledSubtitles(ctx context.Context, runner Runner, video, subs, out string, style map[string]string, previewSeconds float64) error {
	return run(ctx, runner, BuildBurnStyledSubtitles(video, subs, out, style, previewSeconds))
}

package ffmpegcmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeForceStyleOrdersKnownKeysFirst(t *testing.T) {
	style := map[string]string{
		"Alignment": "2",
		"Fontname":  "Arial",
		"Fontsize":  "36",
	}
	got := ComposeForceStyle(style)
	require.Equal(t, "Fontname=Arial,Fontsize=36,Alignment=2", got)
}

func TestComposeForceStyleEscapesCommasInValues(t *testing.T) {
	style := map[string]string{"PrimaryColour": "&H00,FF,00&"}
	got := ComposeForceStyle(style)
	require.Equal(t, `PrimaryColour=&H00\,FF\,00&`, got)
}

func TestComposeForceStyleEmptyMapReturnsEmptyString(t *testing.T) {
	require.Equal(t, "", ComposeForceStyle(nil))
}

func TestBuildBurnStyledSubtitlesEmbedsForceStyleAndPreview(t *testing.T) {
	cmd := BuildBurnStyledSubtitles("in.mp4", "subs.ass", "out.mp4", map[string]string{"Fontname": "Arial"}, 5)
	joined := ""
	for _, a := range cmd.Args {
		joined += a + "|"
	}
	require.Contains(t, joined, "subtitles=subs.ass:force_style='Fontname=Arial'")
	require.Contains(t, joined, "-t|5|")
	require.Contains(t, joined, "libx264")
}

func TestBuildBurnStyledSubtitlesOmitsPreviewWhenZero(t *testing.T) {
	cmd := BuildBurnStyledSubtitles("in.mp4", "subs.ass", "out.mp4", nil, 0)
	for _, a := range cmd.Args {
		require.NotEqual(t, "-t", a)
	}
}

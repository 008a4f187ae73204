package ffmpegcmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildCutClipArgs(t *testing.T) {
	cmd := BuildCutClip("in.mp4", 5, 12.5, "out.mp4")
	require.Equal(t, []string{"-y", "-ss", "5", "-i", "in.mp4", "-t", "7.5", "-c", "copy", "out.mp4"}, cmd.Args)
	require.Equal(t, "out.mp4", cmd.Output)
}

func TestBuildCutClipClampsNegativeDuration(t *testing.T) {
	cmd := BuildCutClip("in.mp4", 10, 5, "out.mp4")
	require.Contains(t, cmd.Args, "0")
}

func TestBuildExtractAudioArgs(t *testing.T) {
	cmd := BuildExtractAudio("in.mp4", "out.aac")
	require.Equal(t, []string{"-y", "-i", "in.mp4", "-vn", "-acodec", "copy", "out.aac"}, cmd.Args)
}

func TestBuildExtractAudioPCM16kMonoArgs(t *testing.T) {
	cmd := BuildExtractAudioPCM16kMono("in.mp4", "out.wav")
	require.Equal(t, []string{"-y", "-i", "in.mp4", "-vn", "-ar", "16000", "-ac", "1", "-f", "wav", "out.wav"}, cmd.Args)
}

func TestBuildThumbnailArgs(t *testing.T) {
	cmd := BuildThumbnail("in.mp4", "out.png", 0.5, 320)
	require.Equal(t, []string{"-y", "-ss", "0.5", "-i", "in.mp4", "-frames:v", "1", "-vf", "scale=320:-1", "out.png"}, cmd.Args)
	require.Equal(t, "out.png", cmd.Output)
}

func TestBuildReframeCropFilter(t *testing.T) {
	cmd := BuildReframe("in.mp4", "out.mp4", "9:16", StrategyCrop)
	require.Contains(t, cmd.Args, "scale=-1:ih, crop=iw:iw/9/16")
}

func TestBuildReframePadFilter(t *testing.T) {
	cmd := BuildReframe("in.mp4", "out.mp4", "9:16", StrategyPad)
	found := false
	for _, a := range cmd.Args {
		if a == "-vf" {
			continue
		}
		if a != "in.mp4" && a != "out.mp4" && a != "-y" && a != "-i" {
			found = true
		}
	}
	require.True(t, found)
}

func TestBuildBurnSubtitlesPrependsSubtitlesFilter(t *testing.T) {
	cmd := BuildBurnSubtitles("in.mp4", "subs.ass", "out.mp4", []string{"eq=brightness=0.1"})
	idx := -1
	for i, a := range cmd.Args {
		if a == "-vf" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	require.Equal(t, "subtitles=subs.ass,eq=brightness=0.1", cmd.Args[idx+1])
}

func TestBuildMergeVideoAudioNoVideoAudioMapsExternalOnly(t *testing.T) {
	cmd := BuildMergeVideoAudio("in.mp4", "audio.aac", "out.mp4", MergeOptions{VideoHasAudio: false})
	require.Contains(t, cmd.Args, "-map")
	found0v, found1a := false, false
	for i, a := range cmd.Args {
		if a == "-map" && i+1 < len(cmd.Args) {
			if cmd.Args[i+1] == "0:v" {
				found0v = true
			}
			if cmd.Args[i+1] == "1:a" {
				found1a = true
			}
		}
	}
	require.True(t, found0v)
	require.True(t, found1a)
}

func TestBuildMergeVideoAudioDuckingMapsVolumeFilter(t *testing.T) {
	ducking := DuckingVolume
	cmd := BuildMergeVideoAudio("in.mp4", "audio.aac", "out.mp4", MergeOptions{VideoHasAudio: true, Ducking: &ducking})
	joined := ""
	for _, a := range cmd.Args {
		joined += a + " "
	}
	require.Contains(t, joined, "volume=0.25")
}

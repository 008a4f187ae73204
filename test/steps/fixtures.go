package steps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// generateFixture builds the handful of media fixtures the scenarios need,
// the same way the worker package itself shells out to ffmpeg (see
// media/ffmpegcmd), rather than shipping binary blobs into the repo.
func generateFixture(ctx context.Context, dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	switch name {
	case "silence_tone_silence.mp4":
		return path, runFfmpeg(ctx,
			"-y",
			"-f", "lavfi", "-i", "color=c=black:s=320x240:d=4",
			"-f", "lavfi", "-i", "anoisesrc=d=1.5:c=0:a=0",
			"-f", "lavfi", "-i", "sine=frequency=440:duration=1",
			"-f", "lavfi", "-i", "anoisesrc=d=1.5:c=0:a=0",
			"-filter_complex", "[1:a][2:a][3:a]concat=n=3:v=0:a=1[aout]",
			"-map", "0:v", "-map", "[aout]",
			"-shortest", "-pix_fmt", "yuv420p", path,
		)
	case "speech_sample.mp4":
		return path, runFfmpeg(ctx,
			"-y",
			"-f", "lavfi", "-i", "color=c=blue:s=320x240:d=2",
			"-f", "lavfi", "-i", "sine=frequency=220:duration=2",
			"-shortest", "-pix_fmt", "yuv420p", path,
		)
	case "four_second_bars.mp4":
		return path, runFfmpeg(ctx,
			"-y",
			"-f", "lavfi", "-i", "testsrc=s=320x240:d=4",
			"-f", "lavfi", "-i", "sine=frequency=330:duration=4",
			"-shortest", "-pix_fmt", "yuv420p", path,
		)
	case "two_cues.srt":
		return path, os.WriteFile(path, []byte(twoCueSRT), 0o644)
	default:
		return "", fmt.Errorf("no fixture generator registered for %q", name)
	}
}

func runFfmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %v: %w\n%s", args, err, out)
	}
	return nil
}

const twoCueSRT = `1
00:00:00,000 --> 00:00:01,000
Hello there.

2
00:00:01,000 --> 00:00:02,000
General Kenobi.
`

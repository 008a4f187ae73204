package ffmpegcmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSilenceStderrClosedIntervals(t *testing.T) {
	stderr := "[silencedetect @ 0x1] silence_start: 0\n" +
		"[silencedetect @ 0x1] silence_end: 1.23 | silence_duration: 1.23\n" +
		"[silencedetect @ 0x1] silence_start: 4.56\n" +
		"[silencedetect @ 0x1] silence_end: 5.00 | silence_duration: 0.44\n"

	intervals, open := parseSilenceStderr(stderr)
	require.False(t, open)
	require.Equal(t, []SilenceInterval{{Start: 0, End: 1.23}, {Start: 4.56, End: 5.00}}, intervals)
}

func TestParseSilenceStderrDetectsOpenInterval(t *testing.T) {
	stderr := "[silencedetect @ 0x1] silence_start: 2.0\n"

	intervals, open := parseSilenceStderr(stderr)
	require.True(t, open)
	require.Len(t, intervals, 1)
	require.Equal(t, 2.0, intervals[0].Start)
}

type fakeRunner struct {
	stdout, stderr []byte
	err            error
}

func (f fakeRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	return f.stdout, f.stderr, f.err
}

func TestDetectSilenceParsesRunnerStderr(t *testing.T) {
	stderr := []byte("[silencedetect @ 0x1] silence_start: 0\n" +
		"[silencedetect @ 0x1] silence_end: 1.5 | silence_duration: 1.5\n")

	intervals, err := DetectSilence(context.Background(), fakeRunner{stderr: stderr}, "media.mp4")
	require.NoError(t, err)
	require.Equal(t, []SilenceInterval{{Start: 0, End: 1.5}}, intervals)
}

package ffmpegcmd

import (
	"context"
	"regexp"
	"strconv"
)

// SilenceInterval is a detected span of near-silence, in seconds.
type SilenceInterval struct {
	Start float64
	End   float64
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)`)
)

// DetectSilence runs ffmpeg's silencedetect filter over media and parses
// the resulting stderr lines into closed intervals. A trailing open
// interval (silence_start with no matching silence_end, i.e. silence runs
// to EOF) is closed at the file's probed duration.
func DetectSilence(ctx context.Context, runner Runner, media string) ([]SilenceInterval, error) {
	if runner == nil {
		runner = DefaultRunner
	}

	args := []string{"-i", media, "-af", "silencedetect=noise=-30dB:d=0.5", "-f", "null", "-"}
	_, stderr, err := runner.Run(ctx, "ffmpeg", args)
	// The runner surfaces a spawn/exit failure as err, which is returned
	// as-is; stderr, where ffmpeg writes the silencedetect analysis, is
	// parsed only after a successful run.
	if err != nil {
		return nil, err
	}

	intervals, open := parseSilenceStderr(string(stderr))
	if open && len(intervals) > 0 {
		info, probeErr := ProbeMedia(ctx, media)
		if probeErr == nil {
			intervals[len(intervals)-1].End = info.Duration
		}
	}

	return intervals, nil
}

// parseSilenceStderr returns the parsed intervals plus whether the last one
// is open (a silence_start with no matching silence_end, meaning silence
// ran to EOF).
func parseSilenceStderr(stderr string) ([]SilenceInterval, bool) {
	starts := silenceStartRe.FindAllStringSubmatch(stderr, -1)
	ends := silenceEndRe.FindAllStringSubmatch(stderr, -1)

	intervals := make([]SilenceInterval, 0, len(starts))
	for i, s := range starts {
		start, err := strconv.ParseFloat(s[1], 64)
		if err != nil {
			continue
		}
		interval := SilenceInterval{Start: start}
		if i < len(ends) {
			if end, err := strconv.ParseFloat(ends[i][1], 64); err == nil {
				interval.End = end
			}
		}
		intervals = append(intervals, interval)
	}
	return intervals, len(starts) > len(ends)
}

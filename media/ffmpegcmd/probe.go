package ffmpegcmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gopkg.in/vansante/go-ffprobe.v2"

	"github.com/livepeer/reframe-media/log"
)

// VideoInfo describes the video stream of a probed media file.
type VideoInfo struct {
	Codec  string
	Width  int
	Height int
}

// MediaInfo is the shape probe_media returns: overall duration/bitrate plus
// the single video stream and every audio codec present.
type MediaInfo struct {
	Duration    float64
	Bitrate     int64
	Video       VideoInfo
	AudioCodecs []string
}

// ProbeMedia runs ffprobe against path, retrying transient failures with
// exponential backoff (matching the teacher's video.Probe retry posture).
func ProbeMedia(ctx context.Context, path string) (MediaInfo, error) {
	var data *ffprobe.ProbeData

	operation := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		d, err := ffprobe.ProbeURL(probeCtx, path, "-loglevel", "error")
		if err != nil {
			return err
		}
		data = d
		return nil
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = 500 * time.Millisecond
	backOff.MaxInterval = 2 * time.Second
	backOff.MaxElapsedTime = 0
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backOff, 3)); err != nil {
		return MediaInfo{}, fmt.Errorf("error probing %s: %w", path, err)
	}

	return parseProbeData(data)
}

func parseProbeData(data *ffprobe.ProbeData) (MediaInfo, error) {
	if data.Format == nil {
		return MediaInfo{}, fmt.Errorf("error parsing probe output: format information missing")
	}

	info := MediaInfo{Duration: data.Format.DurationSeconds}

	bitRateValue := data.Format.BitRate
	if v := data.FirstVideoStream(); v != nil && v.BitRate != "" {
		bitRateValue = v.BitRate
	}
	if bitRateValue != "" {
		bitrate, err := strconv.ParseInt(bitRateValue, 10, 64)
		if err != nil {
			return MediaInfo{}, fmt.Errorf("error parsing bitrate from probed data: %w", err)
		}
		info.Bitrate = bitrate
	}

	if v := data.FirstVideoStream(); v != nil {
		info.Video = VideoInfo{Codec: v.CodecName, Width: v.Width, Height: v.Height}
	}

	for _, s := range data.Streams {
		if s.CodecType == "audio" {
			info.AudioCodecs = append(info.AudioCodecs, s.CodecName)
		}
	}

	log.LogNoRequestID("probed media", "duration", info.Duration, "bitrate", info.Bitrate, "video_codec", info.Video.Codec)
	return info, nil
}

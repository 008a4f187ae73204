package diarize

import (
	"context"
	"fmt"
)

// Diarizer produces speaker segments for an audio file.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]Segment, error)
}

// Dispatch runs the configured backend. This is offline-first: BackendNoop
// returns no segments without touching the network or filesystem beyond
// what the caller already has.
func Dispatch(ctx context.Context, audioPath string, cfg Config) ([]Segment, error) {
	switch cfg.Backend {
	case "", BackendNoop:
		return nil, nil
	case BackendPyannote:
		return NewPyannoteClient(cfg).Diarize(ctx, audioPath)
	case BackendSpeechBrain:
		return NewSpeechBrainClient(cfg).Diarize(ctx, audioPath)
	default:
		return nil, fmt.Errorf("unknown diarization backend: %q", cfg.Backend)
	}
}

func filterByMinDuration(segments []Segment, minDuration float64) []Segment {
	if minDuration <= 0 {
		return segments
	}
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.End-s.Start >= minDuration {
			out = append(out, s)
		}
	}
	return out
}

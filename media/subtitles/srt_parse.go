package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livepeer/reframe-media/media/transcribe"
)

// ParseSRT parses a SubRip document into Lines. Like ParseVTT, per-word
// timing isn't recoverable from the format, so each cue becomes a single
// synthetic word spanning the cue.
func ParseSRT(doc string) ([]Line, error) {
	blocks := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n\n")

	var out []Line
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		idx := 0
		// Optional cue number line.
		if _, err := strconv.Atoi(strings.TrimSpace(lines[idx])); err == nil {
			idx++
		}
		if idx >= len(lines) || !strings.Contains(lines[idx], "-->") {
			return nil, fmt.Errorf("malformed srt block: %q", block)
		}
		parts := strings.SplitN(lines[idx], "-->", 2)
		start, err := parseTimestamp(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		end, err := parseTimestamp(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}
		idx++
		text := strings.TrimSpace(strings.Join(lines[idx:], " "))
		out = append(out, Line{Start: start, End: end, Words: []transcribe.Word{{Text: text, Start: start, End: end}}})
	}
	return out, nil
}

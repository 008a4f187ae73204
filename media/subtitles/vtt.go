package subtitles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/livepeer/reframe-media/media/transcribe"
)

// ToVTT serializes lines as a WebVTT document: a WEBVTT header followed by
// cues using "." instead of "," as the millisecond separator.
func ToVTT(lines []Line) string {
	out := "WEBVTT\n\n"
	for _, l := range lines {
		out += fmt.Sprintf("%s --> %s\n", formatTimestamp(l.Start, "."), formatTimestamp(l.End, "."))
		out += speakerPrefix(l) + l.Text() + "\n"
		out += "\n"
	}
	return out
}

var timeRe = regexp.MustCompile(`(\d+):(\d+):(\d+)[.,](\d+)`)

func parseTimestamp(s string) (float64, error) {
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	msStr := m[4]
	for len(msStr) < 3 {
		msStr += "0"
	}
	ms, _ := strconv.Atoi(msStr[:3])
	return float64(h*3600+min*60+sec) + float64(ms)/1000, nil
}

// ParseVTT is a minimal WebVTT parser: it tolerates an optional cue
// identifier line before the timing line, NOTE blocks (skipped entirely),
// and cue settings appended after the end timestamp (ignored). Only SRT
// and VTT are accepted as input formats across the pipeline.
func ParseVTT(doc string) ([]Line, error) {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	var out []Line
	i := 0
	// Skip the WEBVTT header line, if present.
	if i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "WEBVTT") {
		i++
	}

	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}
		if strings.HasPrefix(line, "NOTE") {
			for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
				i++
			}
			continue
		}

		timingLine := line
		if !strings.Contains(timingLine, "-->") {
			// This was a cue identifier; the next line should be the timing line.
			i++
			if i >= len(lines) {
				break
			}
			timingLine = strings.TrimSpace(lines[i])
		}

		parts := strings.SplitN(timingLine, "-->", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed cue timing line: %q", timingLine)
		}
		start, err := parseTimestamp(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		// The portion after the end timestamp may carry cue settings; only
		// the leading timestamp token matters.
		endField := strings.TrimSpace(parts[1])
		endTok := strings.Fields(endField)
		if len(endTok) == 0 {
			return nil, fmt.Errorf("malformed cue timing line: %q", timingLine)
		}
		end, err := parseTimestamp(endTok[0])
		if err != nil {
			return nil, err
		}
		i++

		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, strings.TrimSpace(lines[i]))
			i++
		}
		text := strings.Join(textLines, " ")

		// Cue-level parsing doesn't recover per-word timing, so the whole
		// cue body becomes a single synthetic word spanning the cue.
		out = append(out, Line{Start: start, End: end, Words: []transcribe.Word{{Text: text, Start: start, End: end}}})
	}

	return out, nil
}

package subtitles

import (
	"fmt"
	"math"
)

// formatTimestamp renders seconds as SRT-style "HH:MM:SS,mmm" (sep=",") or
// VTT-style "HH:MM:SS.mmm" (sep=".").
func formatTimestamp(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	s := totalSec % 60
	totalMin := totalSec / 60
	m := totalMin % 60
	h := totalMin / 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}

// ToSRT serializes lines as a SubRip document: 1-indexed cue number, the
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing line, a payload line (prefixed
// with "SPEAKER_XX: " when Speaker is set), and a blank separator.
func ToSRT(lines []Line) string {
	out := ""
	for i, l := range lines {
		out += fmt.Sprintf("%d\n", i+1)
		out += fmt.Sprintf("%s --> %s\n", formatTimestamp(l.Start, ","), formatTimestamp(l.End, ","))
		out += speakerPrefix(l) + l.Text() + "\n"
		out += "\n"
	}
	return out
}

func speakerPrefix(l Line) string {
	if l.Speaker == "" {
		return ""
	}
	return l.Speaker + ": "
}

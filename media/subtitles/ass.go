package subtitles

import (
	"fmt"
	"math"
	"strings"
)

const assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,48,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,0,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// formatASSTimestamp renders seconds as ASS-style "H:MM:SS.cc" (centisecond
// precision, no leading zero on hours).
func formatASSTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCs := int64(math.Round(seconds * 100))
	cs := totalCs % 100
	totalSec := totalCs / 100
	s := totalSec % 60
	totalMin := totalSec / 60
	m := totalMin % 60
	h := totalMin / 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// escapeASSText escapes characters with dialogue-line meaning in ASS.
func escapeASSText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\N")
	s = strings.ReplaceAll(s, "{", "\\{")
	s = strings.ReplaceAll(s, "}", "\\}")
	return s
}

// assSpeakerName replaces commas in the speaker field, since the ASS Name
// field is itself comma-delimited within the Dialogue line.
func assSpeakerName(speaker string) string {
	return strings.ReplaceAll(speaker, ",", " ")
}

// ToASS serializes lines as a plain (non-karaoke) ASS document.
func ToASS(lines []Line) string {
	var b strings.Builder
	b.WriteString(assHeader)
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,%s,0,0,0,,%s\n",
			formatASSTimestamp(l.Start), formatASSTimestamp(l.End), assSpeakerName(l.Speaker), escapeASSText(l.Text())))
	}
	return b.String()
}

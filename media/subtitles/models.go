package subtitles

import "github.com/livepeer/reframe-media/media/transcribe"

// Line is a single subtitle cue: a time span, its constituent words, and an
// optional attributed speaker.
type Line struct {
	Start   float64
	End     float64
	Words   []transcribe.Word
	Speaker string
}

// Text renders the line's words as a single space-joined string.
func (l Line) Text() string {
	out := ""
	for i, w := range l.Words {
		if i > 0 {
			out += " "
		}
		out += w.Text
	}
	return out
}

// GroupingConfig bounds how many words/characters/seconds a single Line may
// span before group_words starts a new one.
type GroupingConfig struct {
	MaxCharsPerLine int
	MaxWordsPerLine int
	MaxDuration     float64
	MaxGap          float64
}

func DefaultGroupingConfig() GroupingConfig {
	return GroupingConfig{
		MaxCharsPerLine: 40,
		MaxWordsPerLine: 12,
		MaxDuration:     6.0,
		MaxGap:          0.6,
	}
}

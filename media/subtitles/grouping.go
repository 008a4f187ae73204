package subtitles

import "github.com/livepeer/reframe-media/media/transcribe"

// GroupWords greedily packs word-timed tokens into Lines, left to right. A
// new line starts whenever appending the next word would violate any of
// the four constraints in cfg: character count, word count, line
// duration, or gap since the previous word. An empty line is never
// emitted.
func GroupWords(words []transcribe.Word, cfg GroupingConfig) []Line {
	var lines []Line
	var current []transcribe.Word

	flush := func() {
		if len(current) == 0 {
			return
		}
		lines = append(lines, Line{
			Start: current[0].Start,
			End:   current[len(current)-1].End,
			Words: current,
		})
		current = nil
	}

	for _, w := range words {
		if len(current) == 0 {
			current = append(current, w)
			continue
		}

		candidateText := lineText(current) + " " + w.Text
		lineStart := current[0].Start
		lastWordEnd := current[len(current)-1].End

		violates := len(candidateText) > cfg.MaxCharsPerLine ||
			len(current)+1 > cfg.MaxWordsPerLine ||
			(w.End-lineStart) > cfg.MaxDuration ||
			(w.Start-lastWordEnd) > cfg.MaxGap

		if violates {
			flush()
			current = append(current, w)
			continue
		}

		current = append(current, w)
	}
	flush()

	return lines
}

func lineText(words []transcribe.Word) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w.Text
	}
	return out
}

package subtitles

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// tokenizeForKaraoke splits a line's rendered text into whitespace-delimited
// tokens when per-word timing isn't available.
func tokenizeForKaraoke(text string) []string {
	return strings.Fields(text)
}

// allocateKaraokeDurationsCS distributes totalCS centiseconds across tokens
// proportionally to each token's length. Any remainder from integer
// division is distributed one centisecond at a time to the longest tokens
// first (ties broken by original order); every token is floored at 1 cs.
func allocateKaraokeDurationsCS(tokens []string, totalCS int) []int {
	n := len(tokens)
	if n == 0 {
		return nil
	}
	if totalCS < n {
		totalCS = n
	}

	totalLen := 0
	for _, t := range tokens {
		totalLen += len([]rune(t))
	}
	if totalLen == 0 {
		totalLen = n
	}

	durations := make([]int, n)
	assigned := 0
	for i, t := range tokens {
		length := len([]rune(t))
		if length == 0 {
			length = 1
		}
		d := int(float64(totalCS) * float64(length) / float64(totalLen))
		if d < 1 {
			d = 1
		}
		durations[i] = d
		assigned += d
	}

	remainder := totalCS - assigned
	if remainder != 0 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return len([]rune(tokens[order[a]])) > len([]rune(tokens[order[b]]))
		})

		i := 0
		for remainder > 0 {
			idx := order[i%n]
			durations[idx]++
			remainder--
			i++
		}
		for remainder < 0 {
			idx := order[i%n]
			if durations[idx] > 1 {
				durations[idx]--
				remainder++
			}
			i++
		}
	}

	return durations
}

// karaokeTextForLine renders a line's karaoke dialogue text: each token
// prefixed with a {\kD} tag giving its duration in centiseconds. When the
// line carries real per-word timing (more than one Word, each with its own
// Start/End), durations come directly from round((end-start)*100). When the
// line is a single synthetic word (e.g. parsed from SRT/VTT input with no
// word-level timing), the text is re-tokenized and durations allocated
// proportionally to token length.
func karaokeTextForLine(l Line) string {
	var b strings.Builder

	if len(l.Words) > 1 {
		for _, w := range l.Words {
			cs := int(math.Round((w.End - w.Start) * 100))
			if cs < 1 {
				cs = 1
			}
			b.WriteString(fmt.Sprintf("{\\k%d}%s", cs, escapeASSText(w.Text)))
		}
		return b.String()
	}

	text := l.Text()
	tokens := tokenizeForKaraoke(text)
	if len(tokens) == 0 {
		return ""
	}
	totalCS := int(math.Round((l.End - l.Start) * 100))
	durations := allocateKaraokeDurationsCS(tokens, totalCS)
	for i, tok := range tokens {
		b.WriteString(fmt.Sprintf("{\\k%d}%s", durations[i], escapeASSText(tok)))
	}
	return b.String()
}

// ToASSKaraoke serializes lines as an ASS document with per-word {\kD}
// karaoke timing tags, suitable for libass burn-in.
func ToASSKaraoke(lines []Line) string {
	var b strings.Builder
	b.WriteString(assHeader)
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,%s,0,0,0,,%s\n",
			formatASSTimestamp(l.Start), formatASSTimestamp(l.End), assSpeakerName(l.Speaker), karaokeTextForLine(l)))
	}
	return b.String()
}

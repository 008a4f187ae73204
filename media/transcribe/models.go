package transcribe

import (
	"fmt"
	"strings"
)

// Word is a single word-timed transcription token. Invariant: End > Start.
type Word struct {
	Text        string   `json:"text"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	Probability *float64 `json:"probability,omitempty"`
}

func (w Word) Validate() error {
	if w.Start < 0 {
		return fmt.Errorf("word start must be >= 0, got %f", w.Start)
	}
	if w.End <= w.Start {
		return fmt.Errorf("word end (%f) must be greater than start (%f)", w.End, w.Start)
	}
	if w.Probability != nil && (*w.Probability < 0 || *w.Probability > 1) {
		return fmt.Errorf("word probability must be in [0,1], got %f", *w.Probability)
	}
	return nil
}

// TranscriptionResult is a sequence of word-timed tokens plus optional
// metadata. Invariant: Words is sorted by Start and pairwise
// non-overlapping (Words[i].End <= Words[i+1].Start).
type TranscriptionResult struct {
	Words    []Word  `json:"words"`
	Text     string  `json:"text,omitempty"`
	Model    string  `json:"model,omitempty"`
	Language string  `json:"language,omitempty"`
}

func (t TranscriptionResult) Validate() error {
	for i, w := range t.Words {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("word %d: %w", i, err)
		}
		if i > 0 && t.Words[i-1].End > w.Start {
			return fmt.Errorf("words must be sorted and non-overlapping: word %d (start=%f) overlaps word %d (end=%f)",
				i, w.Start, i-1, t.Words[i-1].End)
		}
	}
	return nil
}

// FromIterable builds a TranscriptionResult from already-validated words,
// joining their Text with spaces (trimmed) when no explicit text is given.
func FromIterable(words []Word, model, language string) (TranscriptionResult, error) {
	t := TranscriptionResult{Words: words, Model: model, Language: language}
	if err := t.Validate(); err != nil {
		return TranscriptionResult{}, err
	}
	texts := make([]string, 0, len(words))
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	t.Text = strings.TrimSpace(strings.Join(texts, " "))
	return t, nil
}

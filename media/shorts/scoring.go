package shorts

import (
	"context"
	"encoding/json"
	"strings"
)

// ScoreByKeywords is a cheap heuristic scorer: each candidate's score
// becomes the number of case-insensitive keyword occurrences found in its
// snippet. Candidates without a snippet are left at their existing score.
func ScoreByKeywords(candidates []SegmentCandidate, keywords []string) []SegmentCandidate {
	if len(keywords) == 0 {
		return candidates
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	out := make([]SegmentCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = c
		if c.Snippet == "" {
			continue
		}
		text := strings.ToLower(c.Snippet)
		count := 0
		for _, kw := range lowered {
			count += strings.Count(text, kw)
		}
		out[i].Score = float64(count)
	}
	return out
}

// ChatCompletionClient is the shape an injectable LLM scoring backend must
// satisfy: a single chat-completion call returning raw assistant content.
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type llmScoredSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// ScoreWithLLM asks client to score candidates (providing their snippets)
// and applies any returned {start,end,score} entries that match a
// candidate's start/end to within 1ms. Parse failures, or a response the
// client can't produce, leave all scores unchanged.
func ScoreWithLLM(ctx context.Context, client ChatCompletionClient, candidates []SegmentCandidate, systemPrompt string) []SegmentCandidate {
	out := make([]SegmentCandidate, len(candidates))
	copy(out, candidates)
	if client == nil {
		return out
	}

	type promptSegment struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Snippet string  `json:"snippet"`
	}
	prompt := make([]promptSegment, len(candidates))
	for i, c := range candidates {
		prompt[i] = promptSegment{Start: c.Start, End: c.End, Snippet: c.Snippet}
	}
	body, err := json.Marshal(prompt)
	if err != nil {
		return out
	}

	raw, err := client.CreateChatCompletion(ctx, systemPrompt, string(body))
	if err != nil {
		return out
	}

	var scored []llmScoredSegment
	if err := json.Unmarshal([]byte(raw), &scored); err != nil {
		return out
	}

	const epsilon = 0.001
	for _, s := range scored {
		for i := range out {
			if abs(out[i].Start-s.Start) < epsilon && abs(out[i].End-s.End) < epsilon {
				out[i].Score = s.Score
				break
			}
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package shorts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreByKeywordsCountsOccurrences(t *testing.T) {
	candidates := []SegmentCandidate{
		{Start: 0, End: 10, Snippet: "this is a Wild and wild ride"},
		{Start: 10, End: 20, Snippet: "nothing special here"},
	}
	scored := ScoreByKeywords(candidates, []string{"wild"})
	require.Equal(t, 2.0, scored[0].Score)
	require.Equal(t, 0.0, scored[1].Score)
}

type fakeChatClient struct {
	response string
	err      error
}

func (f fakeChatClient) CreateChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.response, f.err
}

func TestScoreWithLLMAppliesMatchingSegments(t *testing.T) {
	candidates := []SegmentCandidate{
		{Start: 0, End: 10, Score: 0, Snippet: "a"},
		{Start: 10, End: 20, Score: 0, Snippet: "b"},
	}
	client := fakeChatClient{response: `[{"start":0,"end":10,"score":7.5},{"start":10,"end":20,"score":2}]`}

	scored := ScoreWithLLM(context.Background(), client, candidates, "score these")
	require.Equal(t, 7.5, scored[0].Score)
	require.Equal(t, 2.0, scored[1].Score)
}

func TestScoreWithLLMLeavesScoresOnParseFailure(t *testing.T) {
	candidates := []SegmentCandidate{{Start: 0, End: 10, Score: 3}}
	client := fakeChatClient{response: "not json"}

	scored := ScoreWithLLM(context.Background(), client, candidates, "score these")
	require.Equal(t, 3.0, scored[0].Score)
}

func TestScoreWithLLMNilClientLeavesScoresUnchanged(t *testing.T) {
	candidates := []SegmentCandidate{{Start: 0, End: 10, Score: 3}}
	scored := ScoreWithLLM(context.Background(), nil, candidates, "score these")
	require.Equal(t, 3.0, scored[0].Score)
}

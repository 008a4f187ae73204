package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type upperTranslator struct{}

func (upperTranslator) TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]string, error) {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = strings.ToUpper(t)
	}
	return out, nil
}

const sampleSRT = "1\n00:00:00,000 --> 00:00:01,000\nhello\n\n2\n00:00:01,000 --> 00:00:02,000\nworld\n\n"

func TestTranslateSRTReplacesText(t *testing.T) {
	out, err := TranslateSRT(context.Background(), sampleSRT, upperTranslator{}, "en", "es")
	require.NoError(t, err)
	require.Contains(t, out, "HELLO")
	require.Contains(t, out, "WORLD")
	require.NotContains(t, out, "hello")
}

func TestTranslateSRTBilingualKeepsBothTexts(t *testing.T) {
	out, err := TranslateSRTBilingual(context.Background(), sampleSRT, upperTranslator{}, "en", "es", "")
	require.NoError(t, err)
	require.Contains(t, out, `hello\NHELLO`)
}

func TestNoOpTranslatorReturnsInputUnchanged(t *testing.T) {
	out, err := NoOpTranslator{}.TranslateBatch(context.Background(), []string{"a", "b"}, "en", "fr")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, out)
}

func TestValidateLanguageTagRejectsGarbage(t *testing.T) {
	require.NoError(t, ValidateLanguageTag("en"))
	require.NoError(t, ValidateLanguageTag("pt-BR"))
	require.Error(t, ValidateLanguageTag("not a tag!!"))
}

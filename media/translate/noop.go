package translate

import "context"

// NoOpTranslator is the offline-safe fallback: it returns every input
// string unchanged.
type NoOpTranslator struct{}

func (NoOpTranslator) TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)
	return out, nil
}

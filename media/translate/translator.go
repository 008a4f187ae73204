package translate

import (
	"context"

	"golang.org/x/text/language"
)

// Translator batch-translates plain text between two BCP-47 language tags.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]string, error)
}

// ValidateLanguageTag rejects anything that isn't a well-formed BCP-47 tag.
func ValidateLanguageTag(tag string) error {
	_, err := language.Parse(tag)
	return err
}

// Package translation adapts the Google Cloud Translation API for the
// bot: a stateless translation gateway, the catalog of languages the
// provider supports, and the flag emoji definitions that map reactions
// to target languages.
package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
)

// ErrNoTranslationNeeded indicates that the detected source language
// already equals the requested target language. Callers send no reply
// in that case. It is distinct from provider failures, which are
// returned as ordinary wrapped errors.
var ErrNoTranslationNeeded = errors.New("message is already in the target language")

// apiClient is an internal interface that abstracts the
// *gtranslate.Client methods used by this package. This allows mocking
// the provider in tests. *gtranslate.Client satisfies this interface.
type apiClient interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *gtranslate.Options) ([]gtranslate.Translation, error)
	SupportedLanguages(ctx context.Context, target language.Tag) ([]gtranslate.Language, error)
}

// Gateway is a stateless adapter over the translation provider.
type Gateway struct {
	client apiClient
}

// NewGateway creates a Gateway backed by the given provider client.
func NewGateway(client *gtranslate.Client) *Gateway {
	return &Gateway{client: client}
}

// Translate translates text into the given target language code.
// The code is lower-cased before it reaches the provider. When the
// provider detects that the text is already in the target language,
// ErrNoTranslationNeeded is returned instead of echoing the original.
func (g *Gateway) Translate(ctx context.Context, text string, target string) (string, error) {
	target = strings.ToLower(target)
	tag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language code %q: %w", target, err)
	}

	results, err := g.client.Translate(ctx, []string{text}, tag, &gtranslate.Options{Format: gtranslate.Text})
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("translation provider returned no result for target %q", target)
	}

	result := results[0]
	if strings.EqualFold(result.Source.String(), target) {
		return "", ErrNoTranslationNeeded
	}
	return result.Text, nil
}

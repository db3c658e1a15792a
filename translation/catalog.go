package translation

import (
	"context"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
)

// Catalog is the set of languages the translation provider supports,
// keyed by lower-cased language code. It is built once at startup and
// read-only thereafter.
type Catalog struct {
	names map[string]string
}

// NewCatalog builds a Catalog from the provider's language list.
func NewCatalog(langs []gtranslate.Language) *Catalog {
	names := make(map[string]string, len(langs))
	for _, l := range langs {
		names[strings.ToLower(l.Tag.String())] = l.Name
	}
	return &Catalog{names: names}
}

// FetchCatalog retrieves the supported languages from the provider with
// display names in English.
func FetchCatalog(ctx context.Context, client *gtranslate.Client) (*Catalog, error) {
	langs, err := client.SupportedLanguages(ctx, language.English)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supported languages: %w", err)
	}
	return NewCatalog(langs), nil
}

// Has reports whether the code is a recognized language code.
// The lookup is case-insensitive.
func (c *Catalog) Has(code string) bool {
	_, ok := c.names[strings.ToLower(code)]
	return ok
}

// Name returns the display name for the code. The lookup is
// case-insensitive.
func (c *Catalog) Name(code string) (string, bool) {
	name, ok := c.names[strings.ToLower(code)]
	return name, ok
}

// Len returns the number of languages in the catalog.
func (c *Catalog) Len() int {
	return len(c.names)
}

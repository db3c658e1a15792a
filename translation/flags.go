package translation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Flags maps a flag emoji to the target language code a reaction with
// that emoji triggers. It is loaded once at startup and read-only
// thereafter.
type Flags map[string]string

type flagDef struct {
	Code string `json:"code"`
}

// LoadFlags reads flag definitions from a JSON file of the form
//
//	{"🇫🇷": {"code": "fr"}, "🇪🇸": {"code": "es"}}
func LoadFlags(path string) (Flags, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flag definitions: %w", err)
	}

	var defs map[string]flagDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse flag definitions in %s: %w", path, err)
	}

	flags := make(Flags, len(defs))
	for emoji, def := range defs {
		if def.Code == "" {
			return nil, fmt.Errorf("flag %q in %s has no language code", emoji, path)
		}
		flags[emoji] = strings.ToLower(def.Code)
	}
	return flags, nil
}

// Code returns the target language code for the emoji.
func (f Flags) Code(emoji string) (string, bool) {
	code, ok := f[emoji]
	return code, ok
}

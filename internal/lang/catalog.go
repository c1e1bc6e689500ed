package lang

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

// Bundled locale files. Each file is named "<locale>.json" and maps
// namespace to a nested message tree.
//
//go:embed locales/*.json
var localeFiles embed.FS

// DefaultCatalog builds the bundled message catalog from the embedded
// locale files. The bundle ships English and Brazilian Portuguese with the
// "slackin" and "validation" namespaces.
func DefaultCatalog() (Catalog, error) {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}

	catalog := make(Catalog)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		locale := strings.TrimSuffix(name, ".json")

		data, readErr := localeFiles.ReadFile("locales/" + name)
		if readErr != nil {
			return nil, fmt.Errorf("read locale %s: %w", locale, readErr)
		}

		var namespaces map[string]map[string]any
		if err := json.Unmarshal(data, &namespaces); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", locale, err)
		}
		for namespace, tree := range namespaces {
			catalog[locale+"."+namespace] = tree
		}
	}
	return catalog, nil
}

// Package search resolves a query into either a bang URL redirect or a
// list of matching commands from the active profile.
package search

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Placeholder is the literal token in a bang URL template replaced with
// the remaining search terms.
const Placeholder = "{{{s}}}"

// Bang is one search-prefix redirect rule. The JSON field names follow
// the upstream bang list's compact schema.
type Bang struct {
	Category    string `json:"c"`
	Domain      string `json:"d"`
	Rank        int    `json:"r"`
	Name        string `json:"s"`
	Subcategory string `json:"sc"`
	Trigger     string `json:"t"`
	URLTemplate string `json:"u"`
}

// Expand substitutes the search terms into the URL template.
func (b Bang) Expand(terms string) string {
	return strings.ReplaceAll(b.URLTemplate, Placeholder, terms)
}

// LoadBangs reads a bang list from a JSON file.
func LoadBangs(path string) ([]Bang, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bang list: %w", err)
	}
	var bangs []Bang
	if err := json.Unmarshal(data, &bangs); err != nil {
		return nil, fmt.Errorf("parse bang list %s: %w", path, err)
	}
	return bangs, nil
}

func findTrigger(bangs []Bang, token string) (Bang, bool) {
	for _, b := range bangs {
		if b.Trigger == token {
			return b, true
		}
	}
	return Bang{}, false
}

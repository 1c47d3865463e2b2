package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"recipehub/pkg/models"
)

// DecodeJSON reads a recipes.json document (an array of recipes). Entries
// without an id or title are dropped.
func DecodeJSON(r io.Reader) ([]models.Recipe, error) {
	var raw []models.Recipe
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}
	out := raw[:0]
	for _, rec := range raw {
		rec.ID = strings.TrimSpace(rec.ID)
		if rec.ID == "" || strings.TrimSpace(rec.Title) == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func LoadFile(path string) ([]models.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeJSON(f)
}

// WriteJSON writes recipes as an indented JSON array.
func WriteJSON(w io.Writer, recipes []models.Recipe) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(recipes)
}

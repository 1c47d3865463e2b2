package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"recipehub/internal/catalog"
	"recipehub/pkg/models"
)

// WriteFile writes recipes as an indented JSON array to path, replacing any
// previous file atomically.
func WriteFile(path string, recipes []models.Recipe) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".recipes-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := catalog.WriteJSON(tmp, recipes); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// SaveToCatalog upserts recipes into the catalog table.
func SaveToCatalog(ctx context.Context, repo *catalog.Repo, recipes []models.Recipe) error {
	if err := repo.UpsertAll(ctx, recipes); err != nil {
		return fmt.Errorf("save to catalog: %w", err)
	}
	return nil
}

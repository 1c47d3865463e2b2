// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"recipehub/pkg/database"
	"recipehub/pkg/models"
)

// NewDB opens a migrated sqlite database in a temp dir.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// Recipes is a small catalog used across tests.
func Recipes() []models.Recipe {
	return []models.Recipe{
		{
			ID:           "A",
			Title:        "Pancakes",
			Tags:         []string{"breakfast", "vegetarian", "quick"},
			CookTime:     20,
			Servings:     4,
			Ingredients:  []models.Ingredient{{Amount: "2", Unit: "cup", Name: "Flour"}},
			Instructions: []string{"Mix.", "Fry."},
		},
		{
			ID:          "B",
			Title:       "Salted Bread",
			Tags:        []string{"vegan"},
			CookTime:    90,
			Servings:    8,
			Ingredients: []models.Ingredient{{Amount: "1", Unit: "cup", Name: "Flour"}, {Amount: "3", Unit: "g", Name: "Salt"}},
			Instructions: []string{
				"Knead.",
				"Bake.",
			},
		},
		{
			ID:           "C",
			Title:        "Steak",
			Tags:         []string{"dinner", "high-protein", "low-carb"},
			CookTime:     25,
			Servings:     2,
			Ingredients:  []models.Ingredient{{Amount: "400", Unit: "g", Name: "Beef"}},
			Instructions: []string{"Sear."},
		},
	}
}

// SeedRecipes writes Recipes into db's recipes table.
func SeedRecipes(t *testing.T, db *sql.DB) {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()
	for _, r := range Recipes() {
		_, err := tx.Exec(`INSERT INTO recipes (id, title, description, image, tags, cook_time, servings, ingredients, instructions)
			VALUES (?, ?, '', '', ?, ?, ?, ?, ?)`,
			r.ID, r.Title, mustJSON(t, r.Tags), r.CookTime, r.Servings, mustJSON(t, r.Ingredients), mustJSON(t, r.Instructions))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipehub/internal/catalog"
	"recipehub/internal/testutil"
)

const detail101 = `{
  "id": 101,
  "title": "Lentil Soup",
  "summary": "A <b>hearty</b> soup &amp; more.",
  "image": "https://img/101.jpg",
  "readyInMinutes": 25,
  "servings": 4,
  "diets": ["vegan", "gluten free", "vegetarian"],
  "extendedIngredients": [
    {"name": "lentils", "measures": {"us": {"amount": 1.5, "unitShort": "cups"}}},
    {"name": "salt", "measures": {"us": {"unitShort": ""}}}
  ],
  "analyzedInstructions": [{"steps": [{"step": "Rinse."}, {"step": "Simmer."}]}],
  "nutrition": {"nutrients": [
    {"name": "Protein", "amount": 22, "unit": "g"},
    {"name": "Carbohydrates", "amount": 40, "unit": "g"}
  ]}
}`

const detail102 = `{"id": 102, "title": "No Steps", "analyzedInstructions": []}`

func newSpoonacular(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/complexSearch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "true", r.URL.Query().Get("instructionsRequired"))
		fmt.Fprint(w, `{"results":[{"id":101},{"id":102},{"id":103}]}`)
	})
	mux.HandleFunc("/recipes/101/information", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("includeNutrition"))
		fmt.Fprint(w, detail101)
	})
	mux.HandleFunc("/recipes/102/information", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detail102)
	})
	mux.HandleFunc("/recipes/103/information", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusPaymentRequired)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRecipes(t *testing.T) {
	srv := newSpoonacular(t)
	c := NewClient("key", nil)
	c.BaseURL = srv.URL

	recipes, err := c.FetchRecipes(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	require.Equal(t, "101", r.ID)
	require.Equal(t, "A hearty soup & more.", r.Description)
	require.Equal(t, []string{"quick", "vegan", "vegetarian", "high-protein"}, r.Tags)
	require.Equal(t, "1.5", r.Ingredients[0].Amount)
	require.Equal(t, "cups", r.Ingredients[0].Unit)
	require.Equal(t, "1", r.Ingredients[1].Amount)
	require.Equal(t, []string{"Rinse.", "Simmer."}, r.Instructions)
}

func TestSearchFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("key", nil)
	c.BaseURL = srv.URL
	_, err := c.FetchRecipes(context.Background(), 5)
	require.ErrorContains(t, err, "status 401")
}

func TestExtractTags(t *testing.T) {
	var in Information
	require.NoError(t, json.Unmarshal([]byte(`{"readyInMinutes": 45, "diets": ["gluten-free"]}`), &in))
	require.Equal(t, []string{"gluten-free"}, ExtractTags(&in))

	in.Nutrition = &Nutrition{Nutrients: []Nutrient{{Name: "Carbohydrates", Amount: 12}}}
	require.Equal(t, []string{"gluten-free", "low-carb"}, ExtractTags(&in))

	in.ReadyInMinutes = 30
	require.Equal(t, []string{"quick", "gluten-free", "low-carb"}, ExtractTags(&in))
}

func TestPersist(t *testing.T) {
	srv := newSpoonacular(t)
	c := NewClient("key", nil)
	c.BaseURL = srv.URL
	recipes, err := c.FetchRecipes(context.Background(), 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, WriteFile(path, recipes))
	loaded, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, recipes, loaded)

	db := testutil.NewDB(t)
	repo := catalog.NewRepo(db)
	require.NoError(t, SaveToCatalog(context.Background(), repo, recipes))
	got, err := repo.FindByID(context.Background(), "101")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Lentil Soup", got.Title)
}

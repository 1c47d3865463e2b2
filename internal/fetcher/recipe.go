package fetcher

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"recipehub/internal/cart"
	"recipehub/pkg/models"
)

// Information is the subset of /recipes/{id}/information we map.
type Information struct {
	ID                  int64    `json:"id"`
	Title               string   `json:"title"`
	Summary             string   `json:"summary"`
	Image               string   `json:"image"`
	ReadyInMinutes      int      `json:"readyInMinutes"`
	Servings            int      `json:"servings"`
	Diets               []string `json:"diets"`
	ExtendedIngredients []struct {
		Name     string `json:"name"`
		Measures struct {
			US struct {
				Amount    *float64 `json:"amount"`
				UnitShort string   `json:"unitShort"`
			} `json:"us"`
		} `json:"measures"`
	} `json:"extendedIngredients"`
	AnalyzedInstructions []struct {
		Steps []struct {
			Step string `json:"step"`
		} `json:"steps"`
	} `json:"analyzedInstructions"`
	Nutrition *Nutrition `json:"nutrition"`
}

type Nutrition struct {
	Nutrients []Nutrient `json:"nutrients"`
}

type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

var summaryPolicy = bluemonday.StrictPolicy()

// ToRecipe maps the API payload. ok is false when the recipe has no
// analyzed instruction steps.
func (in *Information) ToRecipe() (models.Recipe, bool) {
	if len(in.AnalyzedInstructions) == 0 || len(in.AnalyzedInstructions[0].Steps) == 0 {
		return models.Recipe{}, false
	}

	ings := make([]models.Ingredient, 0, len(in.ExtendedIngredients))
	for _, ei := range in.ExtendedIngredients {
		amount := "1"
		if a := ei.Measures.US.Amount; a != nil {
			amount = cart.FormatAmount(*a)
		}
		ings = append(ings, models.Ingredient{
			Amount: amount,
			Unit:   ei.Measures.US.UnitShort,
			Name:   ei.Name,
		})
	}

	steps := in.AnalyzedInstructions[0].Steps
	instructions := make([]string, 0, len(steps))
	for _, s := range steps {
		instructions = append(instructions, s.Step)
	}

	return models.Recipe{
		ID:           strconv.FormatInt(in.ID, 10),
		Title:        in.Title,
		Description:  StripHTML(in.Summary),
		Image:        in.Image,
		Tags:         ExtractTags(in),
		CookTime:     in.ReadyInMinutes,
		Servings:     in.Servings,
		Ingredients:  ings,
		Instructions: instructions,
	}, true
}

// StripHTML removes all markup from s and collapses whitespace.
func StripHTML(s string) string {
	s = html.UnescapeString(summaryPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

package models

// Recipe is a catalog entry as served to the client. Field names on the wire
// match the web client (cookTime, not cook_time).
type Recipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Image        string       `json:"image"`
	Tags         []string     `json:"tags"`
	CookTime     int          `json:"cookTime"`
	Servings     int          `json:"servings"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
}

// Ingredient amounts stay strings end to end; they are only parsed when the
// cart aggregates them.
type Ingredient struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Name   string `json:"name"`
}

// HasTag reports whether the recipe carries tag id t.
func (r Recipe) HasTag(t string) bool {
	for _, tag := range r.Tags {
		if tag == t {
			return true
		}
	}
	return false
}

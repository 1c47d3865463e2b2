package models

type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AvailableTags is the fixed filter vocabulary shown by the client.
var AvailableTags = []Tag{
	{ID: "vegan", Label: "Vegan"},
	{ID: "vegetarian", Label: "Vegetarian"},
	{ID: "quick", Label: "Quick & Easy"},
	{ID: "dessert", Label: "Dessert"},
	{ID: "breakfast", Label: "Breakfast"},
	{ID: "lunch", Label: "Lunch"},
	{ID: "dinner", Label: "Dinner"},
	{ID: "gluten-free", Label: "Gluten Free"},
	{ID: "low-carb", Label: "Low Carb"},
	{ID: "high-protein", Label: "High Protein"},
}

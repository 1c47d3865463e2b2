package fetcher

// ExtractTags derives catalog tag ids from cook time, diets and nutrition.
// Nutrition thresholds only apply when the payload carries nutrients.
func ExtractTags(in *Information) []string {
	tags := []string{}

	if in.ReadyInMinutes <= 30 {
		tags = append(tags, "quick")
	}
	for _, diet := range []string{"vegan", "vegetarian", "gluten-free"} {
		if contains(in.Diets, diet) {
			tags = append(tags, diet)
		}
	}

	if in.Nutrition != nil && in.Nutrition.Nutrients != nil {
		protein := nutrientAmount(in.Nutrition.Nutrients, "Protein")
		carbs := nutrientAmount(in.Nutrition.Nutrients, "Carbohydrates")
		if protein >= 20 {
			tags = append(tags, "high-protein")
		}
		if carbs <= 20 {
			tags = append(tags, "low-carb")
		}
	}
	return tags
}

func nutrientAmount(ns []Nutrient, name string) float64 {
	for _, n := range ns {
		if n.Name == name {
			return n.Amount
		}
	}
	return 0
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

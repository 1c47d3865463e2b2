package cart

import "strings"

// KeySeparator joins the name and unit parts of an ingredient key.
const KeySeparator = "|"

// IngredientKey identifies a cart line. Two ingredients are the same line
// iff their names and units match case-insensitively; the amount plays no
// part.
func IngredientKey(name, unit string) string {
	return strings.ToLower(name) + KeySeparator + strings.ToLower(unit)
}

package sync

import "time"

const (
	EventCartUpdated      = "cart.updated"
	EventCartCleared      = "cart.cleared"
	EventFavoritesUpdated = "favorites.updated"
)

// Notifier fans an Event out to a user's open clients. Hub is the
// websocket implementation.
type Notifier interface {
	Notify(userID, typ, recipeID, key string)
}

// Event tells a user's other open clients that their state changed and
// should be re-read.
type Event struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	RecipeID string    `json:"recipe_id,omitempty"`
	Key      string    `json:"key,omitempty"`
	At       time.Time `json:"at"`
}

// Package cart aggregates recipe ingredients into a shopping list.
//
// Two ledgers are persisted in a kvstore.Store: the ingredient ledger
// ("cartMap", ingredient key -> line) and the contribution ledger
// ("cartRecipeMap", recipe id -> number of copies in the cart). Each
// mutation reads both and writes them back whole inside one store
// transaction, so writers in other processes cannot interleave.
//
// Malformed amounts count as zero and missing keys or recipe ids are no-ops;
// the only errors returned come from the underlying store.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"recipehub/internal/kvstore"
	"recipehub/pkg/models"
)

const (
	CartMapKey       = "cartMap"
	CartRecipeMapKey = "cartRecipeMap"
)

var ledgerKeys = []string{CartMapKey, CartRecipeMapKey}

// Cart is the aggregator for one client's ledgers.
type Cart struct {
	store kvstore.Store
	mu    *sync.Mutex
}

// New returns a Cart persisting into store. Operations on the returned Cart
// are serialized; two Carts over the same store are not, use Service for that.
func New(store kvstore.Store) *Cart {
	return &Cart{store: store, mu: &sync.Mutex{}}
}

type ledgers struct {
	lines  map[string]models.CartItem
	counts map[string]int
}

// AddRecipeIngredients adds every ingredient to the cart, merging lines that
// share a key. A non-empty recipeID bumps that recipe's contribution count.
func (c *Cart) AddRecipeIngredients(ctx context.Context, ingredients []models.Ingredient, recipeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mutate(ctx, recipeID != "", func(l *ledgers) bool {
		l.add(ingredients, recipeID)
		return true
	})
}

// RemoveRecipeIngredients reverses one AddRecipeIngredients call. Lines that
// drop to zero or below are deleted. A recipe count of 1 or less removes the
// recipe id.
func (c *Cart) RemoveRecipeIngredients(ctx context.Context, ingredients []models.Ingredient, recipeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mutate(ctx, recipeID != "", func(l *ledgers) bool {
		l.remove(ingredients, recipeID)
		return true
	})
}

// RemoveRecipe takes every copy of recipeID out of the cart: its ingredients
// are subtracted once per recorded copy. No-op when the recipe is not in the
// cart.
func (c *Cart) RemoveRecipe(ctx context.Context, ingredients []models.Ingredient, recipeID string) error {
	if recipeID == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mutate(ctx, true, func(l *ledgers) bool {
		n := l.counts[recipeID]
		for i := 0; i < n; i++ {
			l.remove(ingredients, recipeID)
		}
		return n > 0
	})
}

// ToggleIngredientCheck flips the checked flag of the line stored under key.
func (c *Cart) ToggleIngredientCheck(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mutate(ctx, false, func(l *ledgers) bool {
		item, ok := l.lines[key]
		if !ok {
			return false
		}
		item.Checked = !item.Checked
		l.lines[key] = item
		return true
	})
}

// ClearCart drops both ledgers.
func (c *Cart) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Update(ctx, ledgerKeys, func(map[string]string) (map[string]string, error) {
		return map[string]string{}, nil
	})
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// GetCart lists the cart lines ordered by key.
func (c *Cart) GetCart(ctx context.Context) ([]models.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return l.sortedLines(), nil
}

// GetRecipeCounts returns the contribution ledger.
func (c *Cart) GetRecipeCounts(ctx context.Context) (map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return l.counts, nil
}

// Snapshot reads lines and counts under a single lock.
func (c *Cart) Snapshot(ctx context.Context) ([]models.CartLine, map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return l.sortedLines(), l.counts, nil
}

// GroceryList renders the cart as printable text, one bullet per line.
func (c *Cart) GroceryList(ctx context.Context) (string, error) {
	lines, err := c.GetCart(ctx)
	if err != nil {
		return "", err
	}
	return FormatGroceryList(lines), nil
}

// FormatGroceryList is the text export of lines: a "Grocery List" heading
// then "• [x] 2 cup Flour" style bullets.
func FormatGroceryList(lines []models.CartLine) string {
	var b strings.Builder
	b.WriteString("Grocery List\n")
	for _, ln := range lines {
		mark := "[ ]"
		if ln.Checked {
			mark = "[x]"
		}
		parts := []string{"•", mark}
		for _, p := range []string{ln.Amount, ln.Unit, ln.Name} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func (l *ledgers) add(ingredients []models.Ingredient, recipeID string) {
	for _, ing := range ingredients {
		key := IngredientKey(ing.Name, ing.Unit)
		delta := ParseAmount(ing.Amount)

		item, ok := l.lines[key]
		if !ok {
			l.lines[key] = models.CartItem{
				Name:   ing.Name,
				Unit:   ing.Unit,
				Amount: FormatAmount(delta),
			}
			continue
		}
		item.Amount = FormatAmount(ParseAmount(item.Amount) + delta)
		l.lines[key] = item
	}

	if recipeID != "" {
		l.counts[recipeID]++
	}
}

func (l *ledgers) remove(ingredients []models.Ingredient, recipeID string) {
	for _, ing := range ingredients {
		key := IngredientKey(ing.Name, ing.Unit)
		item, ok := l.lines[key]
		if !ok {
			continue
		}
		left := ParseAmount(item.Amount) - ParseAmount(ing.Amount)
		if left > 0 {
			item.Amount = FormatAmount(left)
			l.lines[key] = item
		} else {
			delete(l.lines, key)
		}
	}

	if recipeID != "" {
		if l.counts[recipeID] > 1 {
			l.counts[recipeID]--
		} else {
			delete(l.counts, recipeID)
		}
	}
}

func (l *ledgers) sortedLines() []models.CartLine {
	keys := make([]string, 0, len(l.lines))
	for k := range l.lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.CartLine, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.CartLine{Key: k, CartItem: l.lines[k]})
	}
	return out
}

func (c *Cart) load(ctx context.Context) (*ledgers, error) {
	raw := make(map[string]string, len(ledgerKeys))
	for _, key := range ledgerKeys {
		v, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if ok {
			raw[key] = v
		}
	}
	return decodeLedgers(raw)
}

// mutate applies fn to the stored ledgers and writes them back in a single
// store transaction. fn reports whether it changed anything; when it did not,
// nothing is written. The contribution ledger is only rewritten when
// withCounts is set.
func (c *Cart) mutate(ctx context.Context, withCounts bool, fn func(*ledgers) bool) error {
	return c.store.Update(ctx, ledgerKeys, func(current map[string]string) (map[string]string, error) {
		l, err := decodeLedgers(current)
		if err != nil {
			return nil, err
		}
		if !fn(l) {
			return nil, nil
		}

		next := make(map[string]string, len(ledgerKeys))
		b, err := json.Marshal(l.lines)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", CartMapKey, err)
		}
		next[CartMapKey] = string(b)

		if !withCounts {
			if raw, ok := current[CartRecipeMapKey]; ok {
				next[CartRecipeMapKey] = raw
			}
			return next, nil
		}
		b, err = json.Marshal(l.counts)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", CartRecipeMapKey, err)
		}
		next[CartRecipeMapKey] = string(b)
		return next, nil
	})
}

func decodeLedgers(raw map[string]string) (*ledgers, error) {
	l := &ledgers{
		lines:  make(map[string]models.CartItem),
		counts: make(map[string]int),
	}
	if err := decodeJSON(raw, CartMapKey, &l.lines); err != nil {
		return nil, err
	}
	if err := decodeJSON(raw, CartRecipeMapKey, &l.counts); err != nil {
		return nil, err
	}
	return l, nil
}

func decodeJSON(raw map[string]string, key string, dst any) error {
	v := strings.TrimSpace(raw[key])
	if v == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Package favorites keeps each user's favorite recipe ids as an ordered set,
// stored as a JSON array under "favorites" next to (but independent of) the
// cart ledgers.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"recipehub/internal/kvstore"
)

const StoreKey = "favorites"

type Set struct {
	store kvstore.Store
	mu    *sync.Mutex
}

type Service struct {
	store kvstore.Store
	locks kvstore.Locks
}

func NewService(store kvstore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) For(scope string) *Set {
	return &Set{store: kvstore.Scoped(s.store, scope), mu: s.locks.For(scope)}
}

// List returns ids in the order they were favorited.
func (f *Set) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(ctx)
}

func (f *Set) Contains(ctx context.Context, id string) (bool, error) {
	ids, err := f.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(ids, id) >= 0, nil
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is a favorite afterwards.
func (f *Set) Toggle(ctx context.Context, id string) (bool, error) {
	var now bool
	err := f.update(ctx, func(ids []string) []string {
		now = false
		if i := indexOf(ids, id); i >= 0 {
			return append(ids[:i], ids[i+1:]...)
		}
		now = true
		return append(ids, id)
	})
	return now, err
}

func (f *Set) Add(ctx context.Context, id string) error {
	return f.update(ctx, func(ids []string) []string {
		if indexOf(ids, id) >= 0 {
			return ids
		}
		return append(ids, id)
	})
}

func (f *Set) Remove(ctx context.Context, id string) error {
	return f.update(ctx, func(ids []string) []string {
		if i := indexOf(ids, id); i >= 0 {
			return append(ids[:i], ids[i+1:]...)
		}
		return ids
	})
}

func (f *Set) update(ctx context.Context, fn func([]string) []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.store.Update(ctx, []string{StoreKey}, func(current map[string]string) (map[string]string, error) {
		ids, err := decode(current[StoreKey])
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(fn(ids))
		if err != nil {
			return nil, fmt.Errorf("encode favorites: %w", err)
		}
		return map[string]string{StoreKey: string(b)}, nil
	})
}

func (f *Set) load(ctx context.Context) ([]string, error) {
	raw, _, err := f.store.Get(ctx, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	return decode(raw)
}

func decode(raw string) ([]string, error) {
	ids := []string{}
	if strings.TrimSpace(raw) == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return ids, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Package kvstore is the durable key-value storage the cart and favorites
// ledgers are persisted in. Values are opaque strings (JSON documents in
// practice) read and written whole.
package kvstore

import (
	"context"
	"slices"
	"sort"
	"strings"
)

// Store is a string key-value store scoped to one client.
// Get reports ok=false for an absent key; that is not an error.
//
// Update is the read-modify-write primitive: it is atomic against every other
// Update on the same keys, including ones issued by other processes sharing
// the backend.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, keys []string, fn UpdateFunc) error
}

// UpdateFunc receives the present values among the requested keys and returns
// their new contents. Requested keys missing from the result are deleted; a
// nil result writes nothing. An error aborts the update with nothing written.
// fn may run more than once and must not call back into the store.
type UpdateFunc func(current map[string]string) (map[string]string, error)

// changes diffs next against current over keys. Keys come back sorted so
// backends apply writes in a stable order.
func changes(keys []string, current, next map[string]string) (set map[string]string, del []string) {
	set = make(map[string]string)
	for _, k := range sortedUnique(keys) {
		if v, ok := next[k]; ok {
			set[k] = v
			continue
		}
		if _, ok := current[k]; ok {
			del = append(del, k)
		}
	}
	return set, del
}

func sortedUnique(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return slices.Compact(out)
}

// Scoped prefixes every key with "scope:" so several users can share one
// backing store without seeing each other's records.
func Scoped(s Store, scope string) Store {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return s
	}
	return scoped{inner: s, prefix: scope + ":"}
}

type scoped struct {
	inner  Store
	prefix string
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s scoped) Update(ctx context.Context, keys []string, fn UpdateFunc) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.inner.Update(ctx, full, func(current map[string]string) (map[string]string, error) {
		local := make(map[string]string, len(current))
		for k, v := range current {
			local[strings.TrimPrefix(k, s.prefix)] = v
		}
		next, err := fn(local)
		if err != nil || next == nil {
			return nil, err
		}
		out := make(map[string]string, len(next))
		for k, v := range next {
			out[s.prefix+k] = v
		}
		return out, nil
	})
}

package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"recipehub/pkg/utils"
)

// Open builds the backend selected by cfg. The returned close func is always
// non-nil.
func Open(ctx context.Context, cfg utils.StoreConfig, db *sql.DB) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "", "sqlite":
		if db == nil {
			return nil, noop, fmt.Errorf("sqlite store needs a database handle")
		}
		return NewSQLiteStore(db), noop, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	case "redis":
		rs, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, noop, err
		}
		return rs, rs.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

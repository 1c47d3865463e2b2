package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"recipehub/internal/catalog"
	"recipehub/pkg/database"
	"recipehub/pkg/logger"
)

func main() {
	in := flag.String("in", "recipes.json", "recipes.json file to import")
	flag.Parse()

	log, err := logger.New("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", "err", err)
	}

	recipes, err := catalog.LoadFile(*in)
	if err != nil {
		log.Fatal("load failed", "path", *in, "err", err)
	}

	repo := catalog.NewRepo(db)
	if err := repo.UpsertAll(ctx, recipes); err != nil {
		log.Fatal("import failed", "err", err)
	}
	total, err := repo.Count(ctx, catalog.ListQuery{})
	if err != nil {
		log.Fatal("count failed", "err", err)
	}
	log.Info("imported recipes", "count", len(recipes), "catalog_total", total, "db", cfg.Path)
}

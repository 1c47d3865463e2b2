package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"recipehub/internal/catalog"
	"recipehub/internal/fetcher"
	"recipehub/pkg/database"
	"recipehub/pkg/logger"
)

func main() {
	var (
		number = flag.Int("number", 69, "recipes to request from complexSearch")
		out    = flag.String("out", "recipes.json", "output JSON path (empty to skip)")
		toDB   = flag.Bool("db", false, "also upsert into the catalog database")
		mode   = flag.String("log", "dev", "log mode: dev|prod")
	)
	flag.Parse()

	log, err := logger.New(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	apiKey := strings.TrimSpace(os.Getenv("SPOONACULAR_API_KEY"))
	if apiKey == "" {
		log.Fatal("SPOONACULAR_API_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	client := fetcher.NewClient(apiKey, log.With("service", "fetcher"))
	recipes, err := client.FetchRecipes(ctx, *number)
	if err != nil {
		log.Fatal("fetch failed", "err", err)
	}

	if *out != "" {
		if err := fetcher.WriteFile(*out, recipes); err != nil {
			log.Fatal("write failed", "err", err)
		}
		log.Info("saved recipes", "count", len(recipes), "path", *out)
	}

	if *toDB {
		cfg := database.DefaultConfig()
		db := database.MustOpen(cfg)
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			log.Fatal("db migrate failed", "err", err)
		}
		if err := fetcher.SaveToCatalog(ctx, catalog.NewRepo(db), recipes); err != nil {
			log.Fatal("save failed", "err", err)
		}
		log.Info("catalog updated", "count", len(recipes), "db", cfg.Path)
	}
}

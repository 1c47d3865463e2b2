package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"recipehub/internal/catalog"
	"recipehub/pkg/database"
	"recipehub/pkg/logger"
	"recipehub/pkg/models"
)

const pageSize = 100

func main() {
	var (
		jsonOut = flag.String("json", "data/recipes.json", "output JSON path (empty to skip)")
		csvOut  = flag.String("csv", "", "output CSV path (empty to skip)")
	)
	flag.Parse()

	log, err := logger.New("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", "err", err)
	}

	recipes, err := loadAll(ctx, catalog.NewRepo(db))
	if err != nil {
		log.Fatal("read catalog failed", "err", err)
	}

	if *jsonOut != "" {
		if err := writeFile(*jsonOut, func(w io.Writer) error { return catalog.WriteJSON(w, recipes) }); err != nil {
			log.Fatal("export json failed", "err", err)
		}
		log.Info("exported json", "count", len(recipes), "path", *jsonOut)
	}
	if *csvOut != "" {
		if err := writeFile(*csvOut, func(w io.Writer) error { return writeCSV(w, recipes) }); err != nil {
			log.Fatal("export csv failed", "err", err)
		}
		log.Info("exported csv", "count", len(recipes), "path", *csvOut)
	}
}

func loadAll(ctx context.Context, repo *catalog.Repo) ([]models.Recipe, error) {
	var all []models.Recipe
	for offset := 0; ; offset += pageSize {
		page, err := repo.List(ctx, catalog.ListQuery{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeCSV writes one row per recipe ingredient, which is the shape
// spreadsheet users want for bulk shopping.
func writeCSV(w io.Writer, recipes []models.Recipe) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"recipe_id", "title", "cook_time", "servings", "tags", "amount", "unit", "ingredient"}); err != nil {
		return err
	}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if err := cw.Write([]string{
				r.ID,
				r.Title,
				strconv.Itoa(r.CookTime),
				strconv.Itoa(r.Servings),
				strings.Join(r.Tags, ";"),
				ing.Amount,
				ing.Unit,
				ing.Name,
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"recipehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string   // keyword search in title
	Tags   []string // any-match
	Limit  int
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const recipeColumns = `id, title, description, image, tags, cook_time, servings, ingredients, instructions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var (
		r            models.Recipe
		description  sql.NullString
		image        sql.NullString
		tagsJSON     string
		cookTime     sql.NullInt64
		servings     sql.NullInt64
		ingredients  string
		instructions string
	)
	if err := row.Scan(&r.ID, &r.Title, &description, &image, &tagsJSON, &cookTime, &servings, &ingredients, &instructions); err != nil {
		return r, err
	}
	r.Description = description.String
	r.Image = image.String
	if cookTime.Valid {
		r.CookTime = int(cookTime.Int64)
	}
	if servings.Valid {
		r.Servings = int(servings.Int64)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
		return r, fmt.Errorf("decode tags of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return r, fmt.Errorf("decode ingredients of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(instructions), &r.Instructions); err != nil {
		return r, fmt.Errorf("decode instructions of %s: %w", r.ID, err)
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r, nil
}

// FindByID returns nil, nil when the recipe does not exist.
func (r *Repo) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find recipe %s: %w", id, err)
	}
	return &rec, nil
}

// FindByIDs resolves ids in order, skipping ones that are not in the catalog.
func (r *Repo) FindByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		rec, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Recipe, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Recipe, 0, clampLimit(q.Limit))
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// UpsertAll writes recipes in one transaction, replacing existing rows.
func (r *Repo) UpsertAll(ctx context.Context, recipes []models.Recipe) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  description = excluded.description,
		  image = excluded.image,
		  tags = excluded.tags,
		  cook_time = excluded.cook_time,
		  servings = excluded.servings,
		  ingredients = excluded.ingredients,
		  instructions = excluded.instructions
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recipes {
		tags, err := json.Marshal(nonNil(rec.Tags))
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", rec.ID, err)
		}
		ingredients := rec.Ingredients
		if ingredients == nil {
			ingredients = []models.Ingredient{}
		}
		ings, err := json.Marshal(ingredients)
		if err != nil {
			return fmt.Errorf("marshal ingredients for %s: %w", rec.ID, err)
		}
		steps, err := json.Marshal(nonNil(rec.Instructions))
		if err != nil {
			return fmt.Errorf("marshal instructions for %s: %w", rec.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Title, rec.Description, rec.Image, string(tags),
			rec.CookTime, rec.Servings, string(ings), string(steps),
		); err != nil {
			return fmt.Errorf("exec upsert for %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// buildListSQL builds either COUNT(*) or SELECT list.
// Tags are any-match: a recipe is listed when one of its tags is requested.
// Tags are stored as a JSON array, so each tag is matched with its quotes.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	sqlStr := `SELECT ` + recipeColumns + ` FROM recipes`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM recipes`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}

	var tagOr []string
	for _, t := range q.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tagOr = append(tagOr, "tags LIKE ?")
		args = append(args, `%"`+t+`"%`)
	}
	if len(tagOr) > 0 {
		where = append(where, "("+strings.Join(tagOr, " OR ")+")")
	}

	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		sqlStr += " ORDER BY title ASC LIMIT ? OFFSET ?"
		args = append(args, clampLimit(q.Limit), offset)
	}
	return sqlStr, args
}

func clampLimit(n int) int {
	if n <= 0 || n > 100 {
		return 20
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

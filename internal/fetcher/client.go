// Package fetcher pulls recipes from the Spoonacular API and maps them into
// catalog recipes.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"recipehub/pkg/logger"
	"recipehub/pkg/models"
)

const DefaultBaseURL = "https://api.spoonacular.com"

// Client talks to Spoonacular. BaseURL is overridable for tests.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
	Log     *logger.Logger
}

func NewClient(apiKey string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		Log:     log,
	}
}

type searchResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

// SearchIDs returns up to number recipe ids that carry instructions.
func (c *Client) SearchIDs(ctx context.Context, number int) ([]int64, error) {
	q := url.Values{}
	q.Set("number", strconv.Itoa(number))
	q.Set("instructionsRequired", "true")

	var sr searchResponse
	if err := c.getJSON(ctx, "/recipes/complexSearch", q, &sr); err != nil {
		return nil, fmt.Errorf("spoonacular: search: %w", err)
	}

	ids := make([]int64, 0, len(sr.Results))
	for _, r := range sr.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Information fetches one recipe with nutrition.
func (c *Client) Information(ctx context.Context, id int64) (*Information, error) {
	q := url.Values{}
	q.Set("includeNutrition", "true")

	var info Information
	path := fmt.Sprintf("/recipes/%d/information", id)
	if err := c.getJSON(ctx, path, q, &info); err != nil {
		return nil, fmt.Errorf("spoonacular: recipe %d: %w", id, err)
	}
	return &info, nil
}

// FetchRecipes searches for number recipes and maps every one that has
// instruction steps. Detail failures are logged and skipped; only a failed
// search aborts.
func (c *Client) FetchRecipes(ctx context.Context, number int) ([]models.Recipe, error) {
	ids, err := c.SearchIDs(ctx, number)
	if err != nil {
		return nil, err
	}
	c.Log.Info("search done", "ids", len(ids))

	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		info, err := c.Information(ctx, id)
		if err != nil {
			c.Log.Warn("skip recipe", "id", id, "err", err)
			continue
		}
		r, ok := info.ToRecipe()
		if !ok {
			c.Log.Debug("skip recipe without steps", "id", id)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	q.Set("apiKey", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

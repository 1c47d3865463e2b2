package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"recipehub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type authResponse struct {
	Token string `json:"token"`
}

type recipeListResponse struct {
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Items  []models.Recipe `json:"items"`
}

type cartResponse struct {
	Items        []models.CartLine `json:"items"`
	RecipeCounts map[string]int    `json:"recipe_counts"`
}

func main() {
	global := flag.NewFlagSet("recipehub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd, sub, rest := args[0], args[1], args[2:]
	api := &apiClient{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		BaseURL: strings.TrimRight(*baseURL, "/"),
	}

	switch cmd {
	case "auth":
		handleAuth(ctx, api, *tokenPath, sub, rest)
	case "recipes":
		handleRecipes(ctx, api, sub, rest)
	case "cart":
		api.Token = mustToken(*tokenPath)
		handleCart(ctx, api, sub, rest)
	case "favorites":
		api.Token = mustToken(*tokenPath)
		handleFavorites(ctx, api, sub, rest)
	case "watch":
		endpoint, err := websocketURL(api.BaseURL, "/ws", mustToken(*tokenPath))
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, api *apiClient, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := api.doJSON(ctx, http.MethodPost, "/auth/login", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := api.doJSON(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if token, err := readToken(tokenPath); err == nil && token != "" {
			api.Token = token
			// best effort: the server bumps the token version
			_ = api.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
		}
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: recipehub auth <login|register|logout>")
	}
}

func handleRecipes(ctx context.Context, api *apiClient, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("recipes search", flag.ExitOnError)
		query := fs.String("q", "", "title search")
		tags := fs.String("tags", "", "comma-separated tag ids")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		qv := url.Values{}
		if *query != "" {
			qv.Set("q", *query)
		}
		if *tags != "" {
			qv.Set("tags", *tags)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))

		var resp recipeListResponse
		if err := api.doJSON(ctx, http.MethodGet, "/recipes?"+qv.Encode(), nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		for _, r := range resp.Items {
			fmt.Printf("%-10s %-40s %3d min  %s\n", r.ID, r.Title, r.CookTime, strings.Join(r.Tags, ","))
		}
		fmt.Printf("%d of %d\n", len(resp.Items), resp.Total)
	case "show":
		id := mustArg(args, "recipe id is required")
		var resp models.Recipe
		if err := api.doJSON(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "tags":
		var resp map[string]any
		if err := api.doJSON(ctx, http.MethodGet, "/tags", nil, &resp); err != nil {
			log.Fatalf("tags failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: recipehub recipes <search|show|tags>")
	}
}

func handleCart(ctx context.Context, api *apiClient, sub string, args []string) {
	var (
		method string
		path   string
		body   any
	)
	switch sub {
	case "show":
		method, path = http.MethodGet, "/users/cart"
	case "add":
		method, path = http.MethodPost, "/users/cart/recipes/"+url.PathEscape(mustArg(args, "recipe id is required"))
	case "remove":
		method, path = http.MethodDelete, "/users/cart/recipes/"+url.PathEscape(mustArg(args, "recipe id is required"))
	case "remove-all":
		method, path = http.MethodDelete, "/users/cart/recipes/"+url.PathEscape(mustArg(args, "recipe id is required"))+"/all"
	case "check":
		method, path = http.MethodPost, "/users/cart/items/toggle"
		body = map[string]string{"key": mustArg(args, "item key is required")}
	case "clear":
		if err := api.doJSON(ctx, http.MethodDelete, "/users/cart", nil, nil); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		fmt.Println("cart cleared")
		return
	case "export":
		text, err := api.doText(ctx, "/users/cart/export")
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Print(text)
		return
	default:
		log.Fatal("usage: recipehub cart <show|add|remove|remove-all|check|clear|export>")
	}

	var resp cartResponse
	if err := api.doJSON(ctx, method, path, body, &resp); err != nil {
		log.Fatalf("cart %s failed: %v", sub, err)
	}
	printCart(resp)
}

func handleFavorites(ctx context.Context, api *apiClient, sub string, args []string) {
	var (
		method string
		path   string
	)
	switch sub {
	case "list":
		method, path = http.MethodGet, "/users/favorites"
	case "toggle":
		method, path = http.MethodPost, "/users/favorites/"+url.PathEscape(mustArg(args, "recipe id is required"))+"/toggle"
	case "add":
		method, path = http.MethodPut, "/users/favorites/"+url.PathEscape(mustArg(args, "recipe id is required"))
	case "remove":
		method, path = http.MethodDelete, "/users/favorites/"+url.PathEscape(mustArg(args, "recipe id is required"))
	default:
		log.Fatal("usage: recipehub favorites <list|toggle|add|remove>")
	}

	var resp map[string]any
	if err := api.doJSON(ctx, method, path, nil, &resp); err != nil {
		log.Fatalf("favorites %s failed: %v", sub, err)
	}
	printJSON(resp)
}

func printCart(c cartResponse) {
	if len(c.Items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, it := range c.Items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Printf("[%s] %-24s %s %s %s\n", mark, it.Key, it.Amount, it.Unit, it.Name)
	}
	for id, n := range c.RecipeCounts {
		fmt.Printf("recipe %s x%d\n", id, n)
	}
}

func mustArg(args []string, msg string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		log.Fatal(msg)
	}
	return strings.TrimSpace(args[0])
}

func printUsage() {
	fmt.Println("recipehub [-api url] [-token path] <command> <subcommand> [args]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  recipes search|show <id>|tags")
	fmt.Println("  cart show|add <id>|remove <id>|remove-all <id>|check <key>|clear|export")
	fmt.Println("  favorites list|toggle <id>|add <id>|remove <id>")
	fmt.Println("  watch events")
}

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	require.NoError(t, saveToken(path, "abc"))
	tok, err := readToken(path)
	require.NoError(t, err)
	require.Equal(t, "abc", tok)

	require.NoError(t, clearToken(path))
	require.NoError(t, clearToken(path))
	require.Error(t, saveToken(path, ""))
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://api.example.com", "/ws", "t k")
	require.NoError(t, err)
	require.Equal(t, "wss://api.example.com/ws?token=t+k", u)
}

func TestAPIClientSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"items":[],"recipe_counts":{}}`))
	}))
	defer srv.Close()

	api := &apiClient{HTTP: srv.Client(), BaseURL: srv.URL}
	var out cartResponse
	require.ErrorContains(t, api.doJSON(context.Background(), http.MethodGet, "/users/cart", nil, &out), "unauthorized")

	api.Token = "tok"
	require.NoError(t, api.doJSON(context.Background(), http.MethodGet, "/users/cart", nil, &out))
	require.Empty(t, out.Items)
}

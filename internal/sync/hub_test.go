package sync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"recipehub/internal/auth"
)

func newServer(t *testing.T) (*httptest.Server, *Hub, auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.TokenService{Secret: []byte("s"), Issuer: "test", Duration: time.Hour}
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", WSHandler(hub, auth.Verifier{Tokens: tokens}, nil))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, tokens
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "welcome")
	return ws
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Stats().Clients == n }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishReachesOnlyThatUser(t *testing.T) {
	srv, hub, tokens := newServer(t)

	aliceTok, _, err := tokens.Sign(&auth.User{ID: "alice"})
	require.NoError(t, err)
	bobTok, _, err := tokens.Sign(&auth.User{ID: "bob"})
	require.NoError(t, err)

	alice := dial(t, srv, aliceTok)
	bob := dial(t, srv, bobTok)
	waitForClients(t, hub, 2)
	require.Equal(t, 2, hub.Stats().Users)

	hub.Notify("alice", EventCartUpdated, "A", "")

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := alice.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	require.Equal(t, EventCartUpdated, ev.Type)
	require.Equal(t, "A", ev.RecipeID)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	require.Error(t, err)
}

func TestDisconnectRemovesClient(t *testing.T) {
	srv, hub, tokens := newServer(t)
	tok, _, err := tokens.Sign(&auth.User{ID: "alice"})
	require.NoError(t, err)

	ws := dial(t, srv, tok)
	waitForClients(t, hub, 1)
	require.NoError(t, ws.Close())
	waitForClients(t, hub, 0)
}

func TestUnauthorizedHandshake(t *testing.T) {
	srv, _, _ := newServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWelcomePrecedesPublishedEvents(t *testing.T) {
	srv, hub, tokens := newServer(t)
	tok, _, err := tokens.Sign(&auth.User{ID: "alice"})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	waitForClients(t, hub, 1)
	hub.Notify("alice", EventCartCleared, "", "")

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"welcome","transport":"websocket"}`, string(msg))

	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	require.Equal(t, EventCartCleared, ev.Type)
}

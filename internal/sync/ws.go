package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"recipehub/internal/auth"
	"recipehub/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades GET /ws. Browsers cannot set headers on a websocket
// handshake, so the token may also come as ?token=.
func WSHandler(hub *Hub, v auth.Verifier, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		raw, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			raw = c.Query("token")
		}
		claims, err := v.Verify(c.Request.Context(), raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// Publish writes under the hub lock, so the welcome must go out
		// before the connection is visible to it.
		if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`)); err != nil {
			_ = ws.Close()
			return
		}
		hub.Add(claims.UserID, ws)
		log.Debug("ws client connected", "user", claims.UserID)

		// Nothing is expected from the client; reading detects the close.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(claims.UserID, ws)
		log.Debug("ws client disconnected", "user", claims.UserID)
	}
}

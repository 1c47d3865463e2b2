// Package server assembles the HTTP API.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"recipehub/internal/auth"
	"recipehub/internal/cart"
	"recipehub/internal/catalog"
	"recipehub/internal/favorites"
	"recipehub/internal/kvstore"
	"recipehub/internal/sync"
	"recipehub/pkg/logger"
)

type RouterConfig struct {
	DB          *sql.DB
	Store       kvstore.Store
	Tokens      auth.TokenService
	Hub         *sync.Hub
	Log         *logger.Logger
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = sync.NewHub()
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := cfg.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.Clients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"users":      stats.Users,
			"ws_clients": stats.Clients,
		})
	})

	// Catalog (public)
	catRepo := catalog.NewRepo(cfg.DB)
	catalog.NewHandler(catRepo).RegisterRoutes(router.Group(""))

	// Auth
	authHandler := auth.NewHandler(auth.NewRepo(cfg.DB), cfg.Tokens, log)
	authHandler.RegisterRoutes(router.Group("/auth"))
	verifier := authHandler.Verifier()

	router.GET("/ws", sync.WSHandler(hub, verifier, log))

	// Protected
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(verifier))
	authHandler.RegisterProtectedRoutes(protected)

	cart.NewHandler(cart.NewService(cfg.Store), catRepo, hub, log).RegisterRoutes(protected)
	favorites.NewHandler(favorites.NewService(cfg.Store), catRepo, hub).RegisterRoutes(protected)

	return router
}

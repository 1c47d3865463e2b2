package favorites

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipehub/internal/auth"
	"recipehub/internal/catalog"
	"recipehub/internal/sync"
)

type Handler struct {
	Service *Service
	Catalog *catalog.Repo
	Hub     sync.Notifier
}

func NewHandler(svc *Service, cat *catalog.Repo, hub sync.Notifier) *Handler {
	return &Handler{Service: svc, Catalog: cat, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favorites", h.list)
	rg.POST("/favorites/:id/toggle", h.toggle)
	rg.PUT("/favorites/:id", h.add)
	rg.DELETE("/favorites/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ids, err := h.Service.For(claims.UserID).List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	recipes, err := h.Catalog.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ids":     ids,
		"recipes": recipes,
	})
}

func (h *Handler) toggle(c *gin.Context) {
	claims, id, ok := h.target(c)
	if !ok {
		return
	}
	now, err := h.Service.For(claims.UserID).Toggle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle failed"})
		return
	}
	h.notify(claims.UserID, id)
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": now})
}

func (h *Handler) add(c *gin.Context) {
	claims, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.Service.For(claims.UserID).Add(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	h.notify(claims.UserID, id)
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": true})
}

func (h *Handler) remove(c *gin.Context) {
	claims, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.Service.For(claims.UserID).Remove(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	h.notify(claims.UserID, id)
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": false})
}

// target resolves the caller and the recipe id path param. Only catalog
// recipes can be favorited.
func (h *Handler) target(c *gin.Context) (*auth.Claims, string, bool) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, "", false
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe id required"})
		return nil, "", false
	}
	rec, err := h.Catalog.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return nil, "", false
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return nil, "", false
	}
	return claims, id, true
}

func (h *Handler) notify(userID, recipeID string) {
	if h.Hub != nil {
		h.Hub.Notify(userID, sync.EventFavoritesUpdated, recipeID, "")
	}
}

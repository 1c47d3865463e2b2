package cart

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipehub/internal/auth"
	"recipehub/internal/catalog"
	"recipehub/internal/sync"
	"recipehub/pkg/logger"
	"recipehub/pkg/models"
)

type Handler struct {
	Service *Service
	Catalog *catalog.Repo
	Hub     sync.Notifier
	Log     *logger.Logger
}

func NewHandler(svc *Service, cat *catalog.Repo, hub sync.Notifier, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{Service: svc, Catalog: cat, Hub: hub, Log: log}
}

// RegisterRoutes mounts the cart under rg, which must run auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cart", h.get)
	rg.DELETE("/cart", h.clear)
	rg.GET("/cart/export", h.export)
	rg.POST("/cart/recipes/:id", h.addRecipe)
	rg.DELETE("/cart/recipes/:id", h.removeRecipe)
	rg.DELETE("/cart/recipes/:id/all", h.removeRecipeAll)
	rg.POST("/cart/items/toggle", h.toggle)
}

type toggleReq struct {
	Key string `json:"key" binding:"required"`
}

func (h *Handler) get(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.respondSnapshot(c, h.Service.For(claims.UserID))
}

func (h *Handler) addRecipe(c *gin.Context) {
	h.withRecipe(c, func(ct *Cart, r *models.Recipe) error {
		return ct.AddRecipeIngredients(c.Request.Context(), r.Ingredients, r.ID)
	})
}

func (h *Handler) removeRecipe(c *gin.Context) {
	h.withRecipe(c, func(ct *Cart, r *models.Recipe) error {
		return ct.RemoveRecipeIngredients(c.Request.Context(), r.Ingredients, r.ID)
	})
}

func (h *Handler) removeRecipeAll(c *gin.Context) {
	h.withRecipe(c, func(ct *Cart, r *models.Recipe) error {
		return ct.RemoveRecipe(c.Request.Context(), r.Ingredients, r.ID)
	})
}

func (h *Handler) toggle(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ct := h.Service.For(claims.UserID)
	if err := ct.ToggleIngredientCheck(c.Request.Context(), req.Key); err != nil {
		h.Log.Error("toggle cart item", "user_id", claims.UserID, "key", req.Key, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.notify(claims.UserID, sync.EventCartUpdated, "", req.Key)
	h.respondSnapshot(c, ct)
}

func (h *Handler) clear(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.Service.For(claims.UserID).ClearCart(c.Request.Context()); err != nil {
		h.Log.Error("clear cart", "user_id", claims.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear failed"})
		return
	}
	h.notify(claims.UserID, sync.EventCartCleared, "", "")
	c.Status(http.StatusNoContent)
}

func (h *Handler) export(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	text, err := h.Service.For(claims.UserID).GroceryList(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="grocery-list.txt"`)
	c.String(http.StatusOK, text)
}

// withRecipe resolves the :id recipe from the catalog, applies fn to the
// caller's cart and answers with the resulting snapshot.
func (h *Handler) withRecipe(c *gin.Context, fn func(*Cart, *models.Recipe) error) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe id required"})
		return
	}
	rec, err := h.Catalog.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	ct := h.Service.For(claims.UserID)
	if err := fn(ct, rec); err != nil {
		h.Log.Error("cart update", "user_id", claims.UserID, "recipe_id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.notify(claims.UserID, sync.EventCartUpdated, id, "")
	h.respondSnapshot(c, ct)
}

func (h *Handler) respondSnapshot(c *gin.Context, ct *Cart) {
	lines, counts, err := ct.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":         lines,
		"recipe_counts": counts,
	})
}

func (h *Handler) notify(userID, typ, recipeID, key string) {
	if h.Hub != nil {
		h.Hub.Notify(userID, typ, recipeID, key)
	}
}

package favorites

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"recipehub/internal/auth"
	"recipehub/internal/catalog"
	"recipehub/internal/kvstore"
	"recipehub/internal/sync"
	"recipehub/internal/testutil"
	"recipehub/pkg/models"
)

type recorder struct {
	recipeIDs []string
}

func (r *recorder) Notify(userID, typ, recipeID, key string) {
	if userID == "alice" && typ == sync.EventFavoritesUpdated {
		r.recipeIDs = append(r.recipeIDs, recipeID)
	}
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newNotifyingRouter(t, nil)
}

func newNotifyingRouter(t *testing.T, n sync.Notifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	testutil.SeedRecipes(t, db)

	r := gin.New()
	g := r.Group("/users", func(c *gin.Context) {
		c.Set(auth.CtxClaimsKey, &auth.Claims{UserID: "alice"})
	})
	NewHandler(NewService(kvstore.NewMemoryStore()), catalog.NewRepo(db), n).RegisterRoutes(g)
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandlerFlow(t *testing.T) {
	r := newRouter(t)

	w := serve(r, http.MethodPost, "/users/favorites/C/toggle")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"C","favorite":true}`, w.Body.String())

	require.Equal(t, http.StatusOK, serve(r, http.MethodPut, "/users/favorites/A").Code)

	w = serve(r, http.MethodGet, "/users/favorites")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		IDs     []string        `json:"ids"`
		Recipes []models.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, []string{"C", "A"}, body.IDs)
	require.Len(t, body.Recipes, 2)
	require.Equal(t, "Steak", body.Recipes[0].Title)

	require.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/users/favorites/C").Code)
	w = serve(r, http.MethodGet, "/users/favorites")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, []string{"A"}, body.IDs)
}

func TestHandlerUnknownRecipe(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/users/favorites/nope/toggle").Code)
}

func TestHandlerNotifiesBeforeResponding(t *testing.T) {
	rec := &recorder{}
	r := newNotifyingRouter(t, rec)

	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/users/favorites/C/toggle").Code)
	require.Equal(t, []string{"C"}, rec.recipeIDs)
	require.Equal(t, http.StatusOK, serve(r, http.MethodPut, "/users/favorites/A").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/users/favorites/C").Code)
	require.Equal(t, []string{"C", "A", "C"}, rec.recipeIDs)
}

package grpcserver

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"recipehub/internal/cart"
	"recipehub/internal/catalog"
	"recipehub/internal/sync"
	"recipehub/pkg/logger"
	"recipehub/pkg/models"
)

type Server struct {
	Carts   *cart.Service
	Catalog *catalog.Repo
	Hub     sync.Notifier
	Log     *logger.Logger
}

func NewServer(carts *cart.Service, cat *catalog.Repo, hub sync.Notifier, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{Carts: carts, Catalog: cat, Hub: hub, Log: log}
}

var (
	_ CartServer    = (*Server)(nil)
	_ CatalogServer = (*Server)(nil)
)

func (s *Server) GetCart(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	claims, err := claimsFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, s.Carts.For(claims.UserID))
}

func (s *Server) AddRecipe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withRecipe(ctx, req, func(ct *cart.Cart, r *models.Recipe) error {
		return ct.AddRecipeIngredients(ctx, r.Ingredients, r.ID)
	})
}

func (s *Server) RemoveRecipe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withRecipe(ctx, req, func(ct *cart.Cart, r *models.Recipe) error {
		return ct.RemoveRecipeIngredients(ctx, r.Ingredients, r.ID)
	})
}

func (s *Server) RemoveRecipeAll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withRecipe(ctx, req, func(ct *cart.Cart, r *models.Recipe) error {
		return ct.RemoveRecipe(ctx, r.Ingredients, r.ID)
	})
}

func (s *Server) ToggleItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	claims, err := claimsFrom(ctx)
	if err != nil {
		return nil, err
	}
	key := stringField(req, "key")
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "key required")
	}

	ct := s.Carts.For(claims.UserID)
	if err := ct.ToggleIngredientCheck(ctx, key); err != nil {
		s.Log.Error("grpc toggle item", "user_id", claims.UserID, "err", err)
		return nil, status.Error(codes.Internal, "update failed")
	}
	s.notify(claims.UserID, sync.EventCartUpdated, "", key)
	return s.snapshot(ctx, ct)
}

func (s *Server) ClearCart(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	claims, err := claimsFrom(ctx)
	if err != nil {
		return nil, err
	}
	ct := s.Carts.For(claims.UserID)
	if err := ct.ClearCart(ctx); err != nil {
		s.Log.Error("grpc clear cart", "user_id", claims.UserID, "err", err)
		return nil, status.Error(codes.Internal, "clear failed")
	}
	s.notify(claims.UserID, sync.EventCartCleared, "", "")
	return s.snapshot(ctx, ct)
}

func (s *Server) ListRecipes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query := catalog.ListQuery{
		Q:      stringField(req, "q"),
		Tags:   listField(req, "tags"),
		Limit:  intField(req, "limit"),
		Offset: intField(req, "offset"),
	}

	total, err := s.Catalog.Count(ctx, query)
	if err != nil {
		return nil, status.Error(codes.Internal, "count failed")
	}
	items, err := s.Catalog.List(ctx, query)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}

	out := make([]any, 0, len(items))
	for _, it := range items {
		v, err := toPlain(it)
		if err != nil {
			return nil, status.Error(codes.Internal, "encode failed")
		}
		out = append(out, v)
	}
	return newStruct(map[string]any{
		"total":  total,
		"offset": query.Offset,
		"items":  out,
	})
}

func (s *Server) GetRecipe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	rec, err := s.Catalog.FindByID(ctx, id)
	if err != nil {
		return nil, status.Error(codes.Internal, "get failed")
	}
	if rec == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	v, err := toPlain(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	return newStruct(v.(map[string]any))
}

func (s *Server) withRecipe(ctx context.Context, req *structpb.Struct, fn func(*cart.Cart, *models.Recipe) error) (*structpb.Struct, error) {
	claims, err := claimsFrom(ctx)
	if err != nil {
		return nil, err
	}
	id := stringField(req, "recipe_id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "recipe_id required")
	}
	rec, err := s.Catalog.FindByID(ctx, id)
	if err != nil {
		return nil, status.Error(codes.Internal, "get failed")
	}
	if rec == nil {
		return nil, status.Error(codes.NotFound, "recipe not found")
	}

	ct := s.Carts.For(claims.UserID)
	if err := fn(ct, rec); err != nil {
		s.Log.Error("grpc cart update", "user_id", claims.UserID, "recipe_id", id, "err", err)
		return nil, status.Error(codes.Internal, "update failed")
	}
	s.notify(claims.UserID, sync.EventCartUpdated, id, "")
	return s.snapshot(ctx, ct)
}

func (s *Server) snapshot(ctx context.Context, ct *cart.Cart) (*structpb.Struct, error) {
	lines, counts, err := ct.Snapshot(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "read failed")
	}

	items := make([]any, 0, len(lines))
	for _, ln := range lines {
		items = append(items, map[string]any{
			"key":     ln.Key,
			"name":    ln.Name,
			"unit":    ln.Unit,
			"amount":  ln.Amount,
			"checked": ln.Checked,
		})
	}
	rc := make(map[string]any, len(counts))
	for id, n := range counts {
		rc[id] = n
	}
	return newStruct(map[string]any{
		"items":         items,
		"recipe_counts": rc,
	})
}

func (s *Server) notify(userID, typ, recipeID, key string) {
	if s.Hub != nil {
		s.Hub.Notify(userID, typ, recipeID, key)
	}
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	return st, nil
}

// toPlain round-trips v through JSON so it only holds types structpb accepts.
func toPlain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringField(st *structpb.Struct, name string) string {
	if st == nil {
		return ""
	}
	return strings.TrimSpace(st.GetFields()[name].GetStringValue())
}

func intField(st *structpb.Struct, name string) int {
	if st == nil {
		return 0
	}
	return int(st.GetFields()[name].GetNumberValue())
}

func listField(st *structpb.Struct, name string) []string {
	if st == nil {
		return nil
	}
	var out []string
	for _, v := range st.GetFields()[name].GetListValue().GetValues() {
		if s := strings.TrimSpace(v.GetStringValue()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package grpcserver

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"recipehub/internal/auth"
	"recipehub/internal/cart"
	"recipehub/internal/catalog"
	"recipehub/internal/kvstore"
	synchub "recipehub/internal/sync"
	"recipehub/internal/testutil"
)

var tokens = auth.TokenService{Secret: []byte("test-secret"), Issuer: "recipehub-test", Duration: time.Hour}

type recordedEvent struct {
	Type, RecipeID, Key string
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Notify(_, typ, recipeID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{typ, recipeID, key})
}

func (r *recorder) snapshot() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	return dialNotifying(t, nil)
}

func dialNotifying(t *testing.T, n synchub.Notifier) *grpc.ClientConn {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedRecipes(t, db)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryAuthInterceptor(auth.Verifier{Tokens: tokens})))
	svc := NewServer(cart.NewService(kvstore.NewMemoryStore()), catalog.NewRepo(db), n, nil)
	RegisterCartServer(srv, svc)
	RegisterCatalogServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func authed(t *testing.T, userID string) context.Context {
	t.Helper()
	tok, _, err := tokens.Sign(&auth.User{ID: userID, Username: userID})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func call(ctx context.Context, conn *grpc.ClientConn, service, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/"+service+"/"+method, req, out)
	return out, err
}

func TestCartRequiresToken(t *testing.T) {
	conn := dial(t)
	_, err := call(context.Background(), conn, CartServiceName, "GetCart", nil)
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	_, err = call(ctx, conn, CartServiceName, "GetCart", nil)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestCartFlow(t *testing.T) {
	conn := dial(t)
	ctx := authed(t, "alice")

	_, err := call(ctx, conn, CartServiceName, "AddRecipe", map[string]any{"recipe_id": "A"})
	require.NoError(t, err)
	out, err := call(ctx, conn, CartServiceName, "AddRecipe", map[string]any{"recipe_id": "B"})
	require.NoError(t, err)

	items := out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 2)
	flour := items[0].GetStructValue().GetFields()
	require.Equal(t, "flour|cup", flour["key"].GetStringValue())
	require.Equal(t, "3", flour["amount"].GetStringValue())
	counts := out.GetFields()["recipe_counts"].GetStructValue().GetFields()
	require.Equal(t, float64(1), counts["A"].GetNumberValue())

	out, err = call(ctx, conn, CartServiceName, "ToggleItem", map[string]any{"key": "salt|g"})
	require.NoError(t, err)
	salt := out.GetFields()["items"].GetListValue().GetValues()[1].GetStructValue().GetFields()
	require.True(t, salt["checked"].GetBoolValue())

	out, err = call(ctx, conn, CartServiceName, "RemoveRecipeAll", map[string]any{"recipe_id": "B"})
	require.NoError(t, err)
	items = out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	require.Equal(t, "2", items[0].GetStructValue().GetFields()["amount"].GetStringValue())

	// other users see their own cart
	out, err = call(authed(t, "bob"), conn, CartServiceName, "GetCart", nil)
	require.NoError(t, err)
	require.Empty(t, out.GetFields()["items"].GetListValue().GetValues())

	out, err = call(ctx, conn, CartServiceName, "ClearCart", nil)
	require.NoError(t, err)
	require.Empty(t, out.GetFields()["items"].GetListValue().GetValues())
}

func TestCartErrors(t *testing.T) {
	conn := dial(t)
	ctx := authed(t, "alice")

	_, err := call(ctx, conn, CartServiceName, "AddRecipe", map[string]any{"recipe_id": "missing"})
	require.Equal(t, codes.NotFound, status.Code(err))
	_, err = call(ctx, conn, CartServiceName, "AddRecipe", nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = call(ctx, conn, CartServiceName, "ToggleItem", nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCatalog(t *testing.T) {
	conn := dial(t)
	ctx := context.Background()

	out, err := call(ctx, conn, CatalogServiceName, "ListRecipes", map[string]any{"tags": []any{"vegan", "dinner"}})
	require.NoError(t, err)
	require.Equal(t, float64(2), out.GetFields()["total"].GetNumberValue())
	items := out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 2)
	require.Equal(t, "Salted Bread", items[0].GetStructValue().GetFields()["title"].GetStringValue())

	out, err = call(ctx, conn, CatalogServiceName, "GetRecipe", map[string]any{"id": "C"})
	require.NoError(t, err)
	require.Equal(t, "Steak", out.GetFields()["title"].GetStringValue())
	require.Equal(t, float64(25), out.GetFields()["cookTime"].GetNumberValue())

	_, err = call(ctx, conn, CatalogServiceName, "GetRecipe", map[string]any{"id": "zzz"})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestCartNotifiesBeforeReplying(t *testing.T) {
	rec := &recorder{}
	conn := dialNotifying(t, rec)
	ctx := authed(t, "alice")

	_, err := call(ctx, conn, CartServiceName, "AddRecipe", map[string]any{"recipe_id": "A"})
	require.NoError(t, err)
	require.Len(t, rec.snapshot(), 1)
	_, err = call(ctx, conn, CartServiceName, "ToggleItem", map[string]any{"key": "flour|cup"})
	require.NoError(t, err)
	_, err = call(ctx, conn, CartServiceName, "ClearCart", nil)
	require.NoError(t, err)

	require.Equal(t, []recordedEvent{
		{synchub.EventCartUpdated, "A", ""},
		{synchub.EventCartUpdated, "", "flour|cup"},
		{synchub.EventCartCleared, "", ""},
	}, rec.snapshot())
}

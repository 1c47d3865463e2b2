package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	CartServiceName    = "recipehub.CartService"
	CatalogServiceName = "recipehub.CatalogService"
)

// CartServer is the per-user cart API. Every method requires a bearer token.
type CartServer interface {
	GetCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddRecipe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveRecipe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveRecipeAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type CatalogServer interface {
	ListRecipes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecipe(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(service, method string, fn unaryFunc) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CartServiceName, "GetCart", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CartServer).GetCart(ctx, in)
		}),
		unary(CartServiceName, "AddRecipe", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CartServer).AddRecipe(ctx, in)
		}),
		unary(CartServiceName, "RemoveRecipe", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CartServer).RemoveRecipe(ctx, in)
		}),
		unary(CartServiceName, "RemoveRecipeAll", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CartServer).RemoveRecipeAll(ctx, in)
		}),
		unary(CartServiceName, "ToggleItem", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CartServer).ToggleItem(ctx, in)
		}),
		unary(CartServiceName, "ClearCart", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CartServer).ClearCart(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recipehub.proto",
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CatalogServiceName, "ListRecipes", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CatalogServer).ListRecipes(ctx, in)
		}),
		unary(CatalogServiceName, "GetRecipe", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(CatalogServer).GetRecipe(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recipehub.proto",
}

func RegisterCartServer(s grpc.ServiceRegistrar, srv CartServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

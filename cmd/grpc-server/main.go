package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"recipehub/internal/auth"
	"recipehub/internal/cart"
	"recipehub/internal/catalog"
	"recipehub/internal/grpcserver"
	"recipehub/internal/kvstore"
	"recipehub/pkg/database"
	"recipehub/pkg/logger"
	"recipehub/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "grpc-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fc, err := utils.LoadFileConfig()
	if err != nil {
		return err
	}
	srvCfg := utils.LoadServerConfig(fc)
	authCfg := utils.LoadAuthConfig(fc)
	storeCfg := utils.LoadStoreConfig(fc)

	log, err := logger.New(srvCfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.DefaultConfig())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	store, closeStore, err := kvstore.Open(ctx, storeCfg, db)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	verifier := auth.Verifier{
		Tokens: auth.TokenService{
			Secret:   []byte(authCfg.JWTSecret),
			Issuer:   authCfg.JWTIssuer,
			Duration: authCfg.JWTDuration,
		},
		Repo: auth.NewRepo(db),
	}

	listener, err := net.Listen("tcp", srvCfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	// The websocket hub lives in the api-server process; gRPC mutations are
	// not broadcast.
	svc := grpcserver.NewServer(cart.NewService(store), catalog.NewRepo(db), nil, log)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryAuthInterceptor(verifier)))
	grpcserver.RegisterCartServer(grpcServer, svc)
	grpcserver.RegisterCatalogServer(grpcServer, svc)

	go func() {
		<-ctx.Done()
		log.Info("shutting down grpc server")
		grpcServer.GracefulStop()
	}()

	log.Info("grpc server listening", "addr", srvCfg.GRPCAddr)
	if err := grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

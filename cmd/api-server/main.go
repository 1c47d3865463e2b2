package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"recipehub/internal/auth"
	"recipehub/internal/kvstore"
	"recipehub/internal/server"
	synchub "recipehub/internal/sync"
	"recipehub/pkg/database"
	"recipehub/pkg/logger"
	"recipehub/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
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

	if srvCfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := database.DefaultConfig()
	db, err := database.Open(dbCfg)
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

	hub := synchub.NewHub()
	router := server.NewRouter(server.RouterConfig{
		DB:    db,
		Store: store,
		Tokens: auth.TokenService{
			Secret:   []byte(authCfg.JWTSecret),
			Issuer:   authCfg.JWTIssuer,
			Duration: authCfg.JWTDuration,
		},
		Hub:         hub,
		Log:         log,
		CORSOrigins: srvCfg.CORSOrigins,
	})

	httpSrv := &http.Server{
		Addr:              srvCfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http api listening", "addr", srvCfg.HTTPAddr, "db", dbCfg.Path, "store", storeCfg.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/database"
	"shop-api/internal/handler"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/router"
	"shop-api/internal/service"
)

// App owns every process-wide resource: the database client, the token
// manager and the HTTP server built on top of them.
type App struct {
	server *http.Server
	db     *database.DB
}

func New(cfg *config.Config) (*App, error) {
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	slog.Info("connecting to MongoDB", "database", cfg.MongoDatabase)
	db, err := database.New(context.Background(), cfg.MongoURI, cfg.MongoDatabase, cfg.DBMaxPoolSize, cfg.DBConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	indexCtx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	defer cancel()
	if err := db.EnsureIndexes(indexCtx); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("failed to ensure database indexes: %w", err)
	}
	slog.Info("database ready")

	appRouter, err := NewHandler(cfg, db, tokens)
	if err != nil {
		_ = db.Close(context.Background())
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

// NewHandler wires repositories, services and handlers over an open database
// and returns the routed HTTP handler.
func NewHandler(cfg *config.Config, db *database.DB, tokens *auth.TokenManager) (http.Handler, error) {
	userRepo := repository.NewUserRepository(db.Database)
	productRepo := repository.NewDocumentRepository(db.Database, database.ProductsCollection)
	flashSaleRepo := repository.NewDocumentRepository(db.Database, database.FlashSalesCollection)
	orderRepo := repository.NewDocumentRepository(db.Database, database.OrdersCollection)

	authService, err := service.NewAuthService(userRepo, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	return router.New(cfg, middleware.NewAuthMiddleware(tokens), middleware.NewMetrics(), router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Products:   handler.NewCatalogHandler(service.NewCatalogService(productRepo, "product")),
		FlashSales: handler.NewCatalogHandler(service.NewCatalogService(flashSaleRepo, "flash-sale item")),
		Orders:     handler.NewOrderHandler(service.NewOrderService(orderRepo)),
		Status:     handler.NewStatusHandler(db),
	}), nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		_ = a.db.Close(context.Background())
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := a.db.Close(ctx); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

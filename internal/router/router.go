package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"shop-api/internal/config"
	"shop-api/internal/handler"
	"shop-api/internal/middleware"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Products   *handler.CatalogHandler
	FlashSales *handler.CatalogHandler
	Orders     *handler.OrderHandler
	Status     *handler.StatusHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	metrics *middleware.Metrics,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Handler)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(handler.RouteNotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", h.Status.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Exposition())

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/", h.Status.Root)

		api.Route("/api/v1", func(v1 chi.Router) {
			v1.Post("/register", h.Auth.Register)
			v1.Post("/login", h.Auth.Login)
		})

		api.Get("/products", h.Products.List)
		api.Get("/product/{id}", h.Products.Get)
		api.With(authMiddleware.RequireAuth).Post("/products", h.Products.Create)
		api.With(authMiddleware.RequireAuth).Delete("/product/{id}", h.Products.Delete)

		api.Get("/flash-sale", h.FlashSales.List)
		api.Get("/flash-sale/{id}", h.FlashSales.Get)

		api.With(authMiddleware.RequireAuth).Get("/orders", h.Orders.List)
		api.With(authMiddleware.RequireAuth).Post("/orders", h.Orders.Create)
		api.With(authMiddleware.RequireAuth).Delete("/order/{id}", h.Orders.Delete)
	})

	return r
}

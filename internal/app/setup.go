// Package app contains the application setup for the back-office service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lojinha/backoffice/internal/config"
	"github.com/lojinha/backoffice/internal/service"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/transport/rest"
	"github.com/lojinha/backoffice/internal/upload"
	"github.com/lojinha/backoffice/pkg/messaging"
	"github.com/lojinha/backoffice/pkg/server"
)

type Dependencies struct {
	CategoryService service.CategoryService
	ProductService  service.ProductService
	OrderService    service.OrderService
	Logger          *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, uploader upload.Uploader, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	categoryStore := store.NewPgCategoryStore(dbPool)
	productStore := store.NewPgProductStore(dbPool)
	orderStore := store.NewPgOrderStore(dbPool)

	return &Dependencies{
		CategoryService: service.NewCategoryService(categoryStore),
		ProductService:  service.NewProductService(productStore, categoryStore, uploader, logger),
		OrderService:    service.NewOrderService(orderStore, publisher, logger),
		Logger:          logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the back-office application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the back-office application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewCategoryHandler(deps.CategoryService, deps.Logger).RegisterRoutes(mux)
	rest.NewProductHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux)
	rest.NewOrderHandler(deps.OrderService, deps.Logger).RegisterRoutes(mux)

	health := &rest.HealthHandler{}
	mux.Get("/healthz", health.HealthCheck)
}

// SetupHttpServer creates and configures an HTTP server for the back-office application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/kicktrack/transferdata/internal/api/handler"
	"github.com/kicktrack/transferdata/internal/cache"
	"github.com/kicktrack/transferdata/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, appCache *cache.Cache, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, appCache, cfg, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", h.ListTransfers)
			r.Post("/", h.CreateTransfer)
			r.Get("/autocomplete", h.TransferAutocomplete)
			r.Get("/form-data", h.TransferFormData)
			r.Get("/stats", h.TransferStats)
			r.Get("/{transferID}", h.GetTransfer)
			r.Put("/{transferID}", h.UpdateTransfer)
			r.Delete("/{transferID}", h.DeleteTransfer)
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Post("/", h.CreatePlayer)
			r.Get("/filters", h.PlayerFilters)
			r.Get("/sub-positions", h.PlayerSubPositions)
			r.Get("/{playerID}", h.GetPlayer)
			r.Put("/{playerID}", h.UpdatePlayer)
			r.Delete("/{playerID}", h.DeletePlayer)
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.ListClubs)
			r.Post("/", h.CreateClub)
			r.Get("/{clubID}", h.GetClub)
			r.Put("/{clubID}", h.UpdateClub)
			r.Delete("/{clubID}", h.DeleteClub)
		})
		r.Get("/competitions", h.ListCompetitions)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Post("/", h.CreateGame)
			r.Get("/head2head", h.HeadToHead)
			r.Get("/{gameID}", h.GetGame)
			r.Put("/{gameID}", h.UpdateGame)
			r.Delete("/{gameID}", h.DeleteGame)
		})
	})

	return r
}

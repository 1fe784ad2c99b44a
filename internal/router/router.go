package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cognisense-backend/internal/handlers"
	"cognisense-backend/internal/middleware"
	"cognisense-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	trackingHandler *handlers.TrackingHandler,
	dashboardHandler *handlers.DashboardHandler,
	contentHandler *handlers.ContentHandler,
	ruleHandler *handlers.RuleHandler,
	rulesLimiter *middleware.RateLimiter,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", contentHandler.Ping)

		// ──── Tracking Routes ────
		r.Route("/tracking", func(r chi.Router) {
			r.Post("/ingest", trackingHandler.Ingest)
			r.Get("/activity/{userID}", trackingHandler.Activity)
			r.Delete("/activity/{userID}", trackingHandler.ClearActivity)
		})

		// ──── Dashboard Routes ────
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary/{userID}", dashboardHandler.Summary)
			r.Get("/sites/{userID}", dashboardHandler.Sites)
		})

		// ──── Content Routes ────
		r.Route("/content", func(r chi.Router) {
			r.Post("/analyze", contentHandler.Analyze)
			r.Post("/analyze/batch", contentHandler.AnalyzeBatch)
			r.Get("/stored", contentHandler.Stored)
		})

		// ──── Rule Routes ────
		// Rules are rate limited per IP; the caller owns the limiter.
		r.Route("/rules", func(r chi.Router) {
			r.Use(rulesLimiter.Middleware)
			r.Use(jwtAuth.Middleware)
			r.Get("/", ruleHandler.List)
			r.Post("/", ruleHandler.Create)
			r.Get("/{id}", ruleHandler.Get)
			r.Delete("/{id}", ruleHandler.Delete)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

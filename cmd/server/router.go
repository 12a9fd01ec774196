package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/halcyonfit/halcyon-engine/internal/api"
	apimiddleware "github.com/halcyonfit/halcyon-engine/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	profileHandler := api.NewProfileHandler(app.engine)
	syncHandler := api.NewSyncHandler(app.engine)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Put("/profile", profileHandler.SaveProfile)
		r.Post("/goals/calculate", profileHandler.CalculateGoals)
		r.Post("/goals", profileHandler.SaveGoals)

		r.Post("/sync", syncHandler.TriggerSync)
		r.Get("/sync/status", syncHandler.GetStatus)
		r.Get("/sync/status/stream", syncHandler.StreamStatus)
		r.Get("/sync/policy/{operation}", syncHandler.GetOfflinePolicy)
	})

	// Health check endpoint (public)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

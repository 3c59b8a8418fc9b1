package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/handlers"
	"github.com/moodlog/api/internal/middleware"
	"github.com/moodlog/api/internal/ratelimit"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	entryHandler *handlers.EntryHandler,
	gate *auth.Gate,
	loginLimiter *ratelimit.LoginLimiter,
) {
	resetRateLimit := middleware.DefaultResetRateLimit()

	// Public routes - no authentication required
	router.Post("/auth/register", authHandler.Register)
	router.With(middleware.LoginRateLimit(loginLimiter)).Post("/auth/login", authHandler.Login)
	router.Post("/auth/logout", authHandler.Logout)
	router.With(middleware.RateLimitByIP(resetRateLimit)).Post("/auth/password-reset/request", authHandler.RequestPasswordReset)
	router.Post("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// Protected routes - valid session required
	router.Group(func(r chi.Router) {
		r.Use(gate.RequireAuth)

		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/password/change", authHandler.ChangePassword)

		r.Get("/users/me", userHandler.GetMe)

		r.Get("/entries", entryHandler.ListEntries)
		r.Post("/entries", entryHandler.CreateEntry)
		r.Get("/entries/moods", entryHandler.ListMoods)
		r.Get("/entries/{id}", entryHandler.GetEntry)
		r.Patch("/entries/{id}", entryHandler.UpdateEntry)
		r.Delete("/entries/{id}", entryHandler.DeleteEntry)
	})

	// Admin-only routes. RequireAdmin resolves the session itself; there is
	// no way to mount the role check without authentication in front of it.
	router.Group(func(r chi.Router) {
		r.Use(gate.RequireAdmin)

		r.Get("/users/{id}", userHandler.GetUser)
		r.Patch("/users/{id}", userHandler.UpdateUser)
	})
}

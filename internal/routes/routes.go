package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/experiencepoints/api/internal/app"
	"github.com/experiencepoints/api/internal/handler"
	"github.com/experiencepoints/api/internal/middleware"
	"github.com/experiencepoints/api/internal/respond"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	goal := handler.NewGoalHandler(app.GoalService)
	profile := handler.NewProfileHandler(app.ProfileService, app.Cfg.AppURL)
	share := handler.NewShareHandler(app.ShareService, app.Cfg.AppURL)
	friend := handler.NewFriendHandler(app.FriendService)
	cat := handler.NewCatalogHandler(app.Catalog)
	health := handler.NewHealthHandler(app.DB)

	r := chi.NewRouter()

	// Global middleware - executed in order (top to bottom)
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.Cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(respond.ErrorHandler(http.StatusNotFound, "Not found"))
	r.MethodNotAllowed(respond.ErrorHandler(http.StatusMethodNotAllowed, "Method not allowed"))

	requireAuth := middleware.RequireAuth(app.AuthService)
	optionalAuth := middleware.OptionalAuth(app.AuthService)

	r.Route("/api", func(r chi.Router) {
		// ============================================================================
		// PUBLIC ROUTES
		// ============================================================================

		r.Get("/health", health.Health)
		r.Get("/templates", cat.Templates)
		r.Get("/share/{uuid}", share.View)
		r.With(optionalAuth).Get("/profile/{id}", profile.View)

		// Auth (rate limited)
		r.Group(func(r chi.Router) {
			r.Use(app.AuthLimiter.Limit)
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})
		r.Get("/logout", auth.Logout)
		r.Post("/logout", auth.Logout)

		// ============================================================================
		// PROTECTED ROUTES
		// ============================================================================

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			// Goals
			r.Get("/goals", goal.Goals)
			r.Post("/goals", goal.Save)
			r.Delete("/goals/{id}", goal.Delete)
			r.Post("/goals/visibility", goal.SetVisibility)

			// Facts
			r.Post("/facts", cat.Fact)

			// Profile & sharing
			r.Post("/profile/share", share.Create)
			r.Get("/profile/shares", share.List)
			r.Delete("/profile/shares/{uuid}", share.Revoke)
			r.Post("/profile/permanent-link", profile.PermanentLink)
			r.Post("/profile/visibility", profile.SetVisibility)

			// Friends
			r.Get("/friends", friend.Friends)
			r.Get("/friends/requests", friend.Requests)
			r.Post("/friends/add", friend.Add)
			r.Post("/friends/respond", friend.Respond)
		})
	})

	return r
}

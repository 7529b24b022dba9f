package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/audio-subtitler/backend/internal/api/handlers"
	"github.com/audio-subtitler/backend/internal/api/middleware"
	"github.com/audio-subtitler/backend/internal/auth"
	"github.com/audio-subtitler/backend/internal/config"
	"github.com/audio-subtitler/backend/internal/db"
	"github.com/audio-subtitler/backend/internal/job"
)

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, jobQueue *job.JobQueue) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	videosHandler := handlers.NewVideosHandler(cfg.MediaPath, cfg.MaxUploadMB)
	subtitleHandler := handlers.NewSubtitleHandler(cfg.MediaPath, cfg.SubtitlePath, jobQueue)
	jobHandler := handlers.NewJobHandler(jobQueue)
	settingsHandler := handlers.NewSettingsHandler(database)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/health", handlers.Health)
		r.With(loginLimiter.Handler, middleware.MaxBodySize(4<<10)).
			Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Auth
			r.Get("/auth/me", authHandler.Me)

			// Media files
			r.Get("/videos/list", videosHandler.List)
			r.Get("/videos/list/*", videosHandler.List)
			r.Get("/videos/info/*", videosHandler.GetInfo)
			r.Get("/videos/search", videosHandler.Search)
			r.With(middleware.RequireRole("admin", "editor")).
				Post("/videos/upload", videosHandler.Upload)

			// Subtitles
			r.Get("/subtitle/list/*", subtitleHandler.ListSubtitles)
			r.Get("/subtitle/content/*", subtitleHandler.ServeSubtitle)
			r.With(middleware.MaxBodySize(64 << 10)).
				Post("/subtitle/generate/*", subtitleHandler.GenerateSubtitle)
			r.With(middleware.MaxBodySize(64 << 10)).
				Post("/subtitle/translate/*", subtitleHandler.TranslateSubtitle)

			// Jobs
			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.Delete("/jobs/{id}", jobHandler.CancelJob)
			r.Post("/jobs/{id}/retry", jobHandler.RetryJob)

			// Settings
			r.Get("/settings", settingsHandler.GetSettings)
			r.With(middleware.RequireRole("admin")).
				Put("/settings", settingsHandler.UpdateSettings)
		})
	})

	return r
}

package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/issue-management/internal/auth"
	"github.com/frahmantamala/issue-management/internal/image"
	"github.com/frahmantamala/issue-management/internal/issue"
	"github.com/frahmantamala/issue-management/internal/transport/middleware"
	"github.com/frahmantamala/issue-management/internal/transport/swagger"
	"github.com/frahmantamala/issue-management/internal/user"
)

type RouterDeps struct {
	DB            *sql.DB
	Redis         *redis.Client
	AuthHandler   *auth.Handler
	UserHandler   *user.Handler
	IssueHandler  *issue.Handler
	ImageHandler  *image.Handler
	DailyIssueCap int
	Logger        *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB, deps.Redis)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", deps.AuthHandler.Login)
			sr.Post("/refresh", deps.AuthHandler.RefreshToken)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
			pr.Get("/users/{userID}/issues", deps.IssueHandler.ListIssuesByUser)

			pr.Route("/issues", func(ir chi.Router) {
				ir.Get("/", deps.IssueHandler.ListIssues)
				ir.Get("/search", deps.IssueHandler.SearchIssues)
				ir.Get("/{id}", deps.IssueHandler.GetIssue)

				// Issue creation is rate limited per user per day
				ir.Group(func(cr chi.Router) {
					cr.Use(middleware.IssueRateLimiter(deps.Redis, deps.DailyIssueCap, deps.Logger))
					cr.Post("/", deps.IssueHandler.CreateIssue)
				})

				ir.Patch("/{id}", deps.IssueHandler.UpdateIssue)
				ir.Delete("/{id}", deps.IssueHandler.DeleteIssue)
				ir.Patch("/{id}/resolve", deps.IssueHandler.ToggleResolve)
				ir.Patch("/{id}/upvote", deps.IssueHandler.ToggleUpvote)
				ir.Patch("/{id}/report", deps.IssueHandler.ToggleInappropriate)
				ir.Post("/{id}/comments", deps.IssueHandler.PostComment)
				ir.Post("/{id}/solutions", deps.IssueHandler.PostSolution)
			})

			pr.Route("/images", func(mr chi.Router) {
				mr.Post("/", deps.ImageHandler.RegisterUpload)
				mr.Get("/", deps.ImageHandler.ListMyImages)
			})
		})
	})
}

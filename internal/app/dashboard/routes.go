// Package dashboard собирает HTTP-приложение панели оттока.
package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/studio-churn/internal/config"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/analytics/churn"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/analytics/overview"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/analytics/studios"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/health"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/members/annotate"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/members/facets"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/members/filter"
	"github.com/magabrotheeeer/studio-churn/internal/http/handlers/members/importer"
	memberlist "github.com/magabrotheeeer/studio-churn/internal/http/handlers/members/list"
	memberread "github.com/magabrotheeeer/studio-churn/internal/http/handlers/members/read"
	ticketcreate "github.com/magabrotheeeer/studio-churn/internal/http/handlers/tickets/create"
	ticketlist "github.com/magabrotheeeer/studio-churn/internal/http/handlers/tickets/list"
	ticketread "github.com/magabrotheeeer/studio-churn/internal/http/handlers/tickets/read"
	"github.com/magabrotheeeer/studio-churn/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studio-churn/internal/metrics"
	"github.com/magabrotheeeer/studio-churn/internal/services/analytics"
	"github.com/magabrotheeeer/studio-churn/internal/services/auth"
	"github.com/magabrotheeeer/studio-churn/internal/services/tickets"
)

// Services набор сервисов, которые обслуживают маршруты API.
type Services struct {
	Analytics *analytics.Service
	Tickets   *tickets.Service
	Auth      *auth.AuthService
	Ready     health.CheckFunc
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.HTTPMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.With(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst)).
			Post("/login", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

			r.Get("/analytics/churn", churn.New(logger, s.Analytics).ServeHTTP)
			r.Get("/analytics/studios", studios.New(logger, s.Analytics).ServeHTTP)
			r.Get("/analytics/overview", overview.New(logger, s.Analytics).ServeHTTP)

			r.Get("/members", memberlist.New(logger, s.Analytics).ServeHTTP)
			r.Post("/members/filter", filter.New(logger, s.Analytics).ServeHTTP)
			r.Get("/members/facets", facets.New(logger, s.Analytics).ServeHTTP)
			r.Get("/members/{id}", memberread.New(logger, s.Analytics).ServeHTTP)
			r.Put("/members/{id}/annotations", annotate.New(logger, s.Analytics).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, auth.RoleAdmin)).
				Post("/members/import", importer.New(logger, s.Analytics).ServeHTTP)

			r.Post("/tickets", ticketcreate.New(logger, s.Tickets).ServeHTTP)
			r.Get("/tickets", ticketlist.New(logger, s.Tickets).ServeHTTP)
			r.Get("/tickets/{id}", ticketread.New(logger, s.Tickets).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Ready).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/questup-api/internal/api"
	apiMiddleware "github.com/phrazzld/questup-api/internal/api/middleware"
	"github.com/phrazzld/questup-api/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	credentialHandler := api.NewCredentialHandler(app.sessionKeys, app.staticKey, app.logger)
	examHandler := api.NewExamHandler(app.examService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		if timeout := app.requestTimeout(); timeout > 0 {
			r.Use(middleware.Timeout(timeout))
		}

		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/credentials", credentialHandler.Status)
			r.Put("/credentials", credentialHandler.Select)
			r.Delete("/credentials", credentialHandler.Clear)

			r.Post("/exams", examHandler.CreateExam)
			r.Get("/exams", examHandler.ListExams)
			r.Get("/exams/{id}", examHandler.GetExam)
			r.Post("/exams/{id}/answers", examHandler.SubmitAnswers)
			r.Post("/exams/{id}/retry", examHandler.RetryWeakTopics)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

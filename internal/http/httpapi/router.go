package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"evideo/internal/http/handlers"
	"evideo/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/login", app.Login)

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.CreateGeneration)
		r.Get("/{id}", app.GetGeneration)
		r.Post("/{id}/retry", app.RetryGeneration)
		r.Post("/{id}/cancel", app.CancelGeneration)
	})

	return r
}

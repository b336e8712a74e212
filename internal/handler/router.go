// Package handler provides HTTP handlers for the Pictor API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/metrics"
)

// RouterConfig contains the collaborators wired into the router.
type RouterConfig struct {
	UserHandler    *UserHandler
	ImageHandler   *ImageHandler
	AuthMiddleware func(http.Handler) http.Handler
	AllowedOrigin  string
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
}

// NewRouter assembles the HTTP route tree.
//
// Sign-up sits behind the gate like the mutation routes; only login, the
// root banner, and the health check are public.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(Instrument(cfg.Metrics))
	}
	r.Use(CORS(cfg.AllowedOrigin))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API started"))
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware)
			r.Post("/sign-up", cfg.UserHandler.SignUp)
			r.Post("/change-name", cfg.UserHandler.ChangeName)
			r.Post("/change-password", cfg.UserHandler.ChangePassword)
		})
	})

	r.Route("/images", func(r chi.Router) {
		r.Use(cfg.AuthMiddleware)
		r.Post("/uploads", cfg.ImageHandler.Upload)
	})

	return r
}

package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/api/middlewares"
	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/service/config"
)

const defaultLandingPage = "/index.html"

type CustomRouter struct {
	router *chi.Mux
	logger *slog.Logger
	cfg    *config.Config
}

func New(cfg *config.Config, log *slog.Logger) *CustomRouter {
	if log == nil {
		log = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Config{LandingPage: defaultLandingPage}
	}
	router := &CustomRouter{
		router: chi.NewRouter(),
		logger: log,
		cfg:    cfg,
	}

	return router
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type ProfileHandler interface {
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	GetUser(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Health(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	AuthHandler
	ProfileHandler
	UserHandler
	HealthHandler
}

func (cr *CustomRouter) SetRouter(h Handler) {
	cr.router.Use(middleware.RequestID)
	cr.router.Use(middleware.RealIP)
	cr.router.Use(middlewares.Logging(cr.logger))
	cr.router.Use(middlewares.Recoverer(cr.logger))

	cr.router.Get("/", cr.landing)

	cr.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/users/{userId}", h.GetUser)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewares.AllowContentType(cr.logger, model.ContentTypeJSON))
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewares.Authentication([]byte(cr.cfg.SecretKey), cr.logger))
				r.Post("/update-profile", h.UpdateProfile)
				r.Put("/update-profile", h.UpdateProfile)
			})
		})
	})

	cr.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(r.Context(), w, cr.logger, http.StatusNotFound, dto.ErrorResponse{
			Message: "Endpoint not found",
			Path:    r.URL.Path,
		})
	})
	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(r.Context(), w, cr.logger,
			http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func (cr *CustomRouter) landing(w http.ResponseWriter, r *http.Request) {
	target := cr.cfg.LandingPage
	if target == "" {
		target = defaultLandingPage
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}

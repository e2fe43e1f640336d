package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kevinpasricha/team-to-doers/internal/auth"
	"github.com/kevinpasricha/team-to-doers/internal/config"
	"github.com/kevinpasricha/team-to-doers/internal/database"
)

type Api struct {
	Config *config.Config
	Store  *database.Store
	Auth   *auth.Service
	Router *chi.Mux
}

func NewApi(cfg *config.Config, store *database.Store) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, fmt.Errorf("must have at least a port to start API")
	}

	api := &Api{
		Config: cfg,
		Store:  store,
		Auth:   auth.NewService(store, time.Duration(cfg.Session.TTLHours)*time.Hour),
		Router: chi.NewRouter(),
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	// CORS first so the browser client can send the session cookie
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	// Public routes
	r.Post("/register", api.RegisterHandler)
	r.Post("/login", api.LoginHandler)
	r.Post("/logout", api.LogoutHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(api.Auth))
		r.Get("/dashboard", api.DashboardHandler)
		r.Get("/todos", api.ListTodosHandler)
		r.Post("/todos", api.CreateTodoHandler)
		r.Put("/todos/{todoID}", api.UpdateTodoHandler)
		r.Delete("/todos/{todoID}", api.DeleteTodoHandler)
	})
}

func (api *Api) Serve() {
	// Expired sessions pile up otherwise; sweep them in the background
	go func() {
		ticker := time.NewTicker(time.Duration(api.Config.Session.CleanupMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			if err := api.Auth.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
			<-ticker.C
		}
	}()

	log.Printf("Starting API server on 0.0.0.0:%d", api.Config.APIPort)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort), api.Router))
}

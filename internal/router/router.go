package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-user-rating/docs" // registers the swagger docs
	"github.com/FACorreiaa/go-user-rating/internal/api"
	"github.com/FACorreiaa/go-user-rating/internal/api/auth"
	"github.com/FACorreiaa/go-user-rating/internal/api/user"
	"github.com/FACorreiaa/go-user-rating/internal/types"
)

var defaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// Config contains dependencies needed for the router setup
type Config struct {
	UserHandler    user.Handler
	Tokens         auth.TokenParser
	Logger         *slog.Logger
	LoginPerMinute int
	AllowedOrigins []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-Unmodified-Since"},
		ExposedHeaders:   []string{"Last-Modified"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := auth.Authenticate(cfg.Logger, cfg.Tokens)
	loginLimit := cfg.LoginPerMinute
	if loginLimit <= 0 {
		loginLimit = 20
	}
	loginLimiter := httprate.Limit(loginLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			api.ErrorResponse(w, r, http.StatusTooManyRequests, "Too many login attempts, try again later")
		}),
	)

	r.Route("/api", func(r chi.Router) {
		// --- Public Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/users", cfg.UserHandler.Register)
			r.Get("/users", cfg.UserHandler.ListUsers)
			r.Get("/users/{userId}", cfg.UserHandler.GetUserByID)
			r.Get("/users/nickname/{nickname}", cfg.UserHandler.GetUserByNickname)
			r.With(loginLimiter).Post("/users/login", cfg.UserHandler.Login)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/users/vote", cfg.UserHandler.Vote)
		})

		// --- Admin Routes ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(auth.RequireRole(cfg.Logger, types.RoleAdmin))
			r.Put("/users/{userId}", cfg.UserHandler.UpdateUser)
			r.Delete("/users/{userId}", cfg.UserHandler.DeleteUser)
		})
	})

	return r
}

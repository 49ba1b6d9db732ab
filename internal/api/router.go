package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/bookshelf-be/internal/api/handlers"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/isdelr/bookshelf-be/internal/websocket"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Authenticator  handlers.Authenticator
	Tokens         handlers.TokenIssuer
	Authorize      func(http.Handler) http.Handler // identity middleware
	Users          services.UserServiceProvider
	Books          services.BookServiceProvider
	Events         services.EventServiceProvider
	Hub            *websocket.Hub
	DB             handlers.Pinger
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Authenticator, deps.Tokens, deps.Users, deps.Events)
	bookHandler := handlers.NewBookHandler(deps.Books, deps.Events)
	eventHandler := handlers.NewEventHandler(deps.Events)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Public endpoints
	r.Get("/health", healthHandler.Get)
	r.Post("/token", userHandler.Login)
	r.Post("/users/", userHandler.Register)

	// Endpoints that require a bearer token
	r.Group(func(r chi.Router) {
		r.Use(deps.Authorize)

		r.Get("/users/me", userHandler.GetMe)
		r.Delete("/users/me", userHandler.DeleteMe)

		r.Get("/books/", bookHandler.GetAll)
		r.Post("/books/", bookHandler.Create)
		r.Get("/books/{id}", bookHandler.Get)
		r.Put("/books/{id}", bookHandler.Update)
		r.Delete("/books/{id}", bookHandler.Delete)

		r.Get("/events/", eventHandler.GetRecent)
		r.Get("/ws", wsHandler.Serve)
	})

	return r
}

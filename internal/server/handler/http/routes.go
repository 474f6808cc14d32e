package http

import (
	"net/http"

	"github.com/avolkov/taskboard/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles the per-resource HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth        *AuthHandler
	Todos       *TodoHandler
	Feed        *FeedHandler
	Messages    *MessageHandler
	Settings    *SettingsHandler
	Attachments *AttachmentHandler
}

// NewRouter constructs and returns the HTTP handler serving the taskboard
// API. It applies panic recovery, request logging and CORS globally,
// leaves /api/register and /api/login public, and puts every other route
// behind bearer-token authentication.
//
// Routes:
//
//	POST   /api/register                  → Auth.Register
//	POST   /api/login                     → Auth.Login
//	POST   /api/logout                    → Auth.Logout
//	GET    /api/me                        → Auth.Me
//	GET    /api/todos                     → Todos.List
//	POST   /api/todos                     → Todos.Create
//	GET    /api/todos/{id}                → Todos.Get
//	PUT    /api/todos/{id}                → Todos.Update
//	DELETE /api/todos/{id}                → Todos.Delete
//	POST   /api/todos/{id}/attachments    → Attachments.Upload (multipart)
//	DELETE /api/attachments/{id}          → Attachments.Delete
//	GET    /api/feed                      → Feed.Get
//	GET    /api/settings                  → Settings.Get
//	PATCH  /api/settings                  → Settings.Update
//	POST   /api/messages                  → Messages.Send
//	GET    /api/messages                  → Messages.Conversation
//	GET    /api/messages/inbox            → Messages.Inbox
//	GET    /api/messages/stream           → Messages.Stream (SSE)
func NewRouter(h Handlers, auth middleware.TokenAuthenticator, logger *zap.Logger, frontendOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))

	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendOrigin != "" {
		allowedOrigins = append(allowedOrigins, frontendOrigin)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(auth))

			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)

			r.Get("/todos", h.Todos.List)
			r.Post("/todos", h.Todos.Create)
			r.Get("/todos/{id}", h.Todos.Get)
			r.Put("/todos/{id}", h.Todos.Update)
			r.Delete("/todos/{id}", h.Todos.Delete)

			// Multipart body, so no JSON content-type enforcement here.
			r.Post("/todos/{id}/attachments", h.Attachments.Upload)
			r.Delete("/attachments/{id}", h.Attachments.Delete)

			r.Get("/feed", h.Feed.Get)

			r.Get("/settings", h.Settings.Get)
			r.Patch("/settings", h.Settings.Update)

			r.Post("/messages", h.Messages.Send)
			r.Get("/messages", h.Messages.Conversation)
			r.Get("/messages/inbox", h.Messages.Inbox)
			r.Get("/messages/stream", h.Messages.Stream)
		})
	})

	return r
}

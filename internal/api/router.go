package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		// Snapshot
		r.Post("/backup", s.handleBackup)

		// Reminder preview
		r.Get("/reminders/due", s.handleRemindersDue)

		// Conversation operations
		r.Route("/chats/{chatID}", func(r chi.Router) {
			r.Get("/", s.handleGetChat)
			r.Post("/entries", s.handleAddEntry)
			r.Delete("/entries/{index}", s.handleRemoveEntry)
			r.Post("/upload", s.handleUpload)
			r.Post("/{op}", s.handleOperation)
		})
	})

	return r
}

// internal/server/routes.go
package server

import (
	"net/http"

	"github.com/gurkanbulca/todoapp/internal/middleware"
)

func (s *Server) routes(mux *http.ServeMux, authn *middleware.Authenticator) {
	private := func(h http.HandlerFunc) http.Handler {
		return authn.Require(h)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.Handle("POST /api/auth/logout", private(s.handleLogout))
	mux.HandleFunc("POST /api/contact", s.handleContact)

	mux.Handle("GET /api/profile", private(s.handleGetProfile))
	mux.Handle("PUT /api/profile", private(s.handleUpdateProfile))
	mux.Handle("PUT /api/profile/avatar", private(s.handleUploadAvatar))

	mux.Handle("GET /api/dashboard", private(s.handleDashboard))

	mux.Handle("GET /api/todos", private(s.handleListTodos))
	mux.Handle("POST /api/todos", private(s.handleCreateTodo))
	mux.Handle("GET /api/todos/{id}", private(s.handleGetTodo))
	mux.Handle("PUT /api/todos/{id}", private(s.handleUpdateTodo))
	mux.Handle("DELETE /api/todos/{id}", private(s.handleDeleteTodo))
	mux.Handle("POST /api/todos/{id}/toggle", private(s.handleToggleTodo))
	mux.Handle("POST /api/todos/{id}/archive", private(s.handleArchiveTodo))

	mux.Handle("GET /api/todos/{id}/attachments", private(s.handleListAttachments))
	mux.Handle("POST /api/todos/{id}/attachments", private(s.handleUploadAttachment))
	mux.Handle("GET /api/todos/{id}/attachments/{attachmentID}", private(s.handleDownloadAttachment))
	mux.Handle("DELETE /api/todos/{id}/attachments/{attachmentID}", private(s.handleDeleteAttachment))

	mux.Handle("GET /api/tags", private(s.handleListTags))
	mux.Handle("POST /api/tags", private(s.handleCreateTag))
	mux.Handle("DELETE /api/tags/{id}", private(s.handleDeleteTag))
}

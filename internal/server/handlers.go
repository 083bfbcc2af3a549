// internal/server/handlers.go
package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gurkanbulca/todoapp/internal/middleware"
	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/service"
	"github.com/gurkanbulca/todoapp/internal/validation"
)

// multipartOverhead is allowed on top of the file size for boundaries and other form fields.
const multipartOverhead = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "err", err)
		writeAPIJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// profile returns the acting profile stored by the auth middleware.
func profile(r *http.Request) *models.Profile {
	p, _ := middleware.ProfileFromContext(r.Context())
	return p
}

// --- auth ---

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.services.Accounts.Signup(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.services.Accounts.Login(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, session)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.RefreshToken == "" {
		s.writeError(w, r, validation.New("refresh_token", "This field is required."))
		return
	}
	tokens, err := s.services.Accounts.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Accounts.Logout(r.Context(), profile(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Contact.Send(r.Context(), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusAccepted, map[string]string{"detail": "Thanks for your message."})
}

// --- profile ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, profile(r))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.services.Accounts.UpdateProfile(r.Context(), profile(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r, "avatar")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	updated, err := s.services.Accounts.UploadAvatar(r.Context(), profile(r), file, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, updated)
}

// formFile reads one uploaded file, enforcing the upload size limit.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+multipartOverhead)
	file, header, err := r.FormFile(field)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, err
		}
		return nil, nil, validation.New(field, "No file was submitted.")
	}
	if header.Size > s.opts.MaxUploadSize {
		file.Close()
		return nil, nil, &http.MaxBytesError{Limit: s.opts.MaxUploadSize}
	}
	return file, header, nil
}

// --- dashboard and todos ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.services.Todos.Dashboard(r.Context(), profile(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]interface{}{
		"counts": dash.Counts,
		"recent": newTodoResponses(dash.Recent, time.Now()),
	})
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Todos.List(r.Context(), profile(r), r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, service.ListResult[todoResponse]{
		Items:      newTodoResponses(result.Items, time.Now()),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in service.TodoInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, err := s.services.Todos.Create(r.Context(), profile(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, newTodoResponse(todo, time.Now()))
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, err := s.services.Todos.Get(r.Context(), profile(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, newTodoResponse(todo, time.Now()))
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in service.TodoInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, err := s.services.Todos.Update(r.Context(), profile(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, newTodoResponse(todo, time.Now()))
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Todos.Delete(r.Context(), profile(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, err := s.services.Todos.ToggleDone(r.Context(), profile(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, newTodoResponse(todo, time.Now()))
}

func (s *Server) handleArchiveTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, err := s.services.Todos.Archive(r.Context(), profile(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, newTodoResponse(todo, time.Now()))
}

// --- attachments ---

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attachments, err := s.services.Attachments.List(r.Context(), profile(r), todoID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, attachments)
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	file, header, err := s.formFile(w, r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	a, err := s.services.Attachments.Upload(r.Context(), profile(r), todoID, service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, a)
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "attachmentID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a, f, err := s.services.Attachments.Open(r.Context(), profile(r), todoID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.OriginalName))
	http.ServeContent(w, r, a.OriginalName, a.UploadedAt, f)
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	todoID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "attachmentID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Attachments.Delete(r.Context(), profile(r), todoID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- tags ---

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Tags.List(r.Context(), profile(r), r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in service.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tag, err := s.services.Tags.Create(r.Context(), profile(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Tags.Delete(r.Context(), profile(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

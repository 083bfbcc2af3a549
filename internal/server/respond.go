// internal/server/respond.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/service"
	"github.com/gurkanbulca/todoapp/internal/validation"
)

const maxJSONBody = 1 << 20

var (
	errBadJSON      = errors.New("request body must be a JSON object")
	errBodyTooLarge = errors.New("request body too large")
)

type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func writeAPIJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps service and validation failures to status codes. Unknown
// errors are logged and reported as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError

	if verr, ok := validation.As(err); ok {
		writeAPIJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed.", Fields: verr.Fields})
		return
	}

	switch {
	case errors.Is(err, errBadJSON):
		writeAPIJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeAPIJSON(w, http.StatusNotFound, errorResponse{Error: "Not found."})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeAPIJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid email or password."})
	case errors.Is(err, service.ErrUnauthenticated):
		writeAPIJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid or expired token."})
	case errors.Is(err, errBodyTooLarge):
		writeAPIJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large."})
	case errors.As(err, &maxBytes):
		writeAPIJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Upload too large."})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeAPIJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error."})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return errBodyTooLarge
		}
		return errBadJSON
	}
	return nil
}

// pathID parses a numeric path value. Anything else is reported as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

// todoResponse adds the derived fields clients display.
type todoResponse struct {
	*models.Todo
	Status        models.Status `json:"status"`
	IsOverdue     bool          `json:"is_overdue"`
	OwnerFullName string        `json:"owner_full_name"`
}

func newTodoResponse(t *models.Todo, now time.Time) todoResponse {
	return todoResponse{
		Todo:          t,
		Status:        t.Status(),
		IsOverdue:     t.IsOverdue(now),
		OwnerFullName: t.OwnerFullName(),
	}
}

func newTodoResponses(todos []*models.Todo, now time.Time) []todoResponse {
	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, newTodoResponse(t, now))
	}
	return out
}

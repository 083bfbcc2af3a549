// internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/service"
	"github.com/gurkanbulca/todoapp/pkg/auth"
)

// ProfileResolver maps an access token to the acting profile.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, accessToken string) (*models.Profile, error)
}

// Authenticator guards handlers that need a signed-in user.
type Authenticator struct {
	resolver ProfileResolver
	logger   *log.Logger
}

func NewAuthenticator(resolver ProfileResolver, logger *log.Logger) *Authenticator {
	return &Authenticator{resolver: resolver, logger: logger}
}

// Require resolves the Bearer token and stores the profile in the request
// context. Requests without a valid token get 401.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			unauthorized(w, "Authentication credentials were not provided.")
			return
		}

		profile, err := a.resolver.ResolveProfile(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				unauthorized(w, "Invalid or expired token.")
				return
			}
			a.logger.Error("failed to resolve profile", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error.")
			return
		}

		info := GetClientInfoFromContext(r.Context())
		info.UserID = profile.UserID
		if profile.User != nil {
			info.UserEmail = profile.User.Email
		}

		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="todoapp"`)
	writeError(w, http.StatusUnauthorized, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func WithProfile(ctx context.Context, profile *models.Profile) context.Context {
	return context.WithValue(ctx, ContextKeyProfile, profile)
}

// ProfileFromContext returns the profile stored by Require.
func ProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	profile, ok := ctx.Value(ContextKeyProfile).(*models.Profile)
	return profile, ok && profile != nil
}

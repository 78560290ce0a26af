package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/minetrack/apiserver/internal/auth"
	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/store"
	"github.com/minetrack/apiserver/types"
)

// UserLoader resolves the subject of a verified token.
type UserLoader interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// Authenticator turns bearer tokens into users on the request context.
type Authenticator struct {
	tokens *auth.TokenIssuer
	users  UserLoader
	log    logging.Logger
}

func NewAuthenticator(tokens *auth.TokenIssuer, users UserLoader, log logging.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, log: log}
}

// RequireAuth verifies the bearer token and loads its subject. A token whose
// user no longer exists is rejected like an invalid one.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		identity, err := a.tokens.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := a.users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			respondError(w, r, a.log, err, "user")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireRoles admits only users whose current role is in allowed. It must
// run after RequireAuth.
func RequireRoles(allowed auth.AllowList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := userFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err := auth.Permit(allowed, user.Role); err != nil {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bookworm-api/internal/domain"
)

// contextKey is a private type for context keys defined in this package.
type contextKey int

// userContextKey is the context key under which the authenticated user
// is stored.
const userContextKey contextKey = iota

// UserStore defines the interface the middleware uses to resolve the
// authenticated identity. Satisfied by repository.UserRepository.
type UserStore interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware returns a middleware that authenticates requests using a
// bearer token. The token is verified, the user is resolved from the
// store, and the identity is attached to the request context. The
// middleware is a pure gate: it produces either an authenticated
// identity or a 401 rejection, never business data.
func Middleware(tokens *TokenService, users UserStore, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, ErrNoToken)
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				logger.Debug().Str("path", r.URL.Path).Msg("token verification failed")
				writeAuthError(w, ErrInvalidToken)
				return
			}

			// The token may outlive the account: a user deleted after
			// issuance must not authenticate.
			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Debug().Int64("user_id", userID).Msg("token subject not found")
				writeAuthError(w, ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom retrieves the authenticated user from a request context.
func UserFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// WithUser returns a context carrying the given user. Intended for tests
// and internal calls that bypass the HTTP middleware.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// writeAuthError writes a 401 JSON rejection.
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": authMessage(err)})
}

// authMessage maps an auth error to its user-facing message.
func authMessage(err error) string {
	switch err {
	case ErrNoToken:
		return "No authentication token, access denied"
	default:
		return "Token is not valid"
	}
}

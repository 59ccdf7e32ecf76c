package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fkhayef/eventplanner/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// TestUserHeader carries the acting user when dev auth is enabled.
	TestUserHeader = "X-Test-User-ID"
)

var (
	errMissingSubject = errors.New("token has no subject")
	errInvalidSubject = errors.New("token subject is not a user id")
)

// Authenticator resolves the acting user from a request. Identity itself is
// owned by an external provider; this only verifies what it issued.
type Authenticator struct {
	secret  []byte
	devAuth bool
}

// NewAuthenticator creates an authenticator. With devAuth enabled the
// X-Test-User-ID header is trusted when no bearer token is present.
func NewAuthenticator(secret string, devAuth bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), devAuth: devAuth}
}

// Middleware attaches the user id to the request context. Requests without
// credentials pass through anonymously; RequireUser rejects them.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			userID, err := a.ParseToken(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
			return
		}

		if a.devAuth {
			if userID, err := strconv.ParseInt(r.Header.Get(TestUserHeader), 10, 64); err == nil && userID > 0 {
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// ParseToken validates an HS256 token and returns the user id in its subject.
func (a *Authenticator) ParseToken(tokenString string) (int64, error) {
	if len(a.secret) == 0 {
		return 0, jwt.ErrTokenUnverifiable
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	if sub == "" {
		return 0, errMissingSubject
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID < 1 {
		return 0, errInvalidSubject
	}
	return userID, nil
}

// RequireUser rejects requests that carry no authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying the acting user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

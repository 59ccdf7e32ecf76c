package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// echoUser responds with the resolved user id, or 0 when anonymous.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	w.Write([]byte(strconv.FormatInt(userID, 10)))
})

func TestAuthenticatorBearerToken(t *testing.T) {
	auth := NewAuthenticator(testSecret, false)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, "7", time.Hour), http.StatusOK, "7"},
		{"expired token", "Bearer " + signToken(t, testSecret, "7", -time.Hour), http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signToken(t, "other", "7", time.Hour), http.StatusUnauthorized, ""},
		{"non numeric subject", "Bearer " + signToken(t, testSecret, "alice", time.Hour), http.StatusUnauthorized, ""},
		{"bad scheme", "Token abc", http.StatusUnauthorized, ""},
		{"anonymous", "", http.StatusOK, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			auth.Middleware(echoUser).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuthenticatorDevHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TestUserHeader, "12")

	rec := httptest.NewRecorder()
	NewAuthenticator("", true).Middleware(echoUser).ServeHTTP(rec, req)
	assert.Equal(t, "12", rec.Body.String())

	rec = httptest.NewRecorder()
	NewAuthenticator(testSecret, false).Middleware(echoUser).ServeHTTP(rec, req)
	assert.Equal(t, "0", rec.Body.String())
}

func TestRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireUser(echoUser).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), 3))
	rec = httptest.NewRecorder()
	RequireUser(echoUser).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Body.String())
}

// scripter answers every script run with a fixed token bucket result.
type scripter struct {
	result []interface{}
	keys   []string
}

func (s *scripter) reply(ctx context.Context, keys []string) *redis.Cmd {
	s.keys = keys
	cmd := redis.NewCmd(ctx)
	cmd.SetVal(s.result)
	return cmd
}

func (s *scripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.reply(ctx, keys)
}

func (s *scripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.reply(ctx, keys)
}

func (s *scripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.reply(ctx, keys)
}

func (s *scripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.reply(ctx, keys)
}

func (s *scripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (s *scripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func rateLimitedRouter(rdb redis.Scripter) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithUserID(req.Context(), 5)))
		})
	})
	r.With(RateLimit(rdb, RateLimitOptions{Capacity: 3, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}, logger)).
		Post("/friends/request/{user_id}/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	r.With(RateLimit(rdb, RateLimitOptions{Capacity: 3, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}, logger)).
		Get("/friends/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	return r
}

func TestRateLimitAllows(t *testing.T) {
	s := &scripter{result: []interface{}{int64(1), int64(2), int64(0)}}

	rec := httptest.NewRecorder()
	rateLimitedRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/friends/request/9/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	require.Len(t, s.keys, 1)
	assert.Equal(t, "rl:user:5:route:POST /friends/request/{user_id}/", s.keys[0])
}

func TestRateLimitBlocks(t *testing.T) {
	s := &scripter{result: []interface{}{int64(0), int64(0), int64(1500)}}

	rec := httptest.NewRecorder()
	rateLimitedRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/friends/request/9/", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	rec := httptest.NewRecorder()
	rateLimitedRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/friends/request/9/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitSkipsReads(t *testing.T) {
	s := &scripter{result: []interface{}{int64(0), int64(0), int64(1500)}}

	rec := httptest.NewRecorder()
	rateLimitedRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/friends/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.keys)
}

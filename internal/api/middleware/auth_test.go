package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/api/shared"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJWT accepts one token.
type stubJWT struct {
	token  string
	userID uuid.UUID
	err    error
}

func (s stubJWT) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.token, nil
}

func (s stubJWT) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: s.userID}, nil
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	m := NewAuthMiddleware(stubJWT{token: "good", userID: userID})

	var gotUser uuid.UUID
	var gotOwner string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		gotUser, ok = GetUserID(r)
		require.True(t, ok)
		gotOwner, ok = credential.OwnerFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/exams", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, userID.String(), gotOwner, "the user owns the selected credential")
}

func TestAuthenticateRejects(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		jwt     stubJWT
		status  int
		message string
	}{
		{"missing header", "", stubJWT{token: "good"}, http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic good", stubJWT{token: "good"}, http.StatusUnauthorized, "Invalid authorization format"},
		{"no token", "Bearer ", stubJWT{token: "good"}, http.StatusUnauthorized, "Invalid authorization format"},
		{"invalid token", "Bearer bad", stubJWT{token: "good"}, http.StatusUnauthorized, "Invalid token"},
		{"expired token", "Bearer good", stubJWT{token: "good", err: auth.ErrExpiredToken}, http.StatusUnauthorized, "Token expired"},
		{"not yet valid", "Bearer good", stubJWT{token: "good", err: auth.ErrTokenNotYetValid}, http.StatusUnauthorized, "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/api/exams", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tt.jwt).Authenticate(next).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	rec := httptest.NewRecorder()
	TraceMiddleware(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, traceID, 2*shared.TraceIDLength)
	assert.Equal(t, traceID, rec.Header().Get("X-Trace-ID"))
}

package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "contactbook/pkg/domain"
	"contactbook/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AuthMiddlewareSuite) serve(v JWTValidator, header string) (*httptest.ResponseRecorder, bool, id.UserID, string) {
	var called bool
	var gotUser id.UserID
	var gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUser = requestcontext.UserID(r.Context())
		gotEmail = requestcontext.Email(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	RequireAuth(v, s.logger)(next).ServeHTTP(rec, req)
	return rec, called, gotUser, gotEmail
}

func (s *AuthMiddlewareSuite) TestRequireAuth() {
	userID := id.NewUserID()

	s.Run("valid token places account on context", func() {
		v := stubValidator{claims: &JWTClaims{UserID: userID.String(), Email: "ann@example.com"}}
		rec, called, gotUser, gotEmail := s.serve(v, "Bearer good")
		s.Equal(http.StatusOK, rec.Code)
		s.True(called)
		s.Equal(userID, gotUser)
		s.Equal("ann@example.com", gotEmail)
	})

	s.Run("missing header is rejected", func() {
		rec, called, _, _ := s.serve(stubValidator{}, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.False(called)
		s.Contains(rec.Body.String(), "Missing or invalid Authorization header")
	})

	s.Run("non-bearer scheme is rejected", func() {
		rec, called, _, _ := s.serve(stubValidator{}, "Basic abc")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.False(called)
	})

	s.Run("validator error is rejected", func() {
		rec, called, _, _ := s.serve(stubValidator{err: errors.New("expired")}, "Bearer bad")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.False(called)
		s.Contains(rec.Body.String(), "Invalid or expired token")
	})

	s.Run("malformed subject is rejected", func() {
		v := stubValidator{claims: &JWTClaims{UserID: "not-a-uuid", Email: "ann@example.com"}}
		rec, called, _, _ := s.serve(v, "Bearer good")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.False(called)
	})
}

func TestRequestIDPropagation(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("inbound id is reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("missing id is generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})
}

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{name: "forwarded chain takes first", xff: "203.0.113.7, 10.0.0.1", want: "203.0.113.7"},
		{name: "real ip header", xri: " 198.51.100.2 ", want: "198.51.100.2"},
		{name: "ipv4 remote addr", remoteAddr: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "ipv6 remote addr", remoteAddr: "[::1]:5555", want: "::1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.9", want: "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req))
		})
	}
}

func TestRecoveryReturns500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRequestTimePinsNow(t *testing.T) {
	var first, second any
	h := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		second = requestcontext.Now(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, first, second)
}

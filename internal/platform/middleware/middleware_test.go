package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tally/pkg/domain"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return v.claims, v.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireActor(t *testing.T) {
	userID := id.NewUserID()

	run := func(validator JWTValidator, authorization string) (*httptest.ResponseRecorder, *id.Actor) {
		var seen *id.Actor
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, ok := GetActor(r.Context()); ok {
				seen = &actor
			}
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/purchases", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		RequireActor(validator, discardLogger())(next).ServeHTTP(w, req)
		return w, seen
	}

	t.Run("injects the actor for a valid token", func(t *testing.T) {
		validator := stubValidator{claims: &JWTClaims{UserID: userID.String(), Role: "employee"}}
		w, actor := run(validator, "Bearer token")
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, actor)
		assert.Equal(t, userID, actor.ID)
		assert.Equal(t, id.RoleEmployee, actor.Role)
	})

	t.Run("rejects a missing bearer token", func(t *testing.T) {
		w, actor := run(stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, actor)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		w, _ := run(stubValidator{err: errors.New("bad signature")}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		validator := stubValidator{claims: &JWTClaims{UserID: userID.String(), Role: "superuser"}}
		w, _ := run(validator, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a malformed subject", func(t *testing.T) {
		validator := stubValidator{claims: &JWTClaims{UserID: "nobody", Role: "admin"}}
		w, _ := run(validator, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("honors an inbound header", func(t *testing.T) {
		var inContext string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inContext = GetRequestID(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-upstream")
		w := httptest.NewRecorder()
		RequestID(next).ServeHTTP(w, req)

		assert.Equal(t, "req-upstream", inContext)
		assert.Equal(t, "req-upstream", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates one otherwise", func(t *testing.T) {
		var inContext string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inContext = GetRequestID(r.Context())
		})

		w := httptest.NewRecorder()
		RequestID(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, inContext)
		_, err := uuid.Parse(inContext)
		assert.NoError(t, err)
		assert.Equal(t, inContext, w.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	Recovery(discardLogger())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

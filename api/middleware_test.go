package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oncalldoc/invoice-api/models"
)

func TestMiddlewareNoToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest("GET", "/users", nil)
	rr := httptest.NewRecorder()

	Middleware(testSecret, next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "unauthorized")
}

func TestMiddlewareBadToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer asdfasdf")
	rr := httptest.NewRecorder()

	Middleware(testSecret, next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddlewareValidTokenInjectsSession(t *testing.T) {
	want := Session{UserID: "abc123", Username: "doc", Role: models.RoleSuperuser}
	token, err := SignToken(want, testSecret)
	assert.NoError(t, err)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, ok := SessionFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, want, got)
	})

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	Middleware(testSecret, next).ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/auth"
	"github.com/veriwork/veriwork/internal/rbac"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveWithIdentity(t *testing.T, h http.Handler, method, path string, identity *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestRouteAuthzRequiresIdentity(t *testing.T) {
	h := middleware.RouteAuthz(rbac.Default)(okHandler())

	rec := serveWithIdentity(t, h, http.MethodGet, "/work-queue", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestRouteAuthzAllowsPermittedRole(t *testing.T) {
	h := middleware.RouteAuthz(rbac.Default)(okHandler())
	manager := &auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: rbac.RoleManager}

	rec := serveWithIdentity(t, h, http.MethodGet, "/work-queue", manager)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteAuthzDeniesForbiddenRole(t *testing.T) {
	h := middleware.RouteAuthz(rbac.Default)(okHandler())
	employee := &auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: rbac.RoleEmployee}

	rec := serveWithIdentity(t, h, http.MethodGet, "/work-queue", employee)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestRouteAuthzDeniesUnlistedPath(t *testing.T) {
	h := middleware.RouteAuthz(rbac.Default)(okHandler())
	admin := &auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: rbac.RoleCompanyAdmin}

	rec := serveWithIdentity(t, h, http.MethodGet, "/internal/metrics", admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := middleware.RequireRole(rbac.RoleCompanyAdmin)(okHandler())

	admin := &auth.Identity{AccountID: uuid.New(), Role: rbac.RoleCompanyAdmin}
	rec := serveWithIdentity(t, h, http.MethodGet, "/anything", admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	employee := &auth.Identity{AccountID: uuid.New(), Role: rbac.RoleEmployee}
	rec = serveWithIdentity(t, h, http.MethodGet, "/anything", employee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serveWithIdentity(t, h, http.MethodGet, "/anything", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	// A caller-supplied ID is kept.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-42", seen)
	assert.Equal(t, "trace-42", rec.Header().Get("X-Request-ID"))
}

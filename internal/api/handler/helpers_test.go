package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/auth"
	"github.com/veriwork/veriwork/internal/team"
	"github.com/veriwork/veriwork/internal/workentry"
	"github.com/veriwork/veriwork/internal/workview"
)

// execute runs one request through a chi router with the identity already
// resolved, the way the auth middleware would leave it.
func execute(t *testing.T, register func(r chi.Router), method, target string, body any, identity *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	if identity != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), identity)))
			})
		})
	}
	register(r)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}

// entryRepoStub implements workentry.Repository with per-test functions.
type entryRepoStub struct {
	createFn        func(ctx context.Context, e *workentry.WorkEntry) error
	getFn           func(ctx context.Context, id uuid.UUID) (*workentry.WorkEntry, error)
	updateFn        func(ctx context.Context, id uuid.UUID, f workentry.UpdateFields) (*workentry.WorkEntry, error)
	transitionFn    func(ctx context.Context, id uuid.UUID, tr workentry.Transition) (*workentry.WorkEntry, error)
	addAnnotationFn func(ctx context.Context, a *workentry.Annotation) error
	annotationsFn   func(ctx context.Context, id uuid.UUID) ([]workentry.Annotation, error)
}

func (s *entryRepoStub) Create(ctx context.Context, e *workentry.WorkEntry) error {
	return s.createFn(ctx, e)
}

func (s *entryRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*workentry.WorkEntry, error) {
	return s.getFn(ctx, id)
}

func (s *entryRepoStub) Update(ctx context.Context, id uuid.UUID, f workentry.UpdateFields) (*workentry.WorkEntry, error) {
	return s.updateFn(ctx, id, f)
}

func (s *entryRepoStub) ApplyTransition(ctx context.Context, id uuid.UUID, tr workentry.Transition) (*workentry.WorkEntry, error) {
	return s.transitionFn(ctx, id, tr)
}

func (s *entryRepoStub) AddAnnotation(ctx context.Context, a *workentry.Annotation) error {
	return s.addAnnotationFn(ctx, a)
}

func (s *entryRepoStub) Annotations(ctx context.Context, id uuid.UUID) ([]workentry.Annotation, error) {
	if s.annotationsFn == nil {
		return nil, nil
	}
	return s.annotationsFn(ctx, id)
}

// teamRepoStub implements team.Repository with per-test functions.
type teamRepoStub struct {
	createFn         func(ctx context.Context, tm *team.Team) error
	getFn            func(ctx context.Context, id uuid.UUID) (*team.Team, error)
	assignFn         func(ctx context.Context, a *team.Assignment) error
	deactivateFn     func(ctx context.Context, employeeID, teamID uuid.UUID) error
	listForManagerFn func(ctx context.Context, managerID uuid.UUID) ([]team.ManagerTeam, error)
	listForCompanyFn func(ctx context.Context, companyID uuid.UUID) ([]team.CompanyTeam, error)
	managesFn        func(ctx context.Context, managerID, teamID uuid.UUID) (bool, error)
}

func (s *teamRepoStub) Create(ctx context.Context, tm *team.Team) error {
	return s.createFn(ctx, tm)
}

func (s *teamRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	return s.getFn(ctx, id)
}

func (s *teamRepoStub) AssignEmployee(ctx context.Context, a *team.Assignment) error {
	return s.assignFn(ctx, a)
}

func (s *teamRepoStub) DeactivateAssignment(ctx context.Context, employeeID, teamID uuid.UUID) error {
	return s.deactivateFn(ctx, employeeID, teamID)
}

func (s *teamRepoStub) ListForManager(ctx context.Context, managerID uuid.UUID) ([]team.ManagerTeam, error) {
	return s.listForManagerFn(ctx, managerID)
}

func (s *teamRepoStub) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]team.CompanyTeam, error) {
	return s.listForCompanyFn(ctx, companyID)
}

func (s *teamRepoStub) ManagesTeam(ctx context.Context, managerID, teamID uuid.UUID) (bool, error) {
	return s.managesFn(ctx, managerID, teamID)
}

// viewRepoStub implements workview.Repository with per-test functions.
type viewRepoStub struct {
	queueFn   func(ctx context.Context, managerID uuid.UUID) ([]workview.QueueItem, error)
	companyFn func(ctx context.Context, companyID uuid.UUID) ([]workview.CompanyItem, error)
}

func (s *viewRepoStub) ManagerQueue(ctx context.Context, managerID uuid.UUID) ([]workview.QueueItem, error) {
	return s.queueFn(ctx, managerID)
}

func (s *viewRepoStub) CompanyView(ctx context.Context, companyID uuid.UUID) ([]workview.CompanyItem, error) {
	return s.companyFn(ctx, companyID)
}

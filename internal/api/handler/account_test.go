package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/veriwork/veriwork/internal/api/handler"
	"github.com/veriwork/veriwork/internal/auth"
)

// authRepoStub implements auth.Repository for account provisioning tests.
type authRepoStub struct {
	createAccountFn func(ctx context.Context, a *auth.Account) error
}

func (s *authRepoStub) CreateCompany(context.Context, *auth.Company) error {
	return nil
}

func (s *authRepoStub) CreateAccount(ctx context.Context, a *auth.Account) error {
	return s.createAccountFn(ctx, a)
}

func (s *authRepoStub) FindByPrefix(context.Context, string) ([]auth.Account, error) {
	return nil, nil
}

func (s *authRepoStub) CountAccounts(context.Context) (int, error) {
	return 0, nil
}

func registerAccountRoutes(h *handler.AccountHandler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Post("/accounts", h.Create)
	}
}

func TestCreateAccountReturnsKeyOnce(t *testing.T) {
	identity := adminIdentity()
	var stored *auth.Account
	svc := auth.NewService(&authRepoStub{createAccountFn: func(_ context.Context, a *auth.Account) error {
		a.ID = uuid.New()
		stored = a
		return nil
	}}, bcrypt.MinCost)
	h := handler.NewAccountHandler(svc)

	body := map[string]any{"name": "eve", "email": "eve@example.com", "role": "EMPLOYEE"}
	rec := execute(t, registerAccountRoutes(h), http.MethodPost, "/accounts", body, identity)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		CompanyID string `json:"companyId"`
		Role      string `json:"role"`
		ApiKey    string `json:"apiKey"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, identity.CompanyID.String(), resp.CompanyID)
	assert.Equal(t, "EMPLOYEE", resp.Role)
	require.NotEmpty(t, resp.ApiKey)

	// The stored record carries only the hash, never the raw key.
	require.NotNil(t, stored)
	assert.NotEqual(t, resp.ApiKey, stored.ApiKeyHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.ApiKeyHash), []byte(resp.ApiKey)))
}

func TestCreateAccountRejectsAdminRole(t *testing.T) {
	svc := auth.NewService(&authRepoStub{}, bcrypt.MinCost)
	h := handler.NewAccountHandler(svc)

	body := map[string]any{"name": "eve", "email": "eve@example.com", "role": "COMPANY_ADMIN"}
	rec := execute(t, registerAccountRoutes(h), http.MethodPost, "/accounts", body, adminIdentity())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	requireErrorCode(t, rec, "VALIDATION_ERROR")
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	svc := auth.NewService(&authRepoStub{createAccountFn: func(context.Context, *auth.Account) error {
		return auth.ErrDuplicateEmail
	}}, bcrypt.MinCost)
	h := handler.NewAccountHandler(svc)

	body := map[string]any{"name": "eve", "email": "eve@example.com", "role": "EMPLOYEE"}
	rec := execute(t, registerAccountRoutes(h), http.MethodPost, "/accounts", body, adminIdentity())
	require.Equal(t, http.StatusConflict, rec.Code)
	requireErrorCode(t, rec, "DUPLICATE_EMAIL")
}

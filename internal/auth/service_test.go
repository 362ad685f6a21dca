package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/veriwork/veriwork/internal/rbac"
)

// fakeRepository keeps accounts in memory, indexed by prefix like the real
// store's prefix query.
type fakeRepository struct {
	companies []Company
	accounts  []Account
}

func (f *fakeRepository) CreateCompany(_ context.Context, c *Company) error {
	for _, existing := range f.companies {
		if existing.Name == c.Name {
			return ErrDuplicateCompanyName
		}
	}
	c.ID = uuid.New()
	f.companies = append(f.companies, *c)
	return nil
}

func (f *fakeRepository) CreateAccount(_ context.Context, a *Account) error {
	for _, existing := range f.accounts {
		if existing.Email == a.Email {
			return ErrDuplicateEmail
		}
	}
	a.ID = uuid.New()
	f.accounts = append(f.accounts, *a)
	return nil
}

func (f *fakeRepository) FindByPrefix(_ context.Context, prefix string) ([]Account, error) {
	var matched []Account
	for _, a := range f.accounts {
		if a.ApiKeyPrefix == prefix && a.RevokedAt == nil {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (f *fakeRepository) CountAccounts(_ context.Context) (int, error) {
	return len(f.accounts), nil
}

func newTestService() (*Service, *fakeRepository) {
	repo := &fakeRepository{}
	// MinCost keeps the bcrypt rounds cheap in tests.
	return NewService(repo, bcrypt.MinCost), repo
}

func TestGenerateKeyShape(t *testing.T) {
	svc, _ := newTestService()

	rawKey, prefix, hash, err := svc.GenerateKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rawKey, "vw_"))
	assert.Equal(t, rawKey[:8], prefix)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey)))

	other, _, _, err := svc.GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, rawKey, other)
}

func TestCreateAccountAndAuthenticate(t *testing.T) {
	svc, _ := newTestService()

	account := &Account{
		CompanyID: uuid.New(),
		Name:      "eve",
		Email:     "eve@example.com",
		Role:      rbac.RoleEmployee,
	}
	rawKey, err := svc.CreateAccount(context.Background(), account)
	require.NoError(t, err)
	require.NotEmpty(t, rawKey)
	assert.NotEqual(t, rawKey, account.ApiKeyHash, "raw key is never stored")

	identity, err := svc.Authenticate(context.Background(), rawKey)
	require.NoError(t, err)
	assert.Equal(t, account.ID, identity.AccountID)
	assert.Equal(t, account.CompanyID, identity.CompanyID)
	assert.Equal(t, rbac.RoleEmployee, identity.Role)
	assert.Equal(t, "eve", identity.Name)
}

func TestAuthenticateRejectsBadKeys(t *testing.T) {
	svc, _ := newTestService()

	account := &Account{CompanyID: uuid.New(), Name: "eve", Email: "eve@example.com", Role: rbac.RoleEmployee}
	rawKey, err := svc.CreateAccount(context.Background(), account)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "vw_")
	assert.ErrorIs(t, err, ErrInvalidKey, "keys shorter than the prefix never match")

	// Same prefix, wrong remainder.
	_, err = svc.Authenticate(context.Background(), rawKey[:8]+"forgedforgedforged")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = svc.Authenticate(context.Background(), "vw_completely-unknown-key")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAuthenticateIgnoresRevokedAccounts(t *testing.T) {
	svc, repo := newTestService()

	account := &Account{CompanyID: uuid.New(), Name: "eve", Email: "eve@example.com", Role: rbac.RoleEmployee}
	rawKey, err := svc.CreateAccount(context.Background(), account)
	require.NoError(t, err)

	now := account.CreatedAt
	for i := range repo.accounts {
		repo.accounts[i].RevokedAt = &now
	}

	_, err = svc.Authenticate(context.Background(), rawKey)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestBootstrapCompanyCreatesAdminOnce(t *testing.T) {
	svc, repo := newTestService()

	rawKey, err := svc.BootstrapCompany(context.Background(), "acme")
	require.NoError(t, err)
	require.NotEmpty(t, rawKey)

	require.Len(t, repo.companies, 1)
	require.Len(t, repo.accounts, 1)
	admin := repo.accounts[0]
	assert.Equal(t, rbac.RoleCompanyAdmin, admin.Role)
	assert.Equal(t, repo.companies[0].ID, admin.CompanyID)

	identity, err := svc.Authenticate(context.Background(), rawKey)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleCompanyAdmin, identity.Role)

	// A second bootstrap is a no-op once any account exists.
	rawKey, err = svc.BootstrapCompany(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, rawKey)
	assert.Len(t, repo.companies, 1)
	assert.Len(t, repo.accounts, 1)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	first := &Account{CompanyID: uuid.New(), Name: "eve", Email: "eve@example.com", Role: rbac.RoleEmployee}
	_, err := svc.CreateAccount(context.Background(), first)
	require.NoError(t, err)

	second := &Account{CompanyID: first.CompanyID, Name: "other", Email: "eve@example.com", Role: rbac.RoleManager}
	_, err = svc.CreateAccount(context.Background(), second)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

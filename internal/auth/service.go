package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/veriwork/veriwork/internal/rbac"
)

// ErrInvalidKey is returned when the provided API key does not match any
// active account.
var ErrInvalidKey = errors.New("invalid or revoked API key")

// Service provides the identity-provider operations: key issuance and
// authentication.
type Service struct {
	repo       Repository
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// GenerateKey creates a new API key. Returns the raw key, its prefix (first
// 8 chars), and the bcrypt hash. The raw key is: 32 random bytes ->
// base64url -> prepend "vw_".
func (s *Service) GenerateKey() (rawKey, prefix, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	rawKey = "vw_" + base64.RawURLEncoding.EncodeToString(b)
	prefix = rawKey[:8]

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawKey), s.bcryptCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hashing key: %w", err)
	}
	hash = string(hashBytes)

	return rawKey, prefix, hash, nil
}

// Authenticate resolves a raw API key to an Identity. It extracts the
// prefix, looks up candidates, and bcrypt-compares each one.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (*Identity, error) {
	if len(rawKey) < 8 {
		return nil, ErrInvalidKey
	}

	prefix := rawKey[:8]

	candidates, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("finding accounts by prefix: %w", err)
	}

	for _, a := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(a.ApiKeyHash), []byte(rawKey)) == nil {
			return &Identity{
				AccountID: a.ID,
				Name:      a.Name,
				CompanyID: a.CompanyID,
				Role:      a.Role,
			}, nil
		}
	}

	return nil, ErrInvalidKey
}

// CreateAccount issues a key and creates an account with it. Returns the
// account and the raw key, which is displayed only once.
func (s *Service) CreateAccount(ctx context.Context, account *Account) (string, error) {
	rawKey, prefix, hash, err := s.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generating account key: %w", err)
	}

	account.ApiKeyPrefix = prefix
	account.ApiKeyHash = hash

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return "", err
	}

	return rawKey, nil
}

// BootstrapCompany creates the initial company and its admin account if the
// accounts table is empty. Returns the raw API key (only displayed once).
// If accounts already exist, returns empty string.
func (s *Service) BootstrapCompany(ctx context.Context, companyName string) (string, error) {
	count, err := s.repo.CountAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("counting accounts: %w", err)
	}

	if count > 0 {
		return "", nil
	}

	company := &Company{Name: companyName}
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return "", fmt.Errorf("creating bootstrap company: %w", err)
	}

	admin := &Account{
		CompanyID: company.ID,
		Name:      "admin",
		Email:     "admin@" + companyName + ".invalid",
		Role:      rbac.RoleCompanyAdmin,
	}

	rawKey, err := s.CreateAccount(ctx, admin)
	if err != nil {
		return "", fmt.Errorf("creating bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin API key created", "company", companyName, "key", rawKey)

	return rawKey, nil
}

package auth

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when an account record is not found.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when an account with the same email already
// exists.
var ErrDuplicateEmail = errors.New("account email already exists")

// ErrDuplicateCompanyName is returned when a company with the same name
// already exists.
var ErrDuplicateCompanyName = errors.New("company name already exists")

// Repository provides persistence for companies and accounts.
type Repository interface {
	CreateCompany(ctx context.Context, c *Company) error
	CreateAccount(ctx context.Context, a *Account) error
	// FindByPrefix returns non-revoked accounts whose API key prefix
	// matches. Several accounts may share a prefix; callers disambiguate by
	// hash comparison.
	FindByPrefix(ctx context.Context, prefix string) ([]Account, error)
	CountAccounts(ctx context.Context) (int, error)
}

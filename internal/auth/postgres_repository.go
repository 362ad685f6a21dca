package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veriwork/veriwork/internal/database"
	"github.com/veriwork/veriwork/internal/rbac"
)

const createCompanyQuery = `
		INSERT INTO companies (name)
		VALUES ($1)
		RETURNING id, created_at`

const createAccountQuery = `
		INSERT INTO accounts (company_id, name, email, role, api_key_prefix, api_key_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

const findByPrefixQuery = `
		SELECT id, company_id, name, email, role, api_key_prefix, api_key_hash, created_at, revoked_at
		FROM accounts
		WHERE api_key_prefix = $1 AND revoked_at IS NULL`

const countAccountsQuery = `SELECT COUNT(*) FROM accounts`

// PostgresRepository implements Repository on top of a database.Querier.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given querier.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// CreateCompany inserts a new company record.
func (r *PostgresRepository) CreateCompany(ctx context.Context, c *Company) error {
	err := r.db.QueryRow(ctx, createCompanyQuery, c.Name).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCompanyName
		}
		return fmt.Errorf("inserting company: %w", err)
	}

	return nil
}

// CreateAccount inserts a new account record.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a *Account) error {
	err := r.db.QueryRow(ctx, createAccountQuery,
		a.CompanyID, a.Name, a.Email, string(a.Role), a.ApiKeyPrefix, a.ApiKeyHash,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// FindByPrefix retrieves non-revoked accounts matching an API key prefix.
func (r *PostgresRepository) FindByPrefix(ctx context.Context, prefix string) ([]Account, error) {
	rows, err := r.db.Query(ctx, findByPrefixQuery, prefix)
	if err != nil {
		return nil, fmt.Errorf("querying accounts by prefix: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		var role string
		err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &a.Email, &role, &a.ApiKeyPrefix, &a.ApiKeyHash, &a.CreatedAt, &a.RevokedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		a.Role, err = rbac.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

// CountAccounts returns the total number of accounts, including revoked
// ones.
func (r *PostgresRepository) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countAccountsQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/rbac"
)

// Company represents a row in the companies table.
type Company struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Account represents a row in the accounts table. Every actor on the
// platform (employee, manager, company admin) is a company-scoped account
// authenticated by API key.
type Account struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Name         string
	Email        string
	Role         rbac.Role
	ApiKeyPrefix string
	ApiKeyHash   string
	CreatedAt    time.Time
	RevokedAt    *time.Time
}

// Identity is the authenticated actor tuple stored in the request context.
// The core trusts it and does not re-derive it.
type Identity struct {
	AccountID uuid.UUID
	Name      string
	CompanyID uuid.UUID
	Role      rbac.Role
}

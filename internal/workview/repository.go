// Package workview is the scoped query layer: read-only views over work
// entries pre-filtered by the caller's role boundary. Scoping is resolved
// through joins at read time rather than cached role data on the entities.
package workview

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/workentry"
)

// QueueItem is one pending entry in a manager's work queue.
type QueueItem struct {
	EntryID      uuid.UUID
	Title        string
	WorkType     string
	StartDate    time.Time
	EndDate      *time.Time
	EmployeeID   uuid.UUID
	EmployeeName string
	TeamID       uuid.UUID
	TeamName     string
	CreatedAt    time.Time
}

// CompanyItem is one entry in the company-wide oversight view, with
// employee, team, and manager names denormalized for display.
type CompanyItem struct {
	EntryID        uuid.UUID
	Title          string
	ApprovalStatus workentry.Status
	IsImmutable    bool
	CompanyRating  *int16
	EmployeeID     uuid.UUID
	EmployeeName   string
	TeamID         *uuid.UUID
	TeamName       *string
	ManagerName    *string
	CreatedAt      time.Time
}

// Repository produces the role-scoped read views.
type Repository interface {
	// ManagerQueue returns pending entries for teams owned by the manager,
	// oldest first.
	ManagerQueue(ctx context.Context, managerID uuid.UUID) ([]QueueItem, error)
	// CompanyView returns all entries for the company regardless of team or
	// status.
	CompanyView(ctx context.Context, companyID uuid.UUID) ([]CompanyItem, error)
}

package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table. A team belongs to exactly one
// company and has at most one owning manager.
type Team struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Name        string
	Description string
	ManagerID   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignment represents a row in the team_assignments table. Re-assignment
// soft-deletes (is_active = false) the prior record instead of removing it,
// preserving audit history.
type Assignment struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	TeamID     uuid.UUID
	CompanyID  uuid.UUID
	AssignedBy uuid.UUID
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ManagerTeam is a team owned by a manager, annotated with live counts for
// the manager dashboard.
type ManagerTeam struct {
	Team
	EmployeeCount int
	PendingCount  int
}

// CompanyTeam is a team in the company listing with the manager name joined
// in.
type CompanyTeam struct {
	Team
	ManagerName *string
}

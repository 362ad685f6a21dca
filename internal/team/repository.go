package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateTeamName is returned when the company already has a team with
// the same name.
var ErrDuplicateTeamName = errors.New("team name already exists")

// ErrDuplicateAssignment is returned when an active assignment already
// exists for the (employee, team) pair.
var ErrDuplicateAssignment = errors.New("employee already actively assigned to team")

// ErrAssignmentNotFound is returned when no active assignment exists for
// the (employee, team) pair.
var ErrAssignmentNotFound = errors.New("active assignment not found")

// ErrInvalidReference is returned when a referenced company or account does
// not exist.
var ErrInvalidReference = errors.New("referenced company or account does not exist")

// Repository manages teams and employee-to-team assignments.
type Repository interface {
	Create(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	AssignEmployee(ctx context.Context, a *Assignment) error
	DeactivateAssignment(ctx context.Context, employeeID, teamID uuid.UUID) error
	ListForManager(ctx context.Context, managerID uuid.UUID) ([]ManagerTeam, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID) ([]CompanyTeam, error)
	ManagesTeam(ctx context.Context, managerID, teamID uuid.UUID) (bool, error)
}

package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veriwork/veriwork/internal/database"
)

const createTeamQuery = `
		INSERT INTO teams (company_id, name, description, manager_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

const getTeamQuery = `
		SELECT id, company_id, name, description, manager_id, created_at, updated_at
		FROM teams
		WHERE id = $1`

const assignEmployeeQuery = `
		INSERT INTO team_assignments (employee_id, team_id, company_id, assigned_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at`

const deactivateAssignmentQuery = `
		UPDATE team_assignments
		SET is_active = FALSE, updated_at = now()
		WHERE employee_id = $1 AND team_id = $2 AND is_active`

const listForManagerQuery = `
		SELECT t.id, t.company_id, t.name, t.description, t.manager_id, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_assignments a WHERE a.team_id = t.id AND a.is_active) AS employee_count,
		       (SELECT COUNT(*) FROM work_entries w WHERE w.team_id = t.id AND w.approval_status = 'pending_review') AS pending_count
		FROM teams t
		WHERE t.manager_id = $1
		ORDER BY t.created_at ASC`

const listForCompanyQuery = `
		SELECT t.id, t.company_id, t.name, t.description, t.manager_id, t.created_at, t.updated_at, m.name
		FROM teams t
		LEFT JOIN accounts m ON m.id = t.manager_id
		WHERE t.company_id = $1
		ORDER BY t.created_at ASC`

const managesTeamQuery = `
		SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1 AND manager_id = $2)`

// PostgresRepository implements Repository on top of a database.Querier.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given querier.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// Create inserts a new team record.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	err := r.db.QueryRow(ctx, createTeamQuery, t.CompanyID, t.Name, t.Description, t.ManagerID).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDuplicateTeamName
			case "23503":
				return ErrInvalidReference
			}
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	var t Team
	err := r.db.QueryRow(ctx, getTeamQuery, id).
		Scan(&t.ID, &t.CompanyID, &t.Name, &t.Description, &t.ManagerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// AssignEmployee inserts a new active assignment. Uniqueness of the active
// (employee, team) pair is enforced by a partial unique index, so the
// existence check and the insert are a single atomic operation.
func (r *PostgresRepository) AssignEmployee(ctx context.Context, a *Assignment) error {
	err := r.db.QueryRow(ctx, assignEmployeeQuery, a.EmployeeID, a.TeamID, a.CompanyID, a.AssignedBy).
		Scan(&a.ID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDuplicateAssignment
			case "23503":
				return ErrInvalidReference
			}
		}
		return fmt.Errorf("inserting assignment: %w", err)
	}

	return nil
}

// DeactivateAssignment soft-deletes the active assignment for the
// (employee, team) pair. The row is kept for audit history.
func (r *PostgresRepository) DeactivateAssignment(ctx context.Context, employeeID, teamID uuid.UUID) error {
	result, err := r.db.Exec(ctx, deactivateAssignmentQuery, employeeID, teamID)
	if err != nil {
		return fmt.Errorf("deactivating assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

// ListForManager retrieves the teams owned by a manager, each annotated
// with its active employee count and pending work entry count.
func (r *PostgresRepository) ListForManager(ctx context.Context, managerID uuid.UUID) ([]ManagerTeam, error) {
	rows, err := r.db.Query(ctx, listForManagerQuery, managerID)
	if err != nil {
		return nil, fmt.Errorf("listing manager teams: %w", err)
	}
	defer rows.Close()

	teams := []ManagerTeam{}
	for rows.Next() {
		var mt ManagerTeam
		err := rows.Scan(
			&mt.ID, &mt.CompanyID, &mt.Name, &mt.Description, &mt.ManagerID,
			&mt.CreatedAt, &mt.UpdatedAt, &mt.EmployeeCount, &mt.PendingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning manager team row: %w", err)
		}
		teams = append(teams, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manager team rows: %w", err)
	}

	return teams, nil
}

// ListForCompany retrieves all teams for a company with manager names
// joined in.
func (r *PostgresRepository) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]CompanyTeam, error) {
	rows, err := r.db.Query(ctx, listForCompanyQuery, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing company teams: %w", err)
	}
	defer rows.Close()

	teams := []CompanyTeam{}
	for rows.Next() {
		var ct CompanyTeam
		err := rows.Scan(
			&ct.ID, &ct.CompanyID, &ct.Name, &ct.Description, &ct.ManagerID,
			&ct.CreatedAt, &ct.UpdatedAt, &ct.ManagerName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning company team row: %w", err)
		}
		teams = append(teams, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating company team rows: %w", err)
	}

	return teams, nil
}

// ManagesTeam reports whether the team exists and is owned by the manager.
func (r *PostgresRepository) ManagesTeam(ctx context.Context, managerID, teamID uuid.UUID) (bool, error) {
	var owns bool
	if err := r.db.QueryRow(ctx, managesTeamQuery, teamID, managerID).Scan(&owns); err != nil {
		return false, fmt.Errorf("checking team ownership: %w", err)
	}
	return owns, nil
}

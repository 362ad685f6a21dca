package workview

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/database"
)

const managerQueueQuery = `
		SELECT w.id, w.title, w.work_type, w.start_date, w.end_date,
		       w.employee_id, e.name, w.team_id, t.name, w.created_at
		FROM work_entries w
		JOIN teams t ON t.id = w.team_id
		JOIN accounts e ON e.id = w.employee_id
		WHERE t.manager_id = $1 AND w.approval_status = 'pending_review'
		ORDER BY w.created_at ASC`

const companyViewQuery = `
		SELECT w.id, w.title, w.approval_status, w.is_immutable, w.company_rating,
		       w.employee_id, e.name, w.team_id, t.name, m.name, w.created_at
		FROM work_entries w
		JOIN accounts e ON e.id = w.employee_id
		LEFT JOIN teams t ON t.id = w.team_id
		LEFT JOIN accounts m ON m.id = t.manager_id
		WHERE w.company_id = $1
		ORDER BY w.created_at DESC`

// PostgresRepository implements Repository on top of a database.Querier.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given querier.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// ManagerQueue joins teams owned by the manager with their pending entries,
// ordered by creation time ascending for oldest-first fairness.
func (r *PostgresRepository) ManagerQueue(ctx context.Context, managerID uuid.UUID) ([]QueueItem, error) {
	rows, err := r.db.Query(ctx, managerQueueQuery, managerID)
	if err != nil {
		return nil, fmt.Errorf("querying manager work queue: %w", err)
	}
	defer rows.Close()

	items := []QueueItem{}
	for rows.Next() {
		var it QueueItem
		err := rows.Scan(
			&it.EntryID, &it.Title, &it.WorkType, &it.StartDate, &it.EndDate,
			&it.EmployeeID, &it.EmployeeName, &it.TeamID, &it.TeamName, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning queue row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queue rows: %w", err)
	}

	return items, nil
}

// CompanyView lists every entry for the company with names joined in; no
// status filter, the company has full oversight.
func (r *PostgresRepository) CompanyView(ctx context.Context, companyID uuid.UUID) ([]CompanyItem, error) {
	rows, err := r.db.Query(ctx, companyViewQuery, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying company work view: %w", err)
	}
	defer rows.Close()

	items := []CompanyItem{}
	for rows.Next() {
		var it CompanyItem
		err := rows.Scan(
			&it.EntryID, &it.Title, &it.ApprovalStatus, &it.IsImmutable, &it.CompanyRating,
			&it.EmployeeID, &it.EmployeeName, &it.TeamID, &it.TeamName, &it.ManagerName, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning company view row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating company view rows: %w", err)
	}

	return items, nil
}

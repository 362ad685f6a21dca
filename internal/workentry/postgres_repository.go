package workentry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veriwork/veriwork/internal/database"
)

const entryColumns = `id, company_id, employee_id, team_id, title, description, work_type,
	       start_date, end_date, approval_status, is_immutable,
	       approved_by, approved_by_type, approved_at, approval_comments, company_rating,
	       created_at, updated_at`

const createEntryQuery = `
		INSERT INTO work_entries (company_id, employee_id, team_id, title, description, work_type, start_date, end_date, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, is_immutable, created_at, updated_at`

const getEntryQuery = `
		SELECT ` + entryColumns + `
		FROM work_entries
		WHERE id = $1`

const transitionQuery = `
		UPDATE work_entries
		SET approval_status = $1,
		    is_immutable = is_immutable OR $2,
		    approved_by = COALESCE($3, approved_by),
		    approved_by_type = COALESCE($4, approved_by_type),
		    approved_at = CASE WHEN $2 THEN now() ELSE approved_at END,
		    approval_comments = COALESCE($5, approval_comments),
		    company_rating = COALESCE($6, company_rating),
		    updated_at = now()
		WHERE id = $7 AND approval_status = $8 AND is_immutable = FALSE
		RETURNING ` + entryColumns

const addAnnotationQuery = `
		INSERT INTO entry_annotations (entry_id, author_id, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

const listAnnotationsQuery = `
		SELECT id, entry_id, author_id, note, created_at
		FROM entry_annotations
		WHERE entry_id = $1
		ORDER BY created_at ASC`

// PostgresRepository implements Repository on top of a database.Querier.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given querier.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// Create inserts a new work entry. Status defaults to pending_review when
// unset; is_immutable always starts false.
func (r *PostgresRepository) Create(ctx context.Context, e *WorkEntry) error {
	if e.ApprovalStatus == "" {
		e.ApprovalStatus = StatusPendingReview
	}

	err := r.db.QueryRow(ctx, createEntryQuery,
		e.CompanyID,
		e.EmployeeID,
		e.TeamID,
		e.Title,
		e.Description,
		e.WorkType,
		e.StartDate,
		e.EndDate,
		e.ApprovalStatus,
	).Scan(&e.ID, &e.IsImmutable, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInvalidReference
		}
		return fmt.Errorf("inserting work entry: %w", err)
	}

	return nil
}

// GetByID retrieves a single work entry by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*WorkEntry, error) {
	row := r.db.QueryRow(ctx, getEntryQuery, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying work entry: %w", err)
	}

	return entry, nil
}

// Update applies generic field edits. The write is guarded with
// is_immutable = FALSE; an edit on a locked entry fails with ErrImmutable
// and leaves the row untouched.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*WorkEntry, error) {
	var sets []string
	var args []any
	argIdx := 1

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Title != nil {
		addSet("title", *fields.Title)
	}
	if fields.Description != nil {
		addSet("description", *fields.Description)
	}
	if fields.WorkType != nil {
		addSet("work_type", *fields.WorkType)
	}
	if fields.StartDate != nil {
		addSet("start_date", *fields.StartDate)
	}
	if fields.EndDate != nil {
		addSet("end_date", *fields.EndDate)
	}
	if fields.TeamID != nil {
		addSet("team_id", *fields.TeamID)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`
		UPDATE work_entries
		SET %s
		WHERE id = $%d AND is_immutable = FALSE
		RETURNING `+entryColumns, strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	entry, err := scanEntry(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyUpdateFailure(ctx, id)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("updating work entry: %w", err)
	}

	return entry, nil
}

// ApplyTransition performs the privileged conditional status change as a
// single atomic write. When zero rows match, the current row is re-read to
// report which precondition failed.
func (r *PostgresRepository) ApplyTransition(ctx context.Context, id uuid.UUID, t Transition) (*WorkEntry, error) {
	row := r.db.QueryRow(ctx, transitionQuery,
		t.To,
		t.Lock,
		t.ApprovedBy,
		t.ApprovedByType,
		t.Comments,
		t.Rating,
		id,
		t.From,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyTransitionFailure(ctx, id, t.From)
		}
		return nil, fmt.Errorf("transitioning work entry: %w", err)
	}

	return entry, nil
}

// AddAnnotation appends a note to an entry's audit trail. It works on
// immutable entries.
func (r *PostgresRepository) AddAnnotation(ctx context.Context, a *Annotation) error {
	err := r.db.QueryRow(ctx, addAnnotationQuery, a.EntryID, a.AuthorID, a.Note).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("inserting annotation: %w", err)
	}

	return nil
}

// Annotations lists an entry's annotations oldest first.
func (r *PostgresRepository) Annotations(ctx context.Context, entryID uuid.UUID) ([]Annotation, error) {
	rows, err := r.db.Query(ctx, listAnnotationsQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	defer rows.Close()

	annotations := []Annotation{}
	for rows.Next() {
		var a Annotation
		if err := rows.Scan(&a.ID, &a.EntryID, &a.AuthorID, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning annotation row: %w", err)
		}
		annotations = append(annotations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotation rows: %w", err)
	}

	return annotations, nil
}

func (r *PostgresRepository) classifyUpdateFailure(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.IsImmutable {
		return ErrImmutable
	}
	return ErrNotFound
}

func (r *PostgresRepository) classifyTransitionFailure(ctx context.Context, id uuid.UUID, from Status) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.IsImmutable {
		return ErrAlreadyImmutable
	}
	if current.ApprovalStatus != from {
		return fmt.Errorf("status is %q: %w", current.ApprovalStatus, ErrInvalidState)
	}
	// The row matched on re-read; the original write lost a benign race.
	return ErrInvalidState
}

func scanEntry(row pgx.Row) (*WorkEntry, error) {
	var e WorkEntry
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.TeamID,
		&e.Title, &e.Description, &e.WorkType,
		&e.StartDate, &e.EndDate, &e.ApprovalStatus, &e.IsImmutable,
		&e.ApprovedBy, &e.ApprovedByType, &e.ApprovedAt, &e.ApprovalComments, &e.CompanyRating,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

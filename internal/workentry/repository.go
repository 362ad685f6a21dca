package workentry

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a work entry record is not found.
var ErrNotFound = errors.New("work entry not found")

// ErrImmutable is returned when a field edit targets a locked entry.
var ErrImmutable = errors.New("work entry is immutable")

// ErrAlreadyImmutable is returned when a transition targets an entry that is
// already locked. It signals a lost race or a desynced client and is never
// swallowed.
var ErrAlreadyImmutable = errors.New("work entry is already immutable")

// ErrInvalidState is returned when a transition is not legal from the
// entry's current status.
var ErrInvalidState = errors.New("transition not legal from current status")

// ErrInvalidReference is returned when a referenced company, employee, or
// team does not exist.
var ErrInvalidReference = errors.New("referenced company, employee, or team does not exist")

// Repository owns work entry persistence. Generic field edits go through
// Update, which refuses immutable entries; status changes go only through
// ApplyTransition, a single atomic conditional write.
type Repository interface {
	Create(ctx context.Context, entry *WorkEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*WorkEntry, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*WorkEntry, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, t Transition) (*WorkEntry, error)
	AddAnnotation(ctx context.Context, a *Annotation) error
	Annotations(ctx context.Context, entryID uuid.UUID) ([]Annotation, error)
}

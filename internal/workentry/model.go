package workentry

import (
	"time"

	"github.com/google/uuid"
)

// Status is the approval state of a work entry.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusPendingReview    Status = "pending_review"
	StatusApproved         Status = "approved"
	StatusChangesRequested Status = "changes_requested"
	StatusRejected         Status = "rejected"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusChangesRequested, StatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition leads out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ApproverType records which kind of actor approved an entry.
type ApproverType string

const (
	ApproverManager ApproverType = "manager"
	ApproverCompany ApproverType = "company"
)

// WorkEntry represents a row in the work_entries table. Once IsImmutable is
// true the substantive fields can never change again; only annotations may
// be appended.
type WorkEntry struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	EmployeeID       uuid.UUID
	TeamID           *uuid.UUID
	Title            string
	Description      string
	WorkType         string
	StartDate        time.Time
	EndDate          *time.Time
	ApprovalStatus   Status
	IsImmutable      bool
	ApprovedBy       *uuid.UUID
	ApprovedByType   *ApproverType
	ApprovedAt       *time.Time
	ApprovalComments *string
	CompanyRating    *int16
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Annotation is an append-only note attached to an entry. Annotations are
// the only write permitted on an immutable entry.
type Annotation struct {
	ID        uuid.UUID
	EntryID   uuid.UUID
	AuthorID  uuid.UUID
	Note      string
	CreatedAt time.Time
}

// UpdateFields holds the optional field edits applied by Update. Status and
// immutability are deliberately absent: only ApplyTransition touches them.
type UpdateFields struct {
	Title       *string
	Description *string
	WorkType    *string
	StartDate   *time.Time
	EndDate     *time.Time
	TeamID      *uuid.UUID
}

// Transition describes a privileged conditional status change. The write is
// applied only while the entry is in From and not immutable.
type Transition struct {
	From           Status
	To             Status
	Lock           bool
	ApprovedBy     *uuid.UUID
	ApprovedByType *ApproverType
	Comments       *string
	Rating         *int16
}

// Package approval implements the state machine governing work entry
// status. All legal transitions run through the Engine; it resolves actor
// authority via the rbac policy and the team registry, delegates the actual
// state change to the store's atomic conditional write, and emits a domain
// event after the transition commits.
package approval

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/auth"
	"github.com/veriwork/veriwork/internal/notify"
	"github.com/veriwork/veriwork/internal/rbac"
	"github.com/veriwork/veriwork/internal/workentry"
)

// ErrUnauthorized is returned when the actor lacks the permission or scope
// required for the transition.
var ErrUnauthorized = errors.New("actor is not authorized for this entry")

// ErrMissingComments is returned when a review transition requires comments
// and none were given.
var ErrMissingComments = errors.New("comments are required")

// ErrInvalidRating is returned when a rating is outside 0-5.
var ErrInvalidRating = errors.New("rating must be between 0 and 5")

// TeamDirectory answers ownership questions about teams.
type TeamDirectory interface {
	ManagesTeam(ctx context.Context, managerID, teamID uuid.UUID) (bool, error)
}

// Engine orchestrates work entry transitions.
type Engine struct {
	entries  workentry.Repository
	teams    TeamDirectory
	policy   *rbac.Policy
	notifier notify.Notifier
}

// NewEngine creates an Engine. A nil notifier falls back to structured
// logging.
func NewEngine(entries workentry.Repository, teams TeamDirectory, policy *rbac.Policy, notifier notify.Notifier) *Engine {
	if policy == nil {
		policy = rbac.Default
	}
	if notifier == nil {
		notifier = notify.NewSlogNotifier(nil)
	}
	return &Engine{entries: entries, teams: teams, policy: policy, notifier: notifier}
}

// Submit moves a draft entry to pending_review. Only the owning employee
// may submit.
func (e *Engine) Submit(ctx context.Context, actor auth.Identity, entryID uuid.UUID) (*workentry.WorkEntry, error) {
	entry, err := e.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, entry); err != nil {
		return nil, err
	}

	updated, err := e.entries.ApplyTransition(ctx, entryID, workentry.Transition{
		From: workentry.StatusDraft,
		To:   workentry.StatusPendingReview,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.Event{Type: notify.EventSubmitted, EmployeeID: updated.EmployeeID, Entry: updated})
	return updated, nil
}

// Approve moves a pending entry to approved, locks it, and stamps the
// approver. The transition is a single compare-and-set in the store, so a
// concurrent second approval fails with ErrAlreadyImmutable instead of
// silently succeeding. Approval is irreversible.
func (e *Engine) Approve(ctx context.Context, actor auth.Identity, entryID uuid.UUID, comments *string, rating *int16) (*workentry.WorkEntry, error) {
	if rating != nil && (*rating < 0 || *rating > 5) {
		return nil, ErrInvalidRating
	}

	entry, err := e.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := e.authorizeReview(ctx, actor, entry); err != nil {
		return nil, err
	}

	approverType := approverTypeFor(actor.Role)
	updated, err := e.entries.ApplyTransition(ctx, entryID, workentry.Transition{
		From:           workentry.StatusPendingReview,
		To:             workentry.StatusApproved,
		Lock:           true,
		ApprovedBy:     &actor.AccountID,
		ApprovedByType: &approverType,
		Comments:       comments,
		Rating:         rating,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.Event{Type: notify.EventApproved, EmployeeID: updated.EmployeeID, Entry: updated, Rating: rating})
	return updated, nil
}

// RequestChanges moves a pending entry to changes_requested. The entry
// stays mutable and the employee may edit and resubmit. Comments are
// required so the employee knows what to fix.
func (e *Engine) RequestChanges(ctx context.Context, actor auth.Identity, entryID uuid.UUID, comments string) (*workentry.WorkEntry, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, ErrMissingComments
	}

	entry, err := e.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := e.authorizeReview(ctx, actor, entry); err != nil {
		return nil, err
	}

	updated, err := e.entries.ApplyTransition(ctx, entryID, workentry.Transition{
		From:     workentry.StatusPendingReview,
		To:       workentry.StatusChangesRequested,
		Comments: &comments,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.Event{Type: notify.EventChangesRequested, EmployeeID: updated.EmployeeID, Entry: updated})
	return updated, nil
}

// Reject moves a pending entry to rejected. Rejected is strictly terminal:
// no transition, including resubmit, leads out of it. The entry is not
// locked, so it remains distinguishable from the approved verified record.
func (e *Engine) Reject(ctx context.Context, actor auth.Identity, entryID uuid.UUID, comments string) (*workentry.WorkEntry, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, ErrMissingComments
	}

	entry, err := e.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := e.authorizeReview(ctx, actor, entry); err != nil {
		return nil, err
	}

	updated, err := e.entries.ApplyTransition(ctx, entryID, workentry.Transition{
		From:     workentry.StatusPendingReview,
		To:       workentry.StatusRejected,
		Comments: &comments,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.Event{Type: notify.EventRejected, EmployeeID: updated.EmployeeID, Entry: updated})
	return updated, nil
}

// Resubmit returns a changes_requested entry to pending_review after the
// owning employee edited it.
func (e *Engine) Resubmit(ctx context.Context, actor auth.Identity, entryID uuid.UUID) (*workentry.WorkEntry, error) {
	entry, err := e.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, entry); err != nil {
		return nil, err
	}

	updated, err := e.entries.ApplyTransition(ctx, entryID, workentry.Transition{
		From: workentry.StatusChangesRequested,
		To:   workentry.StatusPendingReview,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, notify.Event{Type: notify.EventResubmitted, EmployeeID: updated.EmployeeID, Entry: updated})
	return updated, nil
}

// authorizeReview checks approve/request-changes/reject authority:
// work.approve.any holders act on any entry in their own company;
// work.approve.direct_reports holders only on entries of teams they manage.
func (e *Engine) authorizeReview(ctx context.Context, actor auth.Identity, entry *workentry.WorkEntry) error {
	switch {
	case e.policy.HasPermission(actor.Role, rbac.PermWorkApproveAny):
		if entry.CompanyID != actor.CompanyID {
			return ErrUnauthorized
		}
		return nil

	case e.policy.HasPermission(actor.Role, rbac.PermWorkApproveDirectReports):
		if entry.CompanyID != actor.CompanyID {
			return ErrUnauthorized
		}
		if entry.TeamID == nil {
			return ErrUnauthorized
		}
		owns, err := e.teams.ManagesTeam(ctx, actor.AccountID, *entry.TeamID)
		if err != nil {
			return err
		}
		if !owns {
			return ErrUnauthorized
		}
		return nil

	default:
		return ErrUnauthorized
	}
}

func requireOwner(actor auth.Identity, entry *workentry.WorkEntry) error {
	if entry.EmployeeID != actor.AccountID || entry.CompanyID != actor.CompanyID {
		return ErrUnauthorized
	}
	return nil
}

func approverTypeFor(role rbac.Role) workentry.ApproverType {
	if role == rbac.RoleManager {
		return workentry.ApproverManager
	}
	return workentry.ApproverCompany
}

// publish emits the event after the transition has committed. A failed
// publish is logged and never rolls back or blocks the transition.
func (e *Engine) publish(ctx context.Context, ev notify.Event) {
	if err := e.notifier.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish domain event", "event", string(ev.Type), "error", err)
	}
}

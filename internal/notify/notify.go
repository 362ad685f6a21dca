// Package notify carries domain events from the approval engine to the
// notification collaborator. Delivery and formatting are the collaborator's
// concern; the core only emits.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/workentry"
)

// EventType names a domain event.
type EventType string

const (
	EventSubmitted        EventType = "work-entry-submitted"
	EventApproved         EventType = "work-entry-approved"
	EventChangesRequested EventType = "work-entry-changes-requested"
	EventRejected         EventType = "work-entry-rejected"
	EventResubmitted      EventType = "work-entry-resubmitted"
)

// Event is the payload handed to the notification sender.
type Event struct {
	Type       EventType
	EmployeeID uuid.UUID
	Entry      *workentry.WorkEntry
	Rating     *int16
}

// Notifier delivers domain events. Implementations must not block the
// caller beyond the request context.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// SlogNotifier logs events as structured records. It stands in for an
// external sender in deployments without one.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a SlogNotifier. A nil logger uses slog.Default.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// Publish logs the event.
func (n *SlogNotifier) Publish(ctx context.Context, ev Event) error {
	attrs := []any{
		"event", string(ev.Type),
		"employeeId", ev.EmployeeID.String(),
	}
	if ev.Entry != nil {
		attrs = append(attrs, "entryId", ev.Entry.ID.String(), "status", string(ev.Entry.ApprovalStatus))
	}
	if ev.Rating != nil {
		attrs = append(attrs, "rating", int(*ev.Rating))
	}
	n.logger.InfoContext(ctx, "domain event", attrs...)
	return nil
}

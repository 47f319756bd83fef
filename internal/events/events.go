// Package events publishes ledger changes to other systems.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

// AssignmentEvent is the payload published for every grab and release.
type AssignmentEvent struct {
	ID           string                `json:"id"`
	Kind         ledger.EventKind      `json:"kind"`
	AssignmentID uint64                `json:"assignment_id"`
	ThreadID     uint64                `json:"thread_id"`
	MemberID     uint64                `json:"member_id"`
	Role         models.AssignmentRole `json:"role"`
	OccurredAt   time.Time             `json:"occurred_at"`
	Note         string                `json:"note,omitempty"`
}

// NewAssignmentEvent builds the event for a record that was just grabbed or
// released.
func NewAssignmentEvent(kind ledger.EventKind, record models.ThreadAssignment) AssignmentEvent {
	occurred := record.GrabbedAt
	if kind == ledger.EventReleased && record.ReleasedAt != nil {
		occurred = *record.ReleasedAt
	}

	return AssignmentEvent{
		ID:           uuid.NewString(),
		Kind:         kind,
		AssignmentID: record.ID,
		ThreadID:     record.ThreadID,
		MemberID:     record.MemberID,
		Role:         record.Role,
		OccurredAt:   occurred,
		Note:         record.Note,
	}
}

// Subject is the routing key of the event below prefix, e.g.
// "pmo.threads.12.assignment.grabbed".
func (e AssignmentEvent) Subject(prefix string) string {
	return fmt.Sprintf("%s.threads.%d.assignment.%s", prefix, e.ThreadID, e.Kind)
}

// Publisher delivers events. Publishing is best effort: the ledger write has
// already committed when Publish is called.
type Publisher interface {
	Publish(ctx context.Context, event AssignmentEvent) error
	Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, AssignmentEvent) error { return nil }
func (Nop) Close()                                         {}

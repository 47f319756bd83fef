// Package ledger holds the pure rules of a thread's assignment ledger:
// deterministic ordering of records and the expansion of records into a
// grab/release event stream. Persistence lives in the repository and the
// services package drives it.
package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

// ByGrab returns a copy of records ordered by grab time, ties broken by
// record id so the order never depends on what the store returned.
func ByGrab(records []models.ThreadAssignment) []models.ThreadAssignment {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, compareGrab)
	return sorted
}

// ForDisplay returns a copy of records with leads first, then by grab time
// and record id.
func ForDisplay(records []models.ThreadAssignment) []models.ThreadAssignment {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.ThreadAssignment) int {
		if c := cmp.Compare(roleRank(a.Role), roleRank(b.Role)); c != 0 {
			return c
		}
		return compareGrab(a, b)
	})
	return sorted
}

// Open filters records down to the ones that have not been released.
func Open(records []models.ThreadAssignment) []models.ThreadAssignment {
	open := make([]models.ThreadAssignment, 0, len(records))
	for _, r := range records {
		if r.IsOpen() {
			open = append(open, r)
		}
	}
	return open
}

// GroupByThread buckets records by thread id, keeping the input order
// inside each bucket.
func GroupByThread(records []models.ThreadAssignment) map[uint64][]models.ThreadAssignment {
	grouped := make(map[uint64][]models.ThreadAssignment)
	for _, r := range records {
		grouped[r.ThreadID] = append(grouped[r.ThreadID], r)
	}
	return grouped
}

func compareGrab(a, b models.ThreadAssignment) int {
	if c := a.GrabbedAt.Compare(b.GrabbedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func roleRank(role models.AssignmentRole) int {
	switch role {
	case models.RoleLead:
		return 0
	case models.RoleSupport:
		return 1
	default:
		return 2
	}
}

// EventKind distinguishes the two halves of a ledger record.
type EventKind string

const (
	EventGrabbed  EventKind = "grabbed"
	EventReleased EventKind = "released"
)

// Event is a synthetic point in time derived from a ledger record.
type Event struct {
	Kind         EventKind             `json:"action"`
	AssignmentID uint64                `json:"assignment_id"`
	ThreadID     uint64                `json:"thread_id"`
	MemberID     uint64                `json:"member_id"`
	Role         models.AssignmentRole `json:"role"`
	Timestamp    time.Time             `json:"timestamp"`
	Note         string                `json:"note"`
}

// Events expands every record into a grab event and, when closed, a release
// event, newest first. Equal timestamps put releases before grabs and then
// the later record first.
func Events(records []models.ThreadAssignment) []Event {
	events := make([]Event, 0, len(records)*2)
	for _, r := range records {
		events = append(events, Event{
			Kind:         EventGrabbed,
			AssignmentID: r.ID,
			ThreadID:     r.ThreadID,
			MemberID:     r.MemberID,
			Role:         r.Role,
			Timestamp:    r.GrabbedAt,
			Note:         r.Note,
		})
		if r.ReleasedAt != nil {
			events = append(events, Event{
				Kind:         EventReleased,
				AssignmentID: r.ID,
				ThreadID:     r.ThreadID,
				MemberID:     r.MemberID,
				Role:         r.Role,
				Timestamp:    *r.ReleasedAt,
				Note:         r.Note,
			})
		}
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		if a.Kind != b.Kind {
			if a.Kind == EventReleased {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.AssignmentID, a.AssignmentID)
	})

	return events
}

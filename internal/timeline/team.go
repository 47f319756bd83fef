package timeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

// MemberStatus summarises one member's open workload.
type MemberStatus struct {
	MemberID    uint64            `json:"member_id"`
	Name        string            `json:"name"`
	Role        models.MemberRole `json:"role"`
	ColorClass  string            `json:"color_class"`
	ThreadCount int               `json:"thread_count"`
	MostUrgent  ThreadUrgency     `json:"most_urgent"`
}

// ThreadUrgency is a thread together with its classified due date.
type ThreadUrgency struct {
	ThreadID uint64                `json:"thread_id"`
	Title    string                `json:"title"`
	DueDate  time.Time             `json:"due_date"`
	Role     models.AssignmentRole `json:"role"`
	Urgency  Urgency               `json:"urgency"`
}

// TeamStatus builds the team panel. members is walked in order and a member
// appears only if it holds an open record on one of threads. open is keyed
// by thread id.
func TeamStatus(members []models.Member, threads []models.Thread, open map[uint64][]models.ThreadAssignment, today time.Time) []MemberStatus {
	statuses := make([]MemberStatus, 0, len(members))

	for _, m := range members {
		var held []ThreadUrgency
		for _, t := range threads {
			idx := slices.IndexFunc(open[t.ID], func(a models.ThreadAssignment) bool {
				return a.MemberID == m.ID
			})
			if idx < 0 {
				continue
			}
			held = append(held, ThreadUrgency{
				ThreadID: t.ID,
				Title:    t.Title,
				DueDate:  t.Due(),
				Role:     open[t.ID][idx].Role,
				Urgency:  UrgencyOf(t.Due(), today),
			})
		}
		if len(held) == 0 {
			continue
		}

		slices.SortStableFunc(held, func(a, b ThreadUrgency) int {
			if c := cmp.Compare(a.Urgency.DDay, b.Urgency.DDay); c != 0 {
				return c
			}
			return cmp.Compare(a.ThreadID, b.ThreadID)
		})

		statuses = append(statuses, MemberStatus{
			MemberID:    m.ID,
			Name:        m.Name,
			Role:        m.Role,
			ColorClass:  MemberColorClass(m.Role),
			ThreadCount: len(held),
			MostUrgent:  held[0],
		})
	}

	return statuses
}

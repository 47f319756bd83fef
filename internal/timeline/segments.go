package timeline

import (
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

// Segment is a slice of a thread bar. Owner segments carry the record that
// owns them; gaps and the trailing remainder have a nil OwnerID.
type Segment struct {
	OwnerID      *uint64               `json:"owner_id"`
	AssignmentID *uint64               `json:"assignment_id,omitempty"`
	Role         models.AssignmentRole `json:"role,omitempty"`
	StartPercent float64               `json:"start_percent"`
	WidthPercent float64               `json:"width_percent"`
	Label        string                `json:"label"`
	ColorClass   string                `json:"color_class"`
	Color        string                `json:"color,omitempty"`
	Remaining    bool                  `json:"remaining"`
	Degenerate   bool                  `json:"degenerate,omitempty"`
}

// Segments apportions a thread's [start, due] span between the given
// records. Records are walked by grab time; each owns the span from its
// grab (or the end of the previous segment, whichever is later) to the next
// record's grab, or due for the last one. Spans a record cannot claim are
// emitted as unassigned segments so the widths always sum to 100.
func Segments(thread models.Thread, records []models.ThreadAssignment, members MemberIndex) []Segment {
	start, due := thread.Start(), thread.Due()
	total := due.Sub(start)

	if total <= 0 {
		return []Segment{remainingSegment(0, 100, true)}
	}
	if len(records) == 0 {
		return []Segment{remainingSegment(0, 100, false)}
	}

	pct := func(d time.Duration) float64 {
		return float64(d) / float64(total) * 100
	}

	sorted := ledger.ByGrab(records)
	segments := make([]Segment, 0, len(sorted)+1)
	cursor := start

	for i, r := range sorted {
		next := due
		if i < len(sorted)-1 && sorted[i+1].GrabbedAt.Before(due) {
			next = sorted[i+1].GrabbedAt
		}

		segStart := r.GrabbedAt
		if segStart.Before(cursor) {
			segStart = cursor
		}
		if pct(next.Sub(segStart)) <= 0 {
			continue
		}

		if segStart.After(cursor) {
			segments = append(segments, Segment{
				StartPercent: pct(cursor.Sub(start)),
				WidthPercent: pct(segStart.Sub(cursor)),
				ColorClass:   ColorClassGap,
			})
		}

		segments = append(segments, ownerSegment(r, members, pct(segStart.Sub(start)), pct(next.Sub(segStart))))
		cursor = next
	}

	if cursor.Before(due) {
		segments = append(segments, remainingSegment(pct(cursor.Sub(start)), pct(due.Sub(cursor)), false))
	}

	return segments
}

func ownerSegment(r models.ThreadAssignment, members MemberIndex, startPct, widthPct float64) Segment {
	ownerID, assignmentID := r.MemberID, r.ID
	seg := Segment{
		OwnerID:      &ownerID,
		AssignmentID: &assignmentID,
		Role:         r.Role,
		StartPercent: startPct,
		WidthPercent: widthPct,
	}

	member, ok := members.Lookup(r.MemberID)
	if !ok {
		seg.Label = UnknownMemberLabel
		seg.ColorClass = ColorClassOther
		seg.Color = NeutralColor
		return seg
	}

	seg.Label = OwnerLabel(member, r.Role)
	seg.ColorClass = MemberColorClass(member.Role)
	seg.Color = member.Color
	return seg
}

func remainingSegment(startPct, widthPct float64, degenerate bool) Segment {
	return Segment{
		StartPercent: startPct,
		WidthPercent: widthPct,
		ColorClass:   ColorClassRemaining,
		Remaining:    true,
		Degenerate:   degenerate,
	}
}

package timeline

import (
	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

// Band is one horizontal stripe of the multi-assignee view. Every unique
// member gets an equal share of the bar height.
type Band struct {
	MemberID      uint64                `json:"member_id"`
	Role          models.AssignmentRole `json:"role"`
	Name          string                `json:"name"`
	Label         string                `json:"label"`
	ColorClass    string                `json:"color_class"`
	Color         string                `json:"color"`
	OffsetPercent float64               `json:"offset_percent"`
	HeightPercent float64               `json:"height_percent"`
}

// Bands groups records by member. A member holding a lead record anywhere is
// ranked with the leads; otherwise members keep the order of their first
// record.
func Bands(records []models.ThreadAssignment, members MemberIndex) []Band {
	ordered := ledger.ForDisplay(records)

	seen := make(map[uint64]struct{}, len(ordered))
	bands := make([]Band, 0, len(ordered))
	for _, r := range ordered {
		if _, dup := seen[r.MemberID]; dup {
			continue
		}
		seen[r.MemberID] = struct{}{}

		band := Band{MemberID: r.MemberID, Role: r.Role}
		if m, ok := members.Lookup(r.MemberID); ok {
			band.Name = m.Name
			band.Label = OwnerLabel(m, r.Role)
			band.ColorClass = MemberColorClass(m.Role)
			band.Color = m.Color
		} else {
			band.Name = UnknownMemberLabel
			band.Label = UnknownMemberLabel
			band.ColorClass = ColorClassOther
			band.Color = NeutralColor
		}
		bands = append(bands, band)
	}

	if len(bands) == 0 {
		return bands
	}

	height := 100 / float64(len(bands))
	for i := range bands {
		bands[i].OffsetPercent = float64(i) * height
		bands[i].HeightPercent = height
	}
	return bands
}

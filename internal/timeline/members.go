package timeline

import (
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

const (
	ColorClassPM        = "member-pm"
	ColorClassMember    = "member-regular"
	ColorClassIntern    = "member-intern"
	ColorClassOther     = "member-other"
	ColorClassRemaining = "segment-remaining"
	ColorClassGap       = "segment-unassigned"

	// NeutralColor is used for members that no longer resolve.
	NeutralColor = "#9CA3AF"

	UnknownMemberLabel = "?"
	UnassignedLabel    = "Unassigned"
)

// MemberIndex resolves member ids. It must be built from every member,
// inactive ones included, so historical records keep their owner.
type MemberIndex map[uint64]models.Member

// IndexMembers builds a MemberIndex.
func IndexMembers(members []models.Member) MemberIndex {
	idx := make(MemberIndex, len(members))
	for _, m := range members {
		idx[m.ID] = m
	}
	return idx
}

// Lookup returns the member and whether it exists.
func (idx MemberIndex) Lookup(id uint64) (models.Member, bool) {
	m, ok := idx[id]
	return m, ok
}

// MemberColorClass maps a member role to its CSS class.
func MemberColorClass(role models.MemberRole) string {
	switch role {
	case models.MemberRolePM:
		return ColorClassPM
	case models.MemberRoleMember:
		return ColorClassMember
	case models.MemberRoleIntern:
		return ColorClassIntern
	case models.MemberRoleUnknown:
		return ColorClassOther
	default:
		return ColorClassOther
	}
}

// OwnerLabel is the text drawn inside an owner segment: the full name for a
// lead, the initial for anyone else.
func OwnerLabel(member models.Member, role models.AssignmentRole) string {
	if role == models.RoleLead {
		return member.Name
	}
	return initial(member.Name)
}

// AssigneeNames lists the names behind records, "?" for members that cannot
// be resolved.
func AssigneeNames(records []models.ThreadAssignment, members MemberIndex) string {
	if len(records) == 0 {
		return UnassignedLabel
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		if m, ok := members.Lookup(r.MemberID); ok {
			names = append(names, m.Name)
		} else {
			names = append(names, UnknownMemberLabel)
		}
	}
	return strings.Join(names, ", ")
}

func initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return UnknownMemberLabel
	}
	return string(r)
}

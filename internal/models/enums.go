package models

// ThreadStatus is the lifecycle state of a thread.
type ThreadStatus string

const (
	ThreadStatusActive    ThreadStatus = "active"
	ThreadStatusOnHold    ThreadStatus = "on_hold"
	ThreadStatusCompleted ThreadStatus = "completed"
	ThreadStatusUnknown   ThreadStatus = "unknown"
)

// ParseThreadStatus maps a raw string onto the closed set, returning
// ThreadStatusUnknown for anything unrecognised.
func ParseThreadStatus(s string) ThreadStatus {
	switch ThreadStatus(s) {
	case ThreadStatusActive, ThreadStatusOnHold, ThreadStatusCompleted:
		return ThreadStatus(s)
	default:
		return ThreadStatusUnknown
	}
}

func (s ThreadStatus) Valid() bool {
	return ParseThreadStatus(string(s)) != ThreadStatusUnknown
}

// ThreadType classifies the kind of work a thread tracks.
type ThreadType string

const (
	ThreadTypeNegotiation ThreadType = "negotiation"
	ThreadTypeExecution   ThreadType = "execution"
	ThreadTypeDevelopment ThreadType = "development"
	ThreadTypeResearch    ThreadType = "research"
	ThreadTypeOther       ThreadType = "other"
)

// ParseThreadType returns ThreadTypeOther for unrecognised values.
func ParseThreadType(s string) ThreadType {
	switch ThreadType(s) {
	case ThreadTypeNegotiation, ThreadTypeExecution, ThreadTypeDevelopment, ThreadTypeResearch:
		return ThreadType(s)
	default:
		return ThreadTypeOther
	}
}

// AssignmentRole is the responsibility level held through a ledger record.
type AssignmentRole string

const (
	RoleLead    AssignmentRole = "lead"
	RoleSupport AssignmentRole = "support"
	RoleUnknown AssignmentRole = "unknown"
)

func ParseAssignmentRole(s string) AssignmentRole {
	switch AssignmentRole(s) {
	case RoleLead, RoleSupport:
		return AssignmentRole(s)
	default:
		return RoleUnknown
	}
}

func (r AssignmentRole) Valid() bool {
	return ParseAssignmentRole(string(r)) != RoleUnknown
}

// MemberRole is a team member's position on the team.
type MemberRole string

const (
	MemberRolePM      MemberRole = "pm"
	MemberRoleMember  MemberRole = "member"
	MemberRoleIntern  MemberRole = "intern"
	MemberRoleUnknown MemberRole = "unknown"
)

func ParseMemberRole(s string) MemberRole {
	switch MemberRole(s) {
	case MemberRolePM, MemberRoleMember, MemberRoleIntern:
		return MemberRole(s)
	default:
		return MemberRoleUnknown
	}
}

func (r MemberRole) Valid() bool {
	return ParseMemberRole(string(r)) != MemberRoleUnknown
}

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusUnknown    TaskStatus = "unknown"
)

func ParseTaskStatus(s string) TaskStatus {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return TaskStatus(s)
	default:
		return TaskStatusUnknown
	}
}

func (s TaskStatus) Valid() bool {
	return ParseTaskStatus(string(s)) != TaskStatusUnknown
}

// TaskPriority orders tasks within a thread.
type TaskPriority string

const (
	PriorityHigh    TaskPriority = "high"
	PriorityMedium  TaskPriority = "medium"
	PriorityLow     TaskPriority = "low"
	PriorityUnknown TaskPriority = "unknown"
)

func ParseTaskPriority(s string) TaskPriority {
	switch TaskPriority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return TaskPriority(s)
	default:
		return PriorityUnknown
	}
}

func (p TaskPriority) Valid() bool {
	return ParseTaskPriority(string(p)) != PriorityUnknown
}

// StakeholderType separates people inside the organisation from outside parties.
type StakeholderType string

const (
	StakeholderInternal StakeholderType = "internal"
	StakeholderExternal StakeholderType = "external"
)

func ParseStakeholderType(s string) (StakeholderType, bool) {
	switch StakeholderType(s) {
	case StakeholderInternal, StakeholderExternal:
		return StakeholderType(s), true
	default:
		return "", false
	}
}

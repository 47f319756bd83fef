package constants

// Context keys
const (
	ContextKeySubject   = "subject"
	ContextKeyRequestID = "request_id"
	ContextKeyThread    = "thread"
)

// Session
const (
	SessionCookieName        = "pmo_session"
	SessionKeyTimelineAnchor = "timeline_anchor"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Timeline
const (
	TimelineWeeks = 4
	DateLayout    = "2006-01-02"
)

// AI
const (
	MaxAIGeneratedTasks = 20
)

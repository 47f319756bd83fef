package models

import (
	"time"

	"gorm.io/gorm"
)

// ThreadAssignment is one entry of a thread's responsibility ledger. A record
// with a nil ReleasedAt is open. Records are only ever closed, never edited
// otherwise; they disappear solely through the thread delete cascade.
type ThreadAssignment struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	ThreadID   uint64         `gorm:"not null;index" json:"thread_id"`
	MemberID   uint64         `gorm:"not null;index" json:"member_id"`
	Role       AssignmentRole `gorm:"type:varchar(20);not null" json:"role"`
	GrabbedAt  time.Time      `gorm:"not null;index" json:"grabbed_at"`
	ReleasedAt *time.Time     `gorm:"index" json:"released_at"`
	Note       string         `gorm:"type:text" json:"note"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsOpen reports whether the record has not been released yet.
func (a ThreadAssignment) IsOpen() bool {
	return a.ReleasedAt == nil
}

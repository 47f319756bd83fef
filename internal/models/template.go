package models

import "time"

// ThreadTemplate is a reusable blueprint for creating a thread together
// with a standard set of tasks.
type ThreadTemplate struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	ThreadType  ThreadType `gorm:"type:varchar(30);not null" json:"thread_type"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`

	// Relations
	Tasks []TemplateTask `gorm:"foreignKey:TemplateID" json:"tasks,omitempty"`
}

// TemplateTask becomes a task whose due date is the thread due date shifted
// by DayOffset days (usually negative).
type TemplateTask struct {
	ID         uint64       `gorm:"primarykey" json:"id"`
	TemplateID uint64       `gorm:"not null;index" json:"template_id"`
	Title      string       `gorm:"not null" json:"title"`
	DayOffset  int          `gorm:"not null;default:0" json:"day_offset"`
	Priority   TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Notes      string       `gorm:"type:text" json:"notes"`
	SortOrder  int          `gorm:"not null;default:0" json:"order"`
}

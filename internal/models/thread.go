package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Thread struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	ThreadType  ThreadType     `gorm:"type:varchar(30);not null;default:'execution'" json:"thread_type"`
	StartDate   datatypes.Date `gorm:"not null" json:"start_date"`
	DueDate     datatypes.Date `gorm:"not null;index" json:"due_date"`
	Status      ThreadStatus   `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	OutcomeGoal string         `gorm:"type:text" json:"outcome_goal"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tasks       []Task             `gorm:"foreignKey:ThreadID" json:"tasks,omitempty"`
	Assignments []ThreadAssignment `gorm:"foreignKey:ThreadID" json:"assignments,omitempty"`
}

// Start returns the start date as a time.Time.
func (t Thread) Start() time.Time {
	return time.Time(t.StartDate)
}

// Due returns the due date as a time.Time.
func (t Thread) Due() time.Time {
	return time.Time(t.DueDate)
}

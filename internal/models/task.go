package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	ThreadID    uint64          `gorm:"not null;index" json:"thread_id"`
	Title       string          `gorm:"not null" json:"title"`
	AssigneeID  *uint64         `gorm:"index" json:"assignee_id"`
	DueDate     *datatypes.Date `gorm:"index" json:"due_date"`
	Status      TaskStatus      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority    TaskPriority    `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

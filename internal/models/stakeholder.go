package models

import "time"

type Stakeholder struct {
	ID           uint64          `gorm:"primarykey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Type         StakeholderType `gorm:"type:varchar(20);not null;default:'external'" json:"type"`
	Organization string          `gorm:"type:varchar(255)" json:"organization"`
	Contact      string          `gorm:"type:varchar(255)" json:"contact"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ThreadStakeholder maps a stakeholder onto a thread with a role such as
// "counterpart" or "partner".
type ThreadStakeholder struct {
	ThreadID      uint64 `gorm:"primarykey" json:"thread_id"`
	StakeholderID uint64 `gorm:"primarykey" json:"stakeholder_id"`
	RoleType      string `gorm:"type:varchar(50);not null" json:"role_type"`

	// Relations
	Stakeholder Stakeholder `gorm:"foreignKey:StakeholderID" json:"-"`
}

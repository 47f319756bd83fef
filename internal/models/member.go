package models

import "time"

// Member is a team member. Members are never deleted; deactivation flips
// IsActive so historical ledger records keep resolving.
type Member struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Role      MemberRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Color     string     `gorm:"type:varchar(20);not null;default:'#374151'" json:"color"`
	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

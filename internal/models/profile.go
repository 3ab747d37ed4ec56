package models

import (
	"time"
)

// Profile 用户档案，由外部认证层创建，本服务只读取
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:20;not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Anonymous reports whether p carries no identity.
func (p *Profile) Anonymous() bool {
	return p == nil || p.ID == 0
}

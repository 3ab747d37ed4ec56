package models

import (
	"time"
)

// Bookmark 收藏模型 - 用户收藏问题
type Bookmark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProfileID  uint      `gorm:"not null;index;uniqueIndex:idx_profile_question" json:"profile_id"`
	Profile    Profile   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	QuestionID uint      `gorm:"not null;index;uniqueIndex:idx_profile_question" json:"question_id"`
	Question   Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"question"`
	CreatedAt  time.Time `json:"created_at"`
}

package models

import (
	"time"
)

type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	ProfileID  *uint     `gorm:"index" json:"profile_id"`
	Profile    *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"profile,omitempty"`
	Score      int       `gorm:"default:0;not null" json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *Answer) Ref() PostRef { return PostRef{Kind: KindAnswer, ID: a.ID} }
func (a *Answer) CurrentScore() int { return a.Score }

package models

import (
	"time"
)

// QuestionPageHit records one distinct visit; it drives Question.Views.
type QuestionPageHit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_hit_question_address" json:"question_id"`
	Question   Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ProfileID  *uint     `gorm:"index" json:"profile_id"`
	Profile    *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Address    string    `gorm:"size:45;not null;uniqueIndex:idx_hit_question_address" json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}

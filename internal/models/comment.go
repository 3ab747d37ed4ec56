package models

import (
	"time"
)

// Comment hangs off a question or an answer. Comments are not votable.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID *uint     `gorm:"index" json:"question_id"`
	Question   *Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AnswerID   *uint     `gorm:"index" json:"answer_id"`
	Answer     *Answer   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	ProfileID  *uint     `gorm:"index" json:"profile_id"`
	Profile    *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"profile,omitempty"`
	Score      int       `gorm:"default:0;not null" json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

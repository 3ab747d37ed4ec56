package models

import (
	"time"
)

type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:80;not null;uniqueIndex:idx_question_title_date_profile" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Date      time.Time `gorm:"type:date;not null;index;uniqueIndex:idx_question_title_date_profile" json:"date"`
	ProfileID *uint     `gorm:"index;uniqueIndex:idx_question_title_date_profile" json:"profile_id"`
	Profile   *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"profile,omitempty"`
	Score     int       `gorm:"default:0;not null" json:"score"`
	Views     int       `gorm:"default:0;not null" json:"views"`
	Tags      []Tag     `gorm:"many2many:question_tags;constraint:OnDelete:CASCADE;" json:"tags"`
	Answers   []Answer  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"answers,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// 非数据库字段，用于查询时填充
	AnswerCount int `gorm:"-" json:"answer_count"`
}

func (q *Question) Ref() PostRef { return PostRef{Kind: KindQuestion, ID: q.ID} }
func (q *Question) CurrentScore() int { return q.Score }

// TagNames returns the names of the loaded tags.
func (q *Question) TagNames() []string {
	names := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		names = append(names, t.Name)
	}
	return names
}

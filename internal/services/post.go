package services

import (
	"context"
	"errors"
	"fmt"
	"stackqa/internal/models"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MaxTitleLength = 80
	MaxTagLength   = 25
	MaxTags        = 4
)

// PostService covers the question/answer lifecycle around the vote core.
// It never touches scores.
type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db, now: time.Now}
}

func (s *PostService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AskQuestion 发布问题。同一作者同一天的同名问题会被拒绝。
func (s *PostService) AskQuestion(ctx context.Context, profile *models.Profile, title, body string, tagNames []string) (*models.Question, error) {
	if profile.Anonymous() {
		return nil, ErrUnauthenticated
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return nil, fmt.Errorf("%w: the title of your question is too long", ErrInvalidInput)
	case body == "":
		return nil, fmt.Errorf("%w: elaborate on your question", ErrInvalidInput)
	}
	names, err := normalizeTags(tagNames)
	if err != nil {
		return nil, err
	}

	profileID := profile.ID
	question := models.Question{
		Title:     title,
		Body:      body,
		Date:      s.today(),
		ProfileID: &profileID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&models.Question{}).
			Where("title = ? AND date = ? AND profile_id = ?", question.Title, question.Date, profileID).
			Count(&dup).Error; err != nil {
			return fmt.Errorf("check duplicate question: %w", err)
		}
		if dup > 0 {
			return ErrConstraintViolation
		}

		tags, err := ensureTags(tx, names)
		if err != nil {
			return err
		}
		question.Tags = tags

		if err := tx.Omit("Tags.*").Create(&question).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConstraintViolation
			}
			return fmt.Errorf("create question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func normalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if utf8.RuneCountInString(name) > MaxTagLength {
			return nil, fmt.Errorf("%w: tag %q is too long", ErrInvalidInput, name)
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", ErrInvalidInput)
	}
	if len(names) > MaxTags {
		return nil, fmt.Errorf("%w: add up to %d tags for your question", ErrInvalidInput, MaxTags)
	}
	return names, nil
}

// ensureTags creates missing tags and returns all of them with ids.
func ensureTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	rows := make([]models.Tag, len(names))
	for i, name := range names {
		rows[i] = models.Tag{Name: name}
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create tags: %w", err)
	}

	var tags []models.Tag
	if err := tx.Where("name IN ?", names).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return tags, nil
}

// Answer posts an answer to an existing question.
func (s *PostService) Answer(ctx context.Context, profile *models.Profile, questionID uint, body string) (*models.Answer, error) {
	if profile.Anonymous() {
		return nil, ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidInput)
	}

	db := s.db.WithContext(ctx)
	if _, err := resolvePost(db, models.PostRef{Kind: models.KindQuestion, ID: questionID}); err != nil {
		return nil, err
	}

	profileID := profile.ID
	answer := models.Answer{
		QuestionID: questionID,
		Body:       body,
		Date:       s.today(),
		ProfileID:  &profileID,
	}
	if err := db.Create(&answer).Error; err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	return &answer, nil
}

// GetQuestion loads a question with its tags, author and answers.
func (s *PostService) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := s.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Profile").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.score DESC").Order("answers.date DESC").Order("answers.id")
		}).
		Preload("Answers.Profile").
		First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question/%d", ErrInvalidTarget, id)
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	question.AnswerCount = len(question.Answers)
	return &question, nil
}

// RecordView counts the first visit from an address; repeats are ignored.
// It reports whether views was incremented.
func (s *PostService) RecordView(ctx context.Context, questionID uint, profile *models.Profile, address string) (bool, error) {
	counted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := resolvePost(tx, models.PostRef{Kind: models.KindQuestion, ID: questionID}); err != nil {
			return err
		}

		hit := models.QuestionPageHit{QuestionID: questionID, Address: address}
		if !profile.Anonymous() {
			profileID := profile.ID
			hit.ProfileID = &profileID
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}, {Name: "address"}},
			DoNothing: true,
		}).Create(&hit)
		if res.Error != nil {
			return fmt.Errorf("record page hit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		counted = true
		return tx.Model(&models.Question{}).
			Where("id = ?", questionID).
			UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	})
	return counted, err
}

// DeleteQuestion removes the author's question together with its answers
// and every vote cast on either.
func (s *PostService) DeleteQuestion(ctx context.Context, profile *models.Profile, id uint) error {
	if profile.Anonymous() {
		return ErrUnauthenticated
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: question/%d", ErrInvalidTarget, id)
			}
			return fmt.Errorf("load question: %w", err)
		}
		if !ownedBy(question.ProfileID, profile) {
			return ErrForbidden
		}

		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return fmt.Errorf("list answers: %w", err)
		}

		votes := tx.Where("post_kind = ? AND post_id = ?", models.KindQuestion, id)
		if len(answerIDs) > 0 {
			votes = votes.Or("post_kind = ? AND post_id IN ?", models.KindAnswer, answerIDs)
		}
		if err := votes.Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}

		if err := tx.Model(&question).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := tx.Delete(&question).Error; err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
}

// DeleteAnswer removes the author's answer and its votes.
func (s *PostService) DeleteAnswer(ctx context.Context, profile *models.Profile, id uint) error {
	if profile.Anonymous() {
		return ErrUnauthenticated
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answer models.Answer
		if err := tx.First(&answer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: answer/%d", ErrInvalidTarget, id)
			}
			return fmt.Errorf("load answer: %w", err)
		}
		if !ownedBy(answer.ProfileID, profile) {
			return ErrForbidden
		}

		if err := tx.Where("post_kind = ? AND post_id = ?", models.KindAnswer, id).
			Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}
		if err := tx.Delete(&answer).Error; err != nil {
			return fmt.Errorf("delete answer: %w", err)
		}
		return nil
	})
}

func ownedBy(author *uint, profile *models.Profile) bool {
	return author != nil && *author == profile.ID
}

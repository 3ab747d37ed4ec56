package services

import (
	"context"
	"fmt"
	"stackqa/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

// Toggle 切换收藏状态，返回切换后的状态与该问题的收藏总数
func (s *BookmarkService) Toggle(ctx context.Context, profile *models.Profile, questionID uint) (bool, int64, error) {
	if profile.Anonymous() {
		return false, 0, ErrUnauthenticated
	}

	bookmarked := false
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := resolvePost(tx, models.PostRef{Kind: models.KindQuestion, ID: questionID}); err != nil {
			return err
		}

		res := tx.Where("profile_id = ? AND question_id = ?", profile.ID, questionID).Delete(&models.Bookmark{})
		if res.Error != nil {
			return fmt.Errorf("delete bookmark: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			bookmark := models.Bookmark{ProfileID: profile.ID, QuestionID: questionID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&bookmark).Error; err != nil {
				return fmt.Errorf("create bookmark: %w", err)
			}
			bookmarked = true
		}

		return tx.Model(&models.Bookmark{}).Where("question_id = ?", questionID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return bookmarked, count, nil
}

// List returns the profile's bookmarked questions, most recently saved first.
func (s *BookmarkService) List(ctx context.Context, profile *models.Profile) ([]models.Question, error) {
	if profile.Anonymous() {
		return nil, ErrUnauthenticated
	}

	questions := make([]models.Question, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN bookmarks ON bookmarks.question_id = questions.id").
		Where("bookmarks.profile_id = ?", profile.ID).
		Order("bookmarks.created_at DESC").
		Preload("Tags").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	if err := fillAnswerCounts(s.db.WithContext(ctx), questions); err != nil {
		return nil, err
	}
	return questions, nil
}

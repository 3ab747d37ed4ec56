package services

import (
	"context"
	"errors"
	"fmt"
	"stackqa/internal/models"

	"gorm.io/gorm"
)

// ScoreLedger is the only writer of post scores.
type ScoreLedger struct {
	db *gorm.DB
}

func NewScoreLedger(db *gorm.DB) *ScoreLedger {
	return &ScoreLedger{db: db}
}

// WithTx binds the ledger to an open transaction.
func (l *ScoreLedger) WithTx(tx *gorm.DB) *ScoreLedger {
	return &ScoreLedger{db: tx}
}

// ApplyDelta adds delta to the stored score in a single UPDATE and reloads
// post, so the caller sees the value as committed by concurrent writers too.
func (l *ScoreLedger) ApplyDelta(ctx context.Context, post models.Scorable, delta int) error {
	ref := post.Ref()
	db := l.db.WithContext(ctx)

	res := db.Model(post).
		Where("id = ?", ref.ID).
		UpdateColumn("score", gorm.Expr("score + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("apply score delta to %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, ref)
	}

	if err := db.First(post, ref.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrInvalidTarget, ref)
		}
		return fmt.Errorf("reload %s: %w", ref, err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"stackqa/internal/log"
	"stackqa/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService 管理 (profile, post) 上的投票状态机:
// NO_VOTE -> LIKED|DISLIKED, LIKED <-> DISLIKED, LIKED|DISLIKED -> NO_VOTE.
// Every transition writes the vote row and the score delta in one transaction.
type VoteService struct {
	db     *gorm.DB
	ledger *ScoreLedger
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{
		db:     db,
		ledger: NewScoreLedger(db),
	}
}

// PostState is the requester's view of a votable post.
type PostState struct {
	Post     models.PostKind `json:"post"`
	ID       uint            `json:"id"`
	Score    int             `json:"score"`
	Likes    int64           `json:"likes"`
	Dislikes int64           `json:"dislikes"`
	UserVote models.VoteType `json:"user_vote,omitempty"`
}

// Cast creates the profile's first vote on the post.
func (s *VoteService) Cast(ctx context.Context, profile *models.Profile, ref models.PostRef, voteType string) (*models.Vote, error) {
	if profile.Anonymous() {
		return nil, rejectVote("cast", ref.Kind, ErrUnauthenticated)
	}
	vt, err := models.ParseVoteType(voteType)
	if err != nil {
		return nil, rejectVote("cast", ref.Kind, fmt.Errorf("%w: %q", ErrInvalidVoteType, voteType))
	}

	var vote *models.Vote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := resolvePost(tx, ref)
		if err != nil {
			return err
		}

		existing, err := findVote(tx, profile.ID, ref, false)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateVote
		}

		profileID := profile.ID
		v := models.Vote{
			ProfileID: &profileID,
			PostKind:  ref.Kind,
			PostID:    ref.ID,
			Type:      vt,
		}
		if err := tx.Create(&v).Error; err != nil {
			// 并发插入撞上唯一索引
			if isUniqueViolation(err) {
				return ErrDuplicateVote
			}
			return fmt.Errorf("create vote: %w", err)
		}

		if err := s.ledger.WithTx(tx).ApplyDelta(ctx, post, vt.Delta()); err != nil {
			return err
		}
		vote = &v
		return nil
	})
	observeVote("cast", ref.Kind, err)
	if err != nil {
		return nil, s.fail("cast", profile, ref, err)
	}
	return vote, nil
}

// Update flips an existing vote. Re-submitting the current type is a no-op.
func (s *VoteService) Update(ctx context.Context, profile *models.Profile, ref models.PostRef, newType string) (*models.Vote, error) {
	if profile.Anonymous() {
		return nil, rejectVote("update", ref.Kind, ErrUnauthenticated)
	}
	vt, err := models.ParseVoteType(newType)
	if err != nil {
		return nil, rejectVote("update", ref.Kind, fmt.Errorf("%w: %q", ErrInvalidVoteType, newType))
	}

	var vote *models.Vote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := resolvePost(tx, ref)
		if err != nil {
			return err
		}

		existing, err := findVote(tx, profile.ID, ref, true)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrVoteNotFound
		}
		vote = existing
		if existing.Type == vt {
			return nil
		}

		delta := models.FlipDelta(existing.Type, vt)
		if err := tx.Model(existing).Update("type", vt).Error; err != nil {
			return fmt.Errorf("update vote: %w", err)
		}
		return s.ledger.WithTx(tx).ApplyDelta(ctx, post, delta)
	})
	observeVote("update", ref.Kind, err)
	if err != nil {
		return nil, s.fail("update", profile, ref, err)
	}
	return vote, nil
}

// Retract reverses the vote's effect on the score, then removes the row.
func (s *VoteService) Retract(ctx context.Context, profile *models.Profile, ref models.PostRef) error {
	if profile.Anonymous() {
		return rejectVote("retract", ref.Kind, ErrUnauthenticated)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := resolvePost(tx, ref)
		if err != nil {
			return err
		}

		existing, err := findVote(tx, profile.ID, ref, true)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrVoteNotFound
		}

		if err := s.ledger.WithTx(tx).ApplyDelta(ctx, post, models.RetractDelta(existing.Type)); err != nil {
			return err
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("delete vote: %w", err)
		}
		return nil
	})
	observeVote("retract", ref.Kind, err)
	if err != nil {
		return s.fail("retract", profile, ref, err)
	}
	return nil
}

// State returns score, tallies and, for a signed-in profile, its own vote.
func (s *VoteService) State(ctx context.Context, profile *models.Profile, ref models.PostRef) (*PostState, error) {
	db := s.db.WithContext(ctx)

	post, err := resolvePost(db, ref)
	if err != nil {
		return nil, s.fail("state", profile, ref, err)
	}

	state := &PostState{Post: ref.Kind, ID: ref.ID, Score: post.CurrentScore()}

	var tallies []struct {
		Type  models.VoteType
		Count int64
	}
	if err := db.Model(&models.Vote{}).
		Select("type, COUNT(*) AS count").
		Where("post_kind = ? AND post_id = ?", ref.Kind, ref.ID).
		Group("type").
		Scan(&tallies).Error; err != nil {
		return nil, s.fail("state", profile, ref, fmt.Errorf("count votes: %w", err))
	}
	for _, t := range tallies {
		switch t.Type {
		case models.VoteLike:
			state.Likes = t.Count
		case models.VoteDislike:
			state.Dislikes = t.Count
		}
	}

	if !profile.Anonymous() {
		own, err := findVote(db, profile.ID, ref, false)
		if err != nil {
			return nil, s.fail("state", profile, ref, err)
		}
		if own != nil {
			state.UserVote = own.Type
		}
	}
	return state, nil
}

func (s *VoteService) fail(op string, profile *models.Profile, ref models.PostRef, err error) error {
	if !isClientError(err) {
		var profileID uint
		if !profile.Anonymous() {
			profileID = profile.ID
		}
		log.L.Error("vote operation failed",
			zap.String("operation", op),
			zap.Uint("profile_id", profileID),
			zap.String("post", ref.String()),
			zap.Error(err),
		)
	}
	return err
}

// resolvePost maps the tagged reference onto its table and loads the row.
func resolvePost(tx *gorm.DB, ref models.PostRef) (models.Scorable, error) {
	post := ref.NewPost()
	if post == nil {
		return nil, fmt.Errorf("%w: unknown post kind %q", ErrInvalidTarget, ref.Kind)
	}
	if ref.ID == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, ref)
	}
	if err := tx.First(post, ref.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, ref)
		}
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return post, nil
}

// findVote returns nil, nil when the profile has not voted on ref.
// lock takes a row lock so concurrent flips/retractions of one vote serialise.
func findVote(tx *gorm.DB, profileID uint, ref models.PostRef, lock bool) (*models.Vote, error) {
	q := tx.Where("profile_id = ? AND post_kind = ? AND post_id = ?", profileID, ref.Kind, ref.ID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var vote models.Vote
	if err := q.Take(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find vote: %w", err)
	}
	return &vote, nil
}

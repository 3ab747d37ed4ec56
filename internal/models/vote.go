package models

import (
	"errors"
	"fmt"
	"time"
)

type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
)

var ErrUnknownVoteType = errors.New("unknown vote type")

func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case VoteLike, VoteDislike:
		return VoteType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVoteType, s)
}

// Delta is the score change caused by casting v.
func (v VoteType) Delta() int {
	if v == VoteLike {
		return 1
	}
	return -1
}

// FlipDelta undoes from and applies to in one step: like->dislike is -2.
func FlipDelta(from, to VoteType) int {
	if from == to {
		return 0
	}
	return to.Delta() - from.Delta()
}

// RetractDelta reverses the effect of a cast vote.
func RetractDelta(v VoteType) int {
	return -v.Delta()
}

// Vote 每个用户对每个帖子最多一票 (profile_id, post_kind, post_id)
// A deleted profile leaves its votes behind so scores stay consistent.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID *uint     `gorm:"uniqueIndex:idx_vote_profile_post" json:"profile_id"`
	Profile   *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	PostKind  PostKind  `gorm:"size:10;not null;uniqueIndex:idx_vote_profile_post;index:idx_vote_post" json:"post"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_vote_profile_post;index:idx_vote_post" json:"post_id"`
	Type      VoteType  `gorm:"size:7;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Vote) Target() PostRef {
	return PostRef{Kind: v.PostKind, ID: v.PostID}
}

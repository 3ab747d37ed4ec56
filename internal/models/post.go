package models

import (
	"errors"
	"fmt"
)

// PostKind names a votable table. Matching is case-sensitive.
type PostKind string

const (
	KindQuestion PostKind = "question"
	KindAnswer   PostKind = "answer"
)

var ErrUnknownPostKind = errors.New("unknown post kind")

func ParsePostKind(s string) (PostKind, error) {
	switch PostKind(s) {
	case KindQuestion, KindAnswer:
		return PostKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPostKind, s)
}

// PostRef 投票目标: {kind, id}
type PostRef struct {
	Kind PostKind `json:"post"`
	ID   uint     `json:"id"`
}

func (r PostRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// NewPost returns an empty model for the referenced table with its key set,
// or nil for an unknown kind.
func (r PostRef) NewPost() Scorable {
	switch r.Kind {
	case KindQuestion:
		return &Question{ID: r.ID}
	case KindAnswer:
		return &Answer{ID: r.ID}
	}
	return nil
}

// Scorable is implemented by every post whose score the ledger may change.
type Scorable interface {
	Ref() PostRef
	CurrentScore() int
}

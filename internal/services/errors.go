package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidTarget       = errors.New("invalid post target")
	ErrInvalidVoteType     = errors.New("invalid vote type")
	ErrDuplicateVote       = errors.New("vote already exists for this post")
	ErrVoteNotFound        = errors.New("vote not found")
	ErrConstraintViolation = errors.New("a question with this title was already posted today")
	ErrForbidden           = errors.New("not allowed")
	ErrInvalidInput        = errors.New("invalid input")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isClientError reports whether err is one of the domain errors that callers
// surface as a 4xx.
func isClientError(err error) bool {
	for _, target := range []error{
		ErrUnauthenticated,
		ErrInvalidTarget,
		ErrInvalidVoteType,
		ErrDuplicateVote,
		ErrVoteNotFound,
		ErrConstraintViolation,
		ErrForbidden,
		ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

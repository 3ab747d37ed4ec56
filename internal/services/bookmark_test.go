package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarkService_Toggle(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()
	svc := NewBookmarkService(conn)
	alice := mkProfile(t, conn, "alice")
	bob := mkProfile(t, conn, "bob")
	q := mkQuestion(t, conn, alice, "Worth keeping", day("2024-03-01"), "go")

	on, count, err := svc.Toggle(ctx, alice, q.ID)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, int64(1), count)

	on, count, err = svc.Toggle(ctx, bob, q.ID)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, int64(2), count)

	on, count, err = svc.Toggle(ctx, alice, q.ID)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, int64(1), count)

	_, _, err = svc.Toggle(ctx, alice, 999)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, _, err = svc.Toggle(ctx, nil, q.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestBookmarkService_List(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()
	svc := NewBookmarkService(conn)
	alice := mkProfile(t, conn, "alice")
	first := mkQuestion(t, conn, alice, "first saved", day("2024-03-01"), "go")
	second := mkQuestion(t, conn, alice, "second saved", day("2024-02-01"), "go")
	mkAnswer(t, conn, second, alice)
	mkQuestion(t, conn, alice, "never saved", day("2024-03-02"), "go")

	_, _, err := svc.Toggle(ctx, alice, first.ID)
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, alice, second.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first saved", "second saved"}, titles(list))
	for _, q := range list {
		if q.ID == second.ID {
			assert.Equal(t, 1, q.AnswerCount)
		}
	}

	_, err = svc.List(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

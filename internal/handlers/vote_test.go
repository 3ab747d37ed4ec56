package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"stackqa/internal/models"
	"stackqa/internal/services"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoteHandler_Cast(t *testing.T) {
	d := newDeps(t)
	r := setupTestRouter(d, alice)

	w := do(r, http.MethodPost, "/api/v1/posts/7", `{"post":"question","type":"like"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.PostRef{Kind: models.KindQuestion, ID: 7}, d.votes.lastRef)
	assert.Equal(t, "like", d.votes.lastType)
	body := decode(t, w)
	assert.Equal(t, "like", body["type"])
	assert.Equal(t, "question", body["post"])
}

func TestVoteHandler_CastRejections(t *testing.T) {
	tests := []struct {
		name       string
		profile    *models.Profile
		path       string
		body       string
		serviceErr error
		wantStatus int
		wantCalled bool
	}{
		{"anonymous", nil, "/api/v1/posts/7", `{"post":"question","type":"like"}`, nil, http.StatusBadRequest, false},
		{"bad id", alice, "/api/v1/posts/abc", `{"post":"question","type":"like"}`, nil, http.StatusBadRequest, false},
		{"unknown kind", alice, "/api/v1/posts/7", `{"post":"comment","type":"like"}`, nil, http.StatusBadRequest, false},
		{"malformed body", alice, "/api/v1/posts/7", `{"post":`, nil, http.StatusBadRequest, false},
		{"duplicate", alice, "/api/v1/posts/7", `{"post":"answer","type":"like"}`, services.ErrDuplicateVote, http.StatusBadRequest, true},
		{"bad type", alice, "/api/v1/posts/7", `{"post":"answer","type":"meh"}`, services.ErrInvalidVoteType, http.StatusBadRequest, true},
		{"missing post", alice, "/api/v1/posts/7", `{"post":"answer","type":"like"}`,
			fmt.Errorf("%w: answer/7", services.ErrInvalidTarget), http.StatusBadRequest, true},
		{"storage", alice, "/api/v1/posts/7", `{"post":"answer","type":"like"}`, errors.New("db gone"), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)
			d.votes.err = tt.serviceErr
			r := setupTestRouter(d, tt.profile)

			w := do(r, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCalled, d.votes.calls > 0)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestVoteHandler_InternalErrorsAreNotLeaked(t *testing.T) {
	d := newDeps(t)
	d.votes.err = errors.New("pq: password authentication failed")
	r := setupTestRouter(d, alice)

	w := do(r, http.MethodPost, "/api/v1/posts/7", `{"post":"question","type":"like"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestVoteHandler_Update(t *testing.T) {
	d := newDeps(t)
	r := setupTestRouter(d, alice)

	w := do(r, http.MethodPut, "/api/v1/posts/3", `{"post":"answer","type":"dislike"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, models.PostRef{Kind: models.KindAnswer, ID: 3}, d.votes.lastRef)
	assert.Equal(t, "dislike", d.votes.lastType)

	d.votes.err = services.ErrVoteNotFound
	w = do(r, http.MethodPut, "/api/v1/posts/3", `{"post":"answer","type":"dislike"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteHandler_Retract(t *testing.T) {
	d := newDeps(t)
	r := setupTestRouter(d, alice)

	w := do(r, http.MethodDelete, "/api/v1/posts/3", `{"post":"question"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, models.PostRef{Kind: models.KindQuestion, ID: 3}, d.votes.lastRef)

	w = do(r, http.MethodDelete, "/api/v1/posts/4?post=answer", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, models.PostRef{Kind: models.KindAnswer, ID: 4}, d.votes.lastRef)

	d.votes.err = services.ErrVoteNotFound
	w = do(r, http.MethodDelete, "/api/v1/posts/3", `{"post":"question"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteHandler_State(t *testing.T) {
	d := newDeps(t)
	d.votes.state = &services.PostState{Post: models.KindQuestion, ID: 2, Score: 3, Likes: 4, Dislikes: 1, UserVote: models.VoteLike}
	r := setupTestRouter(d, nil)

	w := do(r, http.MethodGet, "/api/v1/posts/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.KindQuestion, d.votes.lastRef.Kind, "question is the default kind")
	body := decode(t, w)
	assert.EqualValues(t, 3, body["score"])
	assert.EqualValues(t, 4, body["likes"])
	assert.Equal(t, "like", body["user_vote"])

	do(r, http.MethodGet, "/api/v1/posts/2?post=answer", "")
	assert.Equal(t, models.KindAnswer, d.votes.lastRef.Kind)

	d.votes.err = fmt.Errorf("%w: question/2", services.ErrInvalidTarget)
	w = do(r, http.MethodGet, "/api/v1/posts/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/posts/0", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteHandler_WritesInvalidateSearchCache(t *testing.T) {
	d := newDeps(t)
	r := setupTestRouter(d, alice)

	do(r, http.MethodGet, "/api/v1/questions/search?q=%5Bgo%5D", "")
	do(r, http.MethodGet, "/api/v1/questions/search?q=%5Bgo%5D", "")
	assert.Equal(t, 1, d.search.calls)

	w := do(r, http.MethodPost, "/api/v1/posts/1", `{"post":"question","type":"like"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	do(r, http.MethodGet, "/api/v1/questions/search?q=%5Bgo%5D", "")
	assert.Equal(t, 2, d.search.calls)
}

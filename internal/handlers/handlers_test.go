package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"stackqa/internal/config"
	"stackqa/internal/middleware"
	"stackqa/internal/models"
	"stackqa/internal/services"
	"stackqa/internal/utils"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVoter struct {
	err      error
	state    *services.PostState
	calls    int
	lastRef  models.PostRef
	lastType string
}

func (f *fakeVoter) Cast(_ context.Context, _ *models.Profile, ref models.PostRef, voteType string) (*models.Vote, error) {
	f.calls++
	f.lastRef, f.lastType = ref, voteType
	if f.err != nil {
		return nil, f.err
	}
	return &models.Vote{ID: 1, PostKind: ref.Kind, PostID: ref.ID, Type: models.VoteType(voteType)}, nil
}

func (f *fakeVoter) Update(_ context.Context, _ *models.Profile, ref models.PostRef, newType string) (*models.Vote, error) {
	f.calls++
	f.lastRef, f.lastType = ref, newType
	if f.err != nil {
		return nil, f.err
	}
	return &models.Vote{ID: 1, PostKind: ref.Kind, PostID: ref.ID, Type: models.VoteType(newType)}, nil
}

func (f *fakeVoter) Retract(_ context.Context, _ *models.Profile, ref models.PostRef) error {
	f.calls++
	f.lastRef = ref
	return f.err
}

func (f *fakeVoter) State(_ context.Context, _ *models.Profile, ref models.PostRef) (*services.PostState, error) {
	f.calls++
	f.lastRef = ref
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

type fakeSearcher struct {
	err      error
	score    int
	during   func()
	calls    int
	lastRaw  string
	lastTab  string
	lastFeed string
	lastPage int
	lastSize int
}

func (f *fakeSearcher) Search(_ context.Context, raw, tab string, page, size int) (*services.SearchPage, error) {
	f.calls++
	f.lastRaw, f.lastTab, f.lastPage, f.lastSize = raw, tab, page, size
	if f.err != nil {
		return nil, f.err
	}
	score := f.score
	if f.during != nil {
		f.during()
	}
	return &services.SearchPage{
		Questions:  []models.Question{{ID: 1, Title: "hit", Score: score}},
		Query:      utils.ParseQuery(raw),
		Tab:        services.Tab(tab),
		Page:       page,
		PageSize:   size,
		Total:      1,
		TotalPages: 1,
	}, nil
}

func (f *fakeSearcher) Feed(_ context.Context, profile *models.Profile, name string, page, size int) (*services.SearchPage, error) {
	f.calls++
	f.lastFeed, f.lastPage, f.lastSize = name, page, size
	if f.err != nil {
		return nil, f.err
	}
	if profile.Anonymous() {
		return nil, services.ErrUnauthenticated
	}
	return &services.SearchPage{Questions: []models.Question{}, Page: page, PageSize: size, TotalPages: 1}, nil
}

type fakePoster struct {
	err       error
	question  *models.Question
	counted   bool
	calls     int
	lastIP    string
	lastTags  []string
	deletedID uint
}

func (f *fakePoster) AskQuestion(_ context.Context, _ *models.Profile, title, body string, tags []string) (*models.Question, error) {
	f.calls++
	f.lastTags = tags
	if f.err != nil {
		return nil, f.err
	}
	return &models.Question{ID: 5, Title: title, Body: body}, nil
}

func (f *fakePoster) Answer(_ context.Context, _ *models.Profile, questionID uint, body string) (*models.Answer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Answer{ID: 9, QuestionID: questionID, Body: body}, nil
}

func (f *fakePoster) GetQuestion(_ context.Context, id uint) (*models.Question, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.question, nil
}

func (f *fakePoster) RecordView(_ context.Context, _ uint, _ *models.Profile, address string) (bool, error) {
	f.lastIP = address
	if f.err != nil {
		return false, f.err
	}
	return f.counted, nil
}

func (f *fakePoster) DeleteQuestion(_ context.Context, _ *models.Profile, id uint) error {
	f.calls++
	f.deletedID = id
	return f.err
}

func (f *fakePoster) DeleteAnswer(_ context.Context, _ *models.Profile, id uint) error {
	f.calls++
	f.deletedID = id
	return f.err
}

type fakeBookmarker struct {
	err error
}

func (f *fakeBookmarker) Toggle(_ context.Context, _ *models.Profile, _ uint) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	return true, 3, nil
}

func (f *fakeBookmarker) List(_ context.Context, profile *models.Profile) ([]models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Question{{ID: 1, Title: "saved"}}, nil
}

type testDeps struct {
	votes     *fakeVoter
	search    *fakeSearcher
	posts     *fakePoster
	bookmarks *fakeBookmarker
	cache     *SearchCache
}

func newDeps(t *testing.T) *testDeps {
	t.Helper()
	local, err := utils.NewLocalCache(64)
	require.NoError(t, err)
	return &testDeps{
		votes:     &fakeVoter{},
		search:    &fakeSearcher{},
		posts:     &fakePoster{},
		bookmarks: &fakeBookmarker{},
		cache:     NewSearchCache(local, time.Minute),
	}
}

// setupTestRouter mirrors the /api/v1 routes with profile as the requester.
func setupTestRouter(d *testDeps, profile *models.Profile) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if profile != nil {
			c.Set(middleware.CheckUserKey, profile)
		}
		c.Next()
	})

	pages := &config.Search{DefaultPageSize: 15, MaxPageSize: 50}
	vote := NewVoteHandler(d.votes, d.cache)
	search := NewSearchHandler(d.search, d.cache, pages)
	question := NewQuestionHandler(d.posts, d.cache)
	bookmark := NewBookmarkHandler(d.bookmarks)

	api := r.Group("/api/v1")
	api.GET("/posts/:id", vote.State)
	api.GET("/questions/search", search.Search)
	api.GET("/questions/:id", question.Detail)
	api.GET("/questions/feed/:name", search.Feed)

	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	authorized.POST("/posts/:id", vote.Cast)
	authorized.PUT("/posts/:id", vote.Update)
	authorized.DELETE("/posts/:id", vote.Retract)
	authorized.POST("/questions", question.Ask)
	authorized.DELETE("/questions/:id", question.DeleteQuestion)
	authorized.POST("/questions/:id/answers", question.Answer)
	authorized.DELETE("/answers/:id", question.DeleteAnswer)
	authorized.POST("/questions/:id/bookmark", bookmark.Toggle)
	authorized.GET("/bookmarks", bookmark.List)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var alice = &models.Profile{ID: 1, Username: "alice"}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		read bool
		want int
	}{
		{services.ErrUnauthenticated, false, http.StatusBadRequest},
		{services.ErrInvalidTarget, false, http.StatusBadRequest},
		{services.ErrInvalidTarget, true, http.StatusNotFound},
		{services.ErrInvalidVoteType, false, http.StatusBadRequest},
		{services.ErrDuplicateVote, false, http.StatusBadRequest},
		{services.ErrVoteNotFound, false, http.StatusNotFound},
		{services.ErrConstraintViolation, false, http.StatusBadRequest},
		{services.ErrInvalidInput, true, http.StatusBadRequest},
		{services.ErrForbidden, false, http.StatusForbidden},
		{errors.New("connection reset"), false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err, tt.read), "%v read=%v", tt.err, tt.read)
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"stackqa/internal/log"
	"stackqa/internal/middleware"
	"stackqa/internal/models"
	"stackqa/internal/services"
	"stackqa/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Poster is the question/answer surface the handler needs.
type Poster interface {
	AskQuestion(ctx context.Context, profile *models.Profile, title, body string, tags []string) (*models.Question, error)
	Answer(ctx context.Context, profile *models.Profile, questionID uint, body string) (*models.Answer, error)
	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	RecordView(ctx context.Context, questionID uint, profile *models.Profile, address string) (bool, error)
	DeleteQuestion(ctx context.Context, profile *models.Profile, id uint) error
	DeleteAnswer(ctx context.Context, profile *models.Profile, id uint) error
}

type QuestionHandler struct {
	posts Poster
	cache *SearchCache
}

func NewQuestionHandler(posts Poster, cache *SearchCache) *QuestionHandler {
	return &QuestionHandler{posts: posts, cache: cache}
}

type askRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

type answerRequest struct {
	Body string `json:"body"`
}

type answerView struct {
	models.Answer
	BodyHTML string `json:"body_html"`
}

type questionView struct {
	*models.Question
	BodyHTML string       `json:"body_html"`
	Answers  []answerView `json:"answers"`
}

func newQuestionView(q *models.Question) questionView {
	view := questionView{
		Question: q,
		BodyHTML: utils.RenderMarkdown(q.Body),
		Answers:  make([]answerView, len(q.Answers)),
	}
	for i, a := range q.Answers {
		view.Answers[i] = answerView{Answer: a, BodyHTML: utils.RenderMarkdown(a.Body)}
	}
	return view
}

func pathID(c *gin.Context, kind models.PostKind) (uint, error) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		return 0, fmt.Errorf("%w: bad %s id %q", services.ErrInvalidTarget, kind, c.Param("id"))
	}
	return id, nil
}

// Ask 发布问题
func (h *QuestionHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	question, err := h.posts.AskQuestion(c.Request.Context(), middleware.CurrentProfile(c), req.Title, req.Body, req.Tags)
	if err != nil {
		RenderError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, question)
}

// Detail 问题详情，同时记录一次浏览
func (h *QuestionHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pathID(c, models.KindQuestion)
	if err != nil {
		RenderReadError(c, err)
		return
	}

	counted, err := h.posts.RecordView(ctx, id, middleware.CurrentProfile(c), c.ClientIP())
	if err != nil {
		RenderReadError(c, err)
		return
	}
	if counted {
		h.cache.Invalidate(ctx)
	}

	question, err := h.posts.GetQuestion(ctx, id)
	if err != nil {
		RenderReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionView(question))
}

// Answer 回答问题
func (h *QuestionHandler) Answer(c *gin.Context) {
	id, err := pathID(c, models.KindQuestion)
	if err != nil {
		RenderError(c, err)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	answer, err := h.posts.Answer(c.Request.Context(), middleware.CurrentProfile(c), id, req.Body)
	if err != nil {
		RenderError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, answer)
}

// DeleteQuestion 删除问题，连同回答与相关投票
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := pathID(c, models.KindQuestion)
	if err != nil {
		RenderError(c, err)
		return
	}

	profile := middleware.CurrentProfile(c)
	if err := h.posts.DeleteQuestion(c.Request.Context(), profile, id); err != nil {
		RenderError(c, err)
		return
	}
	log.L.Info("question deleted", zap.Uint("question_id", id), zap.Uint("profile_id", profile.ID))
	h.cache.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) DeleteAnswer(c *gin.Context) {
	id, err := pathID(c, models.KindAnswer)
	if err != nil {
		RenderError(c, err)
		return
	}

	if err := h.posts.DeleteAnswer(c.Request.Context(), middleware.CurrentProfile(c), id); err != nil {
		RenderError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"stackqa/internal/middleware"
	"stackqa/internal/models"
	"stackqa/internal/services"
	"stackqa/internal/utils"

	"github.com/gin-gonic/gin"
)

// Voter is the vote surface the handler needs.
type Voter interface {
	Cast(ctx context.Context, profile *models.Profile, ref models.PostRef, voteType string) (*models.Vote, error)
	Update(ctx context.Context, profile *models.Profile, ref models.PostRef, newType string) (*models.Vote, error)
	Retract(ctx context.Context, profile *models.Profile, ref models.PostRef) error
	State(ctx context.Context, profile *models.Profile, ref models.PostRef) (*services.PostState, error)
}

type VoteHandler struct {
	votes Voter
	// 投票改变分数，搜索缓存随之失效
	cache *SearchCache
}

func NewVoteHandler(votes Voter, cache *SearchCache) *VoteHandler {
	return &VoteHandler{votes: votes, cache: cache}
}

type voteRequest struct {
	Post string `json:"post"`
	Type string `json:"type"`
}

func postRef(kind, id string) (models.PostRef, error) {
	postID, ok := utils.ParseID(id)
	if !ok {
		return models.PostRef{}, fmt.Errorf("%w: bad post id %q", services.ErrInvalidTarget, id)
	}
	k, err := models.ParsePostKind(kind)
	if err != nil {
		return models.PostRef{}, fmt.Errorf("%w: %v", services.ErrInvalidTarget, err)
	}
	return models.PostRef{Kind: k, ID: postID}, nil
}

func (h *VoteHandler) bind(c *gin.Context) (models.PostRef, voteRequest, bool) {
	var req voteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return models.PostRef{}, req, false
		}
	}
	// DELETE 客户端常不带 body
	if req.Post == "" {
		req.Post = c.Query("post")
	}
	ref, err := postRef(req.Post, c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return models.PostRef{}, req, false
	}
	return ref, req, true
}

// Cast 投票
func (h *VoteHandler) Cast(c *gin.Context) {
	ref, req, ok := h.bind(c)
	if !ok {
		return
	}

	vote, err := h.votes.Cast(c.Request.Context(), middleware.CurrentProfile(c), ref, req.Type)
	if err != nil {
		RenderError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, vote)
}

// Update 改票，同类型视为成功
func (h *VoteHandler) Update(c *gin.Context) {
	ref, req, ok := h.bind(c)
	if !ok {
		return
	}

	if _, err := h.votes.Update(c.Request.Context(), middleware.CurrentProfile(c), ref, req.Type); err != nil {
		RenderError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Retract 撤票
func (h *VoteHandler) Retract(c *gin.Context) {
	ref, _, ok := h.bind(c)
	if !ok {
		return
	}

	if err := h.votes.Retract(c.Request.Context(), middleware.CurrentProfile(c), ref); err != nil {
		RenderError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// State returns score, tallies and the requester's own vote.
func (h *VoteHandler) State(c *gin.Context) {
	ref, err := postRef(c.DefaultQuery("post", string(models.KindQuestion)), c.Param("id"))
	if err != nil {
		RenderReadError(c, err)
		return
	}

	state, err := h.votes.State(c.Request.Context(), middleware.CurrentProfile(c), ref)
	if err != nil {
		RenderReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

package handlers

import (
	"context"
	"net/http"
	"stackqa/internal/middleware"
	"stackqa/internal/models"

	"github.com/gin-gonic/gin"
)

type Bookmarker interface {
	Toggle(ctx context.Context, profile *models.Profile, questionID uint) (bool, int64, error)
	List(ctx context.Context, profile *models.Profile) ([]models.Question, error)
}

type BookmarkHandler struct {
	bookmarks Bookmarker
}

func NewBookmarkHandler(bookmarks Bookmarker) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// Toggle 切换收藏状态 - 收藏/取消收藏
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	id, err := pathID(c, models.KindQuestion)
	if err != nil {
		RenderReadError(c, err)
		return
	}

	bookmarked, count, err := h.bookmarks.Toggle(c.Request.Context(), middleware.CurrentProfile(c), id)
	if err != nil {
		RenderReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked, "count": count})
}

// List 我的收藏
func (h *BookmarkHandler) List(c *gin.Context) {
	questions, err := h.bookmarks.List(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		RenderReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

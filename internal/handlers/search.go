package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"stackqa/internal/config"
	"stackqa/internal/middleware"
	"stackqa/internal/models"
	"stackqa/internal/services"
	"stackqa/internal/utils"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const searchGenerationKey = "search:gen"

// SearchCache caches anonymous search pages. Writes bump a generation
// stored alongside the pages so older entries are never read again.
// A nil *SearchCache caches nothing.
type SearchCache struct {
	cache utils.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewSearchCache(cache utils.Cache, ttl time.Duration) *SearchCache {
	if cache == nil || ttl <= 0 {
		return nil
	}
	return &SearchCache{cache: cache, ttl: ttl, now: time.Now}
}

// key 在查询前取一次，查询期间的写入会让本次结果落在旧代际下
func (s *SearchCache) key(ctx context.Context, raw, tab string, page, size int) string {
	if s == nil {
		return ""
	}
	gen, _ := s.cache.Get(ctx, searchGenerationKey)
	return fmt.Sprintf("search:%s:%s:%s:%d:%d", gen, tab, raw, page, size)
}

func (s *SearchCache) get(ctx context.Context, key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *SearchCache) set(ctx context.Context, key string, data []byte) {
	if s == nil {
		return
	}
	s.cache.Set(ctx, key, data, s.ttl)
}

// Invalidate 主动失效所有缓存的搜索页
func (s *SearchCache) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.cache.Set(ctx, searchGenerationKey, []byte(strconv.FormatInt(s.now().UnixNano(), 36)), 0)
}

// Searcher is the query engine surface the handler needs.
type Searcher interface {
	Search(ctx context.Context, raw, tab string, page, size int) (*services.SearchPage, error)
	Feed(ctx context.Context, profile *models.Profile, name string, page, size int) (*services.SearchPage, error)
}

type SearchHandler struct {
	search Searcher
	cache  *SearchCache
	pages  *config.Search
}

func NewSearchHandler(search Searcher, cache *SearchCache, pages *config.Search) *SearchHandler {
	return &SearchHandler{search: search, cache: cache, pages: pages}
}

func (h *SearchHandler) pagination(c *gin.Context) (int, int) {
	return utils.Pagination(c.Query("page"), c.Query("pagesize"), h.pages.DefaultPageSize, h.pages.MaxPageSize)
}

// Search 搜索问题: ?q=[tag] title user:1&tab=active&page=1&pagesize=15
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	raw := c.Query("q")
	tab := string(services.ParseTab(c.Query("tab")))
	page, size := h.pagination(c)

	key := h.cache.key(ctx, raw, tab, page, size)
	if data, ok := h.cache.get(ctx, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	result, err := h.search.Search(ctx, raw, tab, page, size)
	if err != nil {
		RenderReadError(c, err)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		RenderReadError(c, err)
		return
	}
	h.cache.set(ctx, key, data)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Feed 个性化列表，按用户区分，不走缓存
func (h *SearchHandler) Feed(c *gin.Context) {
	page, size := h.pagination(c)
	name := c.Param("name")

	result, err := h.search.Feed(c.Request.Context(), middleware.CurrentProfile(c), name, page, size)
	if err != nil {
		RenderReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

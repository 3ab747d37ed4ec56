package router

import (
	"context"
	"net/http"
	"slices"
	"stackqa/internal/config"
	"stackqa/internal/db"
	"stackqa/internal/handlers"
	"stackqa/internal/middleware"
	"stackqa/internal/services"
	"stackqa/internal/utils"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	// 通配时浏览器不允许携带凭证
	if len(origins) == 0 || slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return conf
}

// New builds the engine with the global middleware chain and all routes.
func New(conf *config.Config, conn *gorm.DB, cache utils.Cache) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(conf.App.AllowOrigins)))
	r.Use(middleware.PrometheusMiddleware())

	store := cookie.NewStore([]byte(conf.App.SessionSecret))
	r.Use(sessions.Sessions("stackqa_session", store))
	r.Use(middleware.LoadUser(conn))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		stats := db.Health(ctx, conn)
		code := http.StatusOK
		if stats["status"] != "up" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, stats)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(r, conf, conn, cache)
	return r
}

func RegisterRoutes(r *gin.Engine, conf *config.Config, conn *gorm.DB, cache utils.Cache) {
	searchCache := handlers.NewSearchCache(cache, conf.Search.CacheTTL)

	// Handlers
	voteHandler := handlers.NewVoteHandler(services.NewVoteService(conn), searchCache)
	searchHandler := handlers.NewSearchHandler(services.NewSearchEngine(conn), searchCache, conf.Search)
	questionHandler := handlers.NewQuestionHandler(services.NewPostService(conn), searchCache)
	bookmarkHandler := handlers.NewBookmarkHandler(services.NewBookmarkService(conn))

	api := r.Group("/api/v1")

	// 公共路由
	api.GET("/posts/:id", voteHandler.State)             // 分数与投票统计
	api.GET("/questions/search", searchHandler.Search)   // 搜索
	api.GET("/questions/:id", questionHandler.Detail)    // 问题详情
	api.GET("/questions/feed/:name", searchHandler.Feed) // 个性化列表，匿名返回 400

	// 受保护路由
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts/:id", voteHandler.Cast)      // 投票
		authorized.PUT("/posts/:id", voteHandler.Update)     // 改票
		authorized.DELETE("/posts/:id", voteHandler.Retract) // 撤票

		authorized.POST("/questions", questionHandler.Ask)
		authorized.DELETE("/questions/:id", questionHandler.DeleteQuestion)
		authorized.POST("/questions/:id/answers", questionHandler.Answer)
		authorized.DELETE("/answers/:id", questionHandler.DeleteAnswer)

		authorized.POST("/questions/:id/bookmark", bookmarkHandler.Toggle) // 收藏/取消收藏
		authorized.GET("/bookmarks", bookmarkHandler.List)
	}
}

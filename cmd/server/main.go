package main

import (
	"context"
	"os"
	"stackqa/internal/config"
	"stackqa/internal/db"
	"stackqa/internal/log"
	"stackqa/internal/router"
	"stackqa/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.L.Info("no .env file found, reading env vars from system")
	}

	conf, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.L.Fatal("load config failed", zap.Error(err))
	}
	log.SetDebug(conf.Debug())
	if !conf.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	db.Init(conf.Database.DSN, conf.Debug())

	r := router.New(conf, db.DB, newCache(conf))

	log.L.Info("stackqa server starting", zap.String("port", conf.App.Port))
	if err := r.Run(":" + conf.App.Port); err != nil {
		log.L.Fatal("server stopped", zap.Error(err))
	}
}

// newCache 配置了 Redis 则多实例共享，否则用进程内 LRU
func newCache(conf *config.Config) utils.Cache {
	if conf.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Address,
			Password: conf.Redis.Password,
			DB:       conf.Redis.Database,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.L.Fatal("connect redis error", zap.Error(err))
		}
		log.L.Info("redis client success")
		return utils.NewRedisCache(client, "stackqa:")
	}

	cache, err := utils.NewLocalCache(500)
	if err != nil {
		log.L.Fatal("create lru cache failed", zap.Error(err))
	}
	return cache
}

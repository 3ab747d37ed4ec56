package db

import (
	"context"
	"fmt"
	"stackqa/internal/log"
	"stackqa/internal/models"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the global connection and migrates the schema.
func Init(dsn string, debug bool) {
	var err error
	DB, err = Open(dsn, debug)
	if err != nil {
		log.L.Fatal("failed to connect database", zap.Error(err))
	}
	log.L.Info("database connection established")

	if err := Migrate(DB); err != nil {
		log.L.Fatal("failed to migrate database", zap.Error(err))
	}
	log.L.Info("database migration completed")
}

func Open(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Profile{},
		&models.Tag{},
		&models.Question{},
		&models.Answer{},
		&models.Comment{},
		&models.Vote{},
		&models.Bookmark{},
		&models.QuestionPageHit{},
	)
}

// Health pings the database with the caller's deadline.
func Health(ctx context.Context, conn *gorm.DB) map[string]string {
	stats := make(map[string]string)

	sqlDB, err := conn.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := sqlDB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)
	return stats
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 配置信息
type Config struct {
	App      *App      `json:"app" yaml:"app"`
	Database *Database `json:"database" yaml:"database"`
	Redis    *Redis    `json:"redis" yaml:"redis"`
	Search   *Search   `json:"search" yaml:"search"`
}

type App struct {
	Port          string   `json:"port" yaml:"port"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	Debug         bool     `json:"debug" yaml:"debug"`
	AllowOrigins  []string `json:"allow_origins" yaml:"allow_origins"`
}

type Database struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

// Redis is optional; an empty Address keeps the search cache in process.
type Redis struct {
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
	Database int    `json:"database" yaml:"database"`
}

type Search struct {
	DefaultPageSize int           `json:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int           `json:"max_page_size" yaml:"max_page_size"`
	CacheTTL        time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

func defaults() *Config {
	return &Config{
		App: &App{
			Port:          "8080",
			SessionSecret: "secret_key_change_me",
			AllowOrigins:  []string{"*"},
		},
		Database: &Database{
			DSN: "host=localhost user=postgres password=postgres dbname=stackqa port=5432 sslmode=disable TimeZone=UTC",
		},
		Redis: &Redis{},
		Search: &Search{
			DefaultPageSize: 15,
			MaxPageSize:     50,
			CacheTTL:        30 * time.Second,
		},
	}
}

// Load 读取配置: 默认值 -> YAML 文件(可选) -> 环境变量
func Load(filename string) (*Config, error) {
	conf := defaults()

	if filename != "" {
		content, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", filename, err)
		default:
			if err := yaml.Unmarshal(content, conf); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", filename, err)
			}
		}
	}

	if err := conf.applyEnv(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.App.Port = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.App.SessionSecret = v
	}
	if v := os.Getenv("GIN_MODE"); v == "debug" {
		c.App.Debug = true
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.Database = n
	}
	if v := os.Getenv("SEARCH_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SEARCH_CACHE_TTL: %w", err)
		}
		c.Search.CacheTTL = d
	}
	return nil
}

// Debug 调试模式
func (c *Config) Debug() bool {
	return c.App.Debug
}

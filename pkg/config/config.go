package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/log"
	"github.com/joho/godotenv"
)

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string

	// 数据库配置（配置了 POSTGRES_DSN 时优先使用 PostgreSQL）
	PostgresDSN string
	SQLitePath  string

	// JWT配置（启动后只读）
	JWTSecret string

	// CORS配置
	AllowedOrigins []string

	// 请求限制
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	// 调试配置
	Debug bool
}

// LoadConfig 加载配置
func LoadConfig() *Config {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development" // 默认开发环境
	}

	// 按优先级加载环境文件，已存在的环境变量不会被覆盖
	switch env {
	case "production":
		loadEnvFiles(".env.production", ".env")
	default:
		loadEnvFiles(".env.local", ".env")
	}

	config := &Config{
		Environment:    getEnvWithDefault("ENVIRONMENT", "development"),
		Port:           getEnvWithDefault("PORT", "3000"),
		SQLitePath:     getEnvWithDefault("SQLITE_PATH", "./data/tasktracker.db"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 25*time.Second),
		MaxBodyBytes:   getEnvInt64("MAX_BODY_BYTES", 1<<20),
		Debug:          getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	config.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))

	// CORS配置
	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, origin)
			}
		}
	}

	// 生产环境关闭调试
	if config.Environment == "production" {
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// It is loaded once and never mutated afterwards.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置；返回错误时进程不应继续启动
func (c *Config) Validate() error {
	// 验证端口
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// 验证JWT密钥
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	// 验证数据库配置
	if c.PostgresDSN == "" && c.SQLitePath == "" {
		return fmt.Errorf("database is not configured: set POSTGRES_DSN or SQLITE_PATH")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt64 获取整数类型的环境变量
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration 获取时长类型的环境变量，如 "25s"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFiles 加载存在的 .env 文件到环境变量
func loadEnvFiles(filenames ...string) {
	for _, filename := range filenames {
		if _, err := os.Stat(filename); err != nil {
			continue // 文件不存在，静默跳过
		}
		if err := godotenv.Load(filename); err != nil {
			log.Warnf("failed to load %s: %v", filename, err)
		}
	}
}

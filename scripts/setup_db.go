package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-playground/log"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/logging"
)

// 建表脚本：go run scripts/setup_db.go [dsn]
// dsn 以 postgres:// 开头时使用 PostgreSQL，否则视为 SQLite 文件路径
func main() {
	logging.Init(true)
	cfg := config.GetCached()

	dbCfg := database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
	}
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if strings.HasPrefix(arg, "postgres://") || strings.HasPrefix(arg, "postgresql://") {
			dbCfg = database.DatabaseConfig{PostgresDSN: arg}
		} else {
			dbCfg = database.DatabaseConfig{SQLitePath: arg}
		}
	}

	if dbCfg.PostgresDSN != "" {
		log.Infof("Connecting to PostgreSQL: %s", maskPassword(dbCfg.PostgresDSN))
	}

	db, err := database.NewDatabase(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Info("Creating tables...")
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := db.HealthCheck(ctx); err != nil {
		log.Fatalf("Health check failed after migration: %v", err)
	}
	log.Info("Database setup completed")
}

// maskPassword 隐藏连接字符串中的密码
func maskPassword(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":***"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}

package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/log"

	_ "github.com/lib/pq"
)

// NewPostgresDatabase 创建PostgreSQL数据库实例
func NewPostgresDatabase(dsn string) (*SQLDatabase, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		dsn,
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
	}

	var err error
	for i, strategy := range strategies {
		var db *sql.DB
		db, err = sql.Open("postgres", strategy)
		if err != nil {
			log.Warnf("PostgreSQL strategy %d failed to open: %v", i+1, err)
			continue
		}

		// 设置连接池参数
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// 测试连接
		if err = db.Ping(); err != nil {
			log.Warnf("PostgreSQL strategy %d failed to ping: %v", i+1, err)
			db.Close()
			continue
		}

		log.Infof("PostgreSQL connection established with strategy %d", i+1)
		return newSQLDatabase(db, DialectPostgres), nil
	}

	// 所有策略都失败了
	return nil, fmt.Errorf("failed to connect to PostgreSQL with all strategies: %w", err)
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}

	// key=value 形式的 DSN 使用空格分隔
	if !strings.Contains(dsn, "://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}

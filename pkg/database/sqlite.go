package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLitePath 本地开发默认数据库文件
const DefaultSQLitePath = "./data/tasktracker.db"

// NewSQLiteDatabase 创建SQLite数据库实例，path 为 ":memory:" 时使用内存库
func NewSQLiteDatabase(path string) (*SQLDatabase, error) {
	memory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")
	if !memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite 单写者；内存库每个连接都是独立的库
	db.SetMaxOpenConns(1)
	if memory {
		db.SetConnMaxLifetime(0)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	return newSQLDatabase(db, DialectSQLite), nil
}

// sqliteDSN 打开外键约束与忙等待
func sqliteDSN(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&" + params
		}
		return path + "?" + params
	}
	return "file:" + path + "?" + params
}

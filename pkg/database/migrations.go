package database

import (
	"context"
	"fmt"
	"strings"
)

// schema 建表语句；{{ts}} 按方言替换为时间戳类型
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36) PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		name          VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at    {{ts}} NOT NULL,
		updated_at    {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS boards (
		id          VARCHAR(36) PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color       VARCHAR(64) NOT NULL DEFAULT '',
		icon_id     BIGINT,
		owner_id    VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  {{ts}} NOT NULL,
		updated_at  {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boards_owner_id ON boards(owner_id)`,
	`CREATE TABLE IF NOT EXISTS board_accesses (
		id         VARCHAR(36) PRIMARY KEY,
		board_id   VARCHAR(36) NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		user_id    VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role       VARCHAR(16) NOT NULL CHECK (role IN ('viewer', 'editor', 'admin')),
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_board_accesses_board_user ON board_accesses(board_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_board_accesses_user_id ON board_accesses(user_id)`,
	`CREATE TABLE IF NOT EXISTS lists (
		id         VARCHAR(36) PRIMARY KEY,
		title      VARCHAR(255) NOT NULL,
		board_id   VARCHAR(36) NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lists_board_id ON lists(board_id)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id          VARCHAR(36) PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		list_id     VARCHAR(36) NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
		assignee_id VARCHAR(36) REFERENCES users(id) ON DELETE SET NULL,
		created_at  {{ts}} NOT NULL,
		updated_at  {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_list_id ON cards(list_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         VARCHAR(36) PRIMARY KEY,
		text       TEXT NOT NULL,
		card_id    VARCHAR(36) NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		user_id    VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_card_id ON comments(card_id)`,
}

// Migrate 创建缺失的表与索引，可重复执行
func (s *SQLDatabase) Migrate(ctx context.Context) error {
	ts := "TIMESTAMP"
	if s.dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}

	for i, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{ts}}", ts)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

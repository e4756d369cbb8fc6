package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"task-tracker-backend/pkg/utils"
)

// Dialect SQL方言
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// SQLDatabase 基于 database/sql 的实现，PostgreSQL 与 SQLite 共用
type SQLDatabase struct {
	db      *sql.DB
	dialect Dialect
	sq      squirrel.StatementBuilderType
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func newSQLDatabase(db *sql.DB, dialect Dialect) *SQLDatabase {
	var format squirrel.PlaceholderFormat = squirrel.Question
	if dialect == DialectPostgres {
		format = squirrel.Dollar
	}
	return &SQLDatabase{
		db:      db,
		dialect: dialect,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(format).RunWith(db),
	}
}

// Dialect 返回当前数据库方言
func (s *SQLDatabase) Dialect() Dialect {
	return s.dialect
}

// inTransaction 在事务中执行 fn，出错时回滚
func (s *SQLDatabase) inTransaction(ctx context.Context, fn func(tx squirrel.StatementBuilderType) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(s.sq.RunWith(tx)); err != nil {
		tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queryAll 对查询返回的每一行执行 fn
func queryAll(ctx context.Context, q squirrel.SelectBuilder, fn func(r *sql.Rows) error) (err error) {
	r, err := q.QueryContext(ctx)
	if err != nil {
		return
	}
	defer r.Close()

	for r.Next() {
		if err = fn(r); err != nil {
			return
		}
	}
	return r.Err()
}

// IsConflictError 判断是否为唯一约束冲突
func IsConflictError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// checkAffected 没有行被修改时返回 notFound
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// now 返回写入数据库使用的时间（UTC，微秒精度）
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}

// notFoundOr 将 sql.ErrNoRows 转换为 notFound
func notFoundOr(err error, notFound error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// HealthCheck 健康检查
func (s *SQLDatabase) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接
func (s *SQLDatabase) Close() error {
	return s.db.Close()
}

// DB 返回底层连接（脚本与测试使用）
func (s *SQLDatabase) DB() *sql.DB {
	return s.db
}

var _ DatabaseInterface = (*SQLDatabase)(nil)

var (
	errUserNotFound    = utils.NotFoundf("User not found")
	errBoardNotFound   = utils.NotFoundf("Board not found")
	errAccessNotFound  = utils.NotFoundf("Board member not found")
	errListNotFound    = utils.NotFoundf("List not found")
	errCardNotFound    = utils.NotFoundf("Card not found")
	errCommentNotFound = utils.NotFoundf("Comment not found")
)

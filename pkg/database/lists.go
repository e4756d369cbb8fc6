package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"task-tracker-backend/pkg/models"
)

var listColumns = []string{"id", "title", "board_id", "created_at", "updated_at"}

func scanList(r rowScanner) (*models.List, error) {
	var l models.List
	if err := r.Scan(&l.ID, &l.Title, &l.BoardID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateList 创建列表
func (s *SQLDatabase) CreateList(ctx context.Context, list *models.List) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	list.CreatedAt = now()
	list.UpdatedAt = list.CreatedAt

	_, err := s.sq.Insert("lists").
		Columns(listColumns...).
		Values(list.ID, list.Title, list.BoardID, list.CreatedAt, list.UpdatedAt).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	return nil
}

// GetList 获取列表
func (s *SQLDatabase) GetList(ctx context.Context, id string) (*models.List, error) {
	row := s.sq.Select(listColumns...).
		From("lists").
		Where(squirrel.Eq{"id": id}).
		QueryRowContext(ctx)
	l, err := scanList(row)
	if err != nil {
		return nil, notFoundOr(err, errListNotFound, "get list")
	}
	return l, nil
}

// ListListsForUser 列出用户可访问的所有看板下的列表
func (s *SQLDatabase) ListListsForUser(ctx context.Context, userID string) ([]models.List, error) {
	q := s.sq.Select("l.id", "l.title", "l.board_id", "l.created_at", "l.updated_at").
		From("lists l").
		Join("boards b ON b.id = l.board_id")
	q = visibleTo(q, userID).OrderBy("l.created_at", "l.id")

	lists := make([]models.List, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		l, err := scanList(r)
		if err != nil {
			return err
		}
		lists = append(lists, *l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lists for user: %w", err)
	}
	return lists, nil
}

// ListListsByBoard 列出看板下的列表
func (s *SQLDatabase) ListListsByBoard(ctx context.Context, boardID string) ([]models.List, error) {
	q := s.sq.Select(listColumns...).
		From("lists").
		Where(squirrel.Eq{"board_id": boardID}).
		OrderBy("created_at", "id")

	lists := make([]models.List, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		l, err := scanList(r)
		if err != nil {
			return err
		}
		lists = append(lists, *l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return lists, nil
}

// UpdateList 更新列表（可移动到其他看板）
func (s *SQLDatabase) UpdateList(ctx context.Context, list *models.List) error {
	list.UpdatedAt = now()
	res, err := s.sq.Update("lists").
		Set("title", list.Title).
		Set("board_id", list.BoardID).
		Set("updated_at", list.UpdatedAt).
		Where(squirrel.Eq{"id": list.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	return checkAffected(res, errListNotFound)
}

// DeleteList 删除列表（卡片与评论级联删除）
func (s *SQLDatabase) DeleteList(ctx context.Context, id string) error {
	res, err := s.sq.Delete("lists").
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return checkAffected(res, errListNotFound)
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"task-tracker-backend/pkg/models"
)

// 评论查询关联卡片与列表得到所属看板，并带出作者
var commentColumns = []string{
	"cm.id", "cm.text", "cm.card_id", "cm.user_id", "l.board_id", "cm.created_at", "cm.updated_at",
	"u.email", "u.name",
}

func scanComment(r rowScanner) (*models.Comment, error) {
	var (
		cm     models.Comment
		author models.UserSummary
	)
	err := r.Scan(&cm.ID, &cm.Text, &cm.CardID, &cm.UserID, &cm.BoardID, &cm.CreatedAt, &cm.UpdatedAt,
		&author.Email, &author.Name)
	if err != nil {
		return nil, err
	}
	author.ID = cm.UserID
	cm.Author = &author
	return &cm, nil
}

func (s *SQLDatabase) selectComments() squirrel.SelectBuilder {
	return s.sq.Select(commentColumns...).
		From("comments cm").
		Join("cards c ON c.id = cm.card_id").
		Join("lists l ON l.id = c.list_id").
		Join("users u ON u.id = cm.user_id")
}

// CreateComment 创建评论
func (s *SQLDatabase) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt

	_, err := s.sq.Insert("comments").
		Columns("id", "text", "card_id", "user_id", "created_at", "updated_at").
		Values(comment.ID, comment.Text, comment.CardID, comment.UserID, comment.CreatedAt, comment.UpdatedAt).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetComment 获取评论
func (s *SQLDatabase) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	row := s.selectComments().
		Where(squirrel.Eq{"cm.id": id}).
		QueryRowContext(ctx)
	cm, err := scanComment(row)
	if err != nil {
		return nil, notFoundOr(err, errCommentNotFound, "get comment")
	}
	return cm, nil
}

// ListCommentsByCard 列出卡片下的评论
func (s *SQLDatabase) ListCommentsByCard(ctx context.Context, cardID string) ([]models.Comment, error) {
	q := s.selectComments().
		Where(squirrel.Eq{"cm.card_id": cardID}).
		OrderBy("cm.created_at", "cm.id")

	comments := make([]models.Comment, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		cm, err := scanComment(r)
		if err != nil {
			return err
		}
		comments = append(comments, *cm)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// UpdateComment 更新评论内容
func (s *SQLDatabase) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = now()
	res, err := s.sq.Update("comments").
		Set("text", comment.Text).
		Set("updated_at", comment.UpdatedAt).
		Where(squirrel.Eq{"id": comment.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return checkAffected(res, errCommentNotFound)
}

// DeleteComment 删除评论
func (s *SQLDatabase) DeleteComment(ctx context.Context, id string) error {
	res, err := s.sq.Delete("comments").
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return checkAffected(res, errCommentNotFound)
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"task-tracker-backend/pkg/models"
)

// 卡片查询总是关联列表以得到所属看板
var cardColumns = []string{
	"c.id", "c.title", "c.description", "c.list_id", "c.assignee_id", "l.board_id", "c.created_at", "c.updated_at",
}

func scanCard(r rowScanner) (*models.Card, error) {
	var (
		c          models.Card
		assigneeID sql.NullString
	)
	err := r.Scan(&c.ID, &c.Title, &c.Description, &c.ListID, &assigneeID, &c.BoardID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.AssigneeID = stringPtr(assigneeID)
	return &c, nil
}

func (s *SQLDatabase) selectCards() squirrel.SelectBuilder {
	return s.sq.Select(cardColumns...).
		From("cards c").
		Join("lists l ON l.id = c.list_id")
}

// CreateCard 创建卡片
func (s *SQLDatabase) CreateCard(ctx context.Context, card *models.Card) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	card.CreatedAt = now()
	card.UpdatedAt = card.CreatedAt

	_, err := s.sq.Insert("cards").
		Columns("id", "title", "description", "list_id", "assignee_id", "created_at", "updated_at").
		Values(card.ID, card.Title, card.Description, card.ListID, nullString(card.AssigneeID),
			card.CreatedAt, card.UpdatedAt).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetCard 获取卡片
func (s *SQLDatabase) GetCard(ctx context.Context, id string) (*models.Card, error) {
	row := s.selectCards().
		Where(squirrel.Eq{"c.id": id}).
		QueryRowContext(ctx)
	c, err := scanCard(row)
	if err != nil {
		return nil, notFoundOr(err, errCardNotFound, "get card")
	}
	return c, nil
}

// ListCardsByList 列出列表下的卡片
func (s *SQLDatabase) ListCardsByList(ctx context.Context, listID string) ([]models.Card, error) {
	q := s.selectCards().
		Where(squirrel.Eq{"c.list_id": listID}).
		OrderBy("c.created_at", "c.id")

	cards := make([]models.Card, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		c, err := scanCard(r)
		if err != nil {
			return err
		}
		cards = append(cards, *c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// ListCardsForUser 列出用户可访问的所有看板下的卡片
func (s *SQLDatabase) ListCardsForUser(ctx context.Context, userID string) ([]models.Card, error) {
	q := s.selectCards().Join("boards b ON b.id = l.board_id")
	q = visibleTo(q, userID).OrderBy("c.created_at", "c.id")

	cards := make([]models.Card, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		c, err := scanCard(r)
		if err != nil {
			return err
		}
		cards = append(cards, *c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user: %w", err)
	}
	return cards, nil
}

// UpdateCard 更新卡片（可移动到其他列表）
func (s *SQLDatabase) UpdateCard(ctx context.Context, card *models.Card) error {
	card.UpdatedAt = now()
	res, err := s.sq.Update("cards").
		Set("title", card.Title).
		Set("description", card.Description).
		Set("list_id", card.ListID).
		Set("assignee_id", nullString(card.AssigneeID)).
		Set("updated_at", card.UpdatedAt).
		Where(squirrel.Eq{"id": card.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return checkAffected(res, errCardNotFound)
}

// DeleteCard 删除卡片（评论级联删除）
func (s *SQLDatabase) DeleteCard(ctx context.Context, id string) error {
	res, err := s.sq.Delete("cards").
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return checkAffected(res, errCardNotFound)
}

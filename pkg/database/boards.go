package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

var boardColumns = []string{
	"b.id", "b.title", "b.description", "b.color", "b.icon_id", "b.owner_id", "b.created_at", "b.updated_at",
}

func scanBoard(r rowScanner, extra ...interface{}) (*models.Board, error) {
	var (
		b      models.Board
		iconID sql.NullInt64
	)
	dest := append([]interface{}{
		&b.ID, &b.Title, &b.Description, &b.Color, &iconID, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	b.IconID = int64Ptr(iconID)
	return &b, nil
}

// CreateBoard 创建看板；ownerAccess 非空时在同一事务内写入
func (s *SQLDatabase) CreateBoard(ctx context.Context, board *models.Board, ownerAccess *models.BoardAccess) error {
	if board.ID == "" {
		board.ID = uuid.NewString()
	}
	board.CreatedAt = now()
	board.UpdatedAt = board.CreatedAt

	return s.inTransaction(ctx, func(tx squirrel.StatementBuilderType) error {
		_, err := tx.Insert("boards").
			Columns("id", "title", "description", "color", "icon_id", "owner_id", "created_at", "updated_at").
			Values(board.ID, board.Title, board.Description, board.Color, nullInt64(board.IconID),
				board.OwnerID, board.CreatedAt, board.UpdatedAt).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to create board: %w", err)
		}

		if ownerAccess == nil {
			return nil
		}
		ownerAccess.BoardID = board.ID
		return insertBoardAccess(ctx, tx, ownerAccess)
	})
}

// GetBoard 获取看板
func (s *SQLDatabase) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	row := s.sq.Select(boardColumns...).
		From("boards b").
		Where(squirrel.Eq{"b.id": id}).
		QueryRowContext(ctx)
	b, err := scanBoard(row)
	if err != nil {
		return nil, notFoundOr(err, errBoardNotFound, "get board")
	}
	return b, nil
}

// UpdateBoard 更新看板可编辑字段
func (s *SQLDatabase) UpdateBoard(ctx context.Context, board *models.Board) error {
	board.UpdatedAt = now()
	res, err := s.sq.Update("boards").
		Set("title", board.Title).
		Set("description", board.Description).
		Set("color", board.Color).
		Set("icon_id", nullInt64(board.IconID)).
		Set("updated_at", board.UpdatedAt).
		Where(squirrel.Eq{"id": board.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}
	return checkAffected(res, errBoardNotFound)
}

// DeleteBoard 删除看板（列表、卡片、评论、授权级联删除）
func (s *SQLDatabase) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.sq.Delete("boards").
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return checkAffected(res, errBoardNotFound)
}

// visibleTo 限定为用户拥有或被授权的看板
// q 须以别名 b 关联 boards 表；ba 为该用户的授权行，可能为空
func visibleTo(q squirrel.SelectBuilder, userID string) squirrel.SelectBuilder {
	return q.LeftJoin("board_accesses ba ON ba.board_id = b.id AND ba.user_id = ?", userID).
		Where(squirrel.Or{
			squirrel.Eq{"b.owner_id": userID},
			squirrel.NotEq{"ba.id": nil},
		})
}

// ListBoardsForUser 列出用户拥有或被授权的看板
func (s *SQLDatabase) ListBoardsForUser(ctx context.Context, userID string) ([]BoardWithAccess, error) {
	cols := append(append([]string{}, boardColumns...), "u.id", "u.email", "u.name", "ba.id", "ba.role")
	q := s.sq.Select(cols...).
		From("boards b").
		Join("users u ON u.id = b.owner_id")
	q = visibleTo(q, userID).OrderBy("b.created_at", "b.id")

	boards := make([]BoardWithAccess, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		var (
			item     BoardWithAccess
			accessID sql.NullString
			role     sql.NullString
		)
		b, err := scanBoard(r, &item.Owner.ID, &item.Owner.Email, &item.Owner.Name, &accessID, &role)
		if err != nil {
			return err
		}
		item.Board = *b
		item.AccessID = stringPtr(accessID)
		if role.Valid {
			rl := models.Role(role.String)
			item.Role = &rl
		}
		boards = append(boards, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

var accessColumns = []string{"ba.id", "ba.board_id", "ba.user_id", "ba.role", "ba.created_at", "ba.updated_at"}

func scanBoardAccess(r rowScanner, extra ...interface{}) (*models.BoardAccess, error) {
	var (
		a    models.BoardAccess
		role string
	)
	dest := append([]interface{}{&a.ID, &a.BoardID, &a.UserID, &role, &a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	return &a, nil
}

func insertBoardAccess(ctx context.Context, sq squirrel.StatementBuilderType, access *models.BoardAccess) error {
	if access.ID == "" {
		access.ID = uuid.NewString()
	}
	access.CreatedAt = now()
	access.UpdatedAt = access.CreatedAt

	_, err := sq.Insert("board_accesses").
		Columns("id", "board_id", "user_id", "role", "created_at", "updated_at").
		Values(access.ID, access.BoardID, access.UserID, string(access.Role), access.CreatedAt, access.UpdatedAt).
		ExecContext(ctx)
	if err != nil {
		if IsConflictError(err) {
			return utils.Conflictf("User already has access to this board")
		}
		return fmt.Errorf("failed to create board access: %w", err)
	}
	return nil
}

// CreateBoardAccess 创建授权，(board_id, user_id) 重复返回 ErrConflict
func (s *SQLDatabase) CreateBoardAccess(ctx context.Context, access *models.BoardAccess) error {
	return insertBoardAccess(ctx, s.sq, access)
}

// GetBoardAccess 根据ID获取授权
func (s *SQLDatabase) GetBoardAccess(ctx context.Context, id string) (*models.BoardAccess, error) {
	row := s.sq.Select(accessColumns...).
		From("board_accesses ba").
		Where(squirrel.Eq{"ba.id": id}).
		QueryRowContext(ctx)
	a, err := scanBoardAccess(row)
	if err != nil {
		return nil, notFoundOr(err, errAccessNotFound, "get board access")
	}
	return a, nil
}

// GetBoardAccessByUser 获取用户在看板上的授权
func (s *SQLDatabase) GetBoardAccessByUser(ctx context.Context, boardID, userID string) (*models.BoardAccess, error) {
	row := s.sq.Select(accessColumns...).
		From("board_accesses ba").
		Where(squirrel.Eq{"ba.board_id": boardID, "ba.user_id": userID}).
		QueryRowContext(ctx)
	a, err := scanBoardAccess(row)
	if err != nil {
		return nil, notFoundOr(err, errAccessNotFound, "get board access")
	}
	return a, nil
}

// ListBoardMembers 列出看板授权及对应用户
func (s *SQLDatabase) ListBoardMembers(ctx context.Context, boardID string) ([]models.BoardMember, error) {
	cols := append(append([]string{}, accessColumns...), "u.id", "u.email", "u.name", "b.owner_id")
	q := s.sq.Select(cols...).
		From("board_accesses ba").
		Join("users u ON u.id = ba.user_id").
		Join("boards b ON b.id = ba.board_id").
		Where(squirrel.Eq{"ba.board_id": boardID}).
		OrderBy("ba.created_at", "ba.id")

	members := make([]models.BoardMember, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		var (
			m       models.BoardMember
			ownerID string
		)
		a, err := scanBoardAccess(r, &m.User.ID, &m.User.Email, &m.User.Name, &ownerID)
		if err != nil {
			return err
		}
		m.BoardAccess = *a
		m.IsOwner = a.UserID == ownerID
		members = append(members, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list board members: %w", err)
	}
	return members, nil
}

// UpdateBoardAccessRole 修改授权角色
func (s *SQLDatabase) UpdateBoardAccessRole(ctx context.Context, id string, role models.Role) error {
	res, err := s.sq.Update("board_accesses").
		Set("role", string(role)).
		Set("updated_at", now()).
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update board access: %w", err)
	}
	return checkAffected(res, errAccessNotFound)
}

// DeleteBoardAccess 删除授权
func (s *SQLDatabase) DeleteBoardAccess(ctx context.Context, id string) error {
	res, err := s.sq.Delete("board_accesses").
		Where(squirrel.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete board access: %w", err)
	}
	return checkAffected(res, errAccessNotFound)
}

// CountBoardAdmins 统计看板上的 admin 授权数，excludeAccessID 非空时排除该行
func (s *SQLDatabase) CountBoardAdmins(ctx context.Context, boardID, excludeAccessID string) (int, error) {
	q := s.sq.Select("COUNT(*)").
		From("board_accesses").
		Where(squirrel.Eq{"board_id": boardID, "role": string(models.RoleAdmin)})
	if excludeAccessID != "" {
		q = q.Where(squirrel.NotEq{"id": excludeAccessID})
	}

	var n int
	if err := q.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count board admins: %w", err)
	}
	return n, nil
}

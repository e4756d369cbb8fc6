package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

var userColumns = []string{"id", "email", "name", "password_hash", "created_at", "updated_at"}

func scanUser(r rowScanner) (*models.User, error) {
	var u models.User
	err := r.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser 创建用户，邮箱重复返回 ErrConflict
func (s *SQLDatabase) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	_, err := s.sq.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.Name, user.Password, user.CreatedAt, user.UpdatedAt).
		ExecContext(ctx)
	if err != nil {
		if IsConflictError(err) {
			return utils.Conflictf("Email has already been taken")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail 根据邮箱获取用户
func (s *SQLDatabase) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.sq.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		QueryRowContext(ctx)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, errUserNotFound, "get user by email")
	}
	return u, nil
}

// GetUserByID 根据ID获取用户
func (s *SQLDatabase) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.sq.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		QueryRowContext(ctx)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, errUserNotFound, "get user by id")
	}
	return u, nil
}

// SearchUsers 按条件查询用户；邮箱精确匹配，名称不区分大小写模糊匹配
func (s *SQLDatabase) SearchUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}

	q := s.sq.Select(userColumns...).
		From("users").
		OrderBy("created_at", "id").
		Limit(limit)
	if filter.ID != "" {
		q = q.Where(squirrel.Eq{"id": filter.ID})
	}
	if filter.Email != "" {
		q = q.Where(squirrel.Eq{"email": filter.Email})
	}
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}

	users := make([]models.User, 0)
	err := queryAll(ctx, q, func(r *sql.Rows) error {
		u, err := scanUser(r)
		if err != nil {
			return err
		}
		users = append(users, *u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

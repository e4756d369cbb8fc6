// Package access implements board-scoped role based access control: the
// access store, the authorization engine and the membership manager.
package access

import (
	"context"
	"errors"
	"fmt"

	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

// Repository is the subset of the database the access layer reads and writes.
// Lookups of absent rows return utils.ErrNotFound.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetBoard(ctx context.Context, id string) (*models.Board, error)
	GetList(ctx context.Context, id string) (*models.List, error)
	GetCard(ctx context.Context, id string) (*models.Card, error)
	GetComment(ctx context.Context, id string) (*models.Comment, error)

	CreateBoardAccess(ctx context.Context, access *models.BoardAccess) error
	GetBoardAccess(ctx context.Context, id string) (*models.BoardAccess, error)
	GetBoardAccessByUser(ctx context.Context, boardID, userID string) (*models.BoardAccess, error)
	ListBoardMembers(ctx context.Context, boardID string) ([]models.BoardMember, error)
	UpdateBoardAccessRole(ctx context.Context, id string, role models.Role) error
	DeleteBoardAccess(ctx context.Context, id string) error
	CountBoardAdmins(ctx context.Context, boardID, excludeAccessID string) (int, error)
}

// Store maps (board, user) pairs to roles. Rows are read on every call.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// RoleOf returns the explicit role a user holds on a board. The owner's
// implicit admin right is not considered; see EffectiveRole.
func (s *Store) RoleOf(ctx context.Context, boardID, userID string) (models.Role, bool, error) {
	a, err := s.repo.GetBoardAccessByUser(ctx, boardID, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("role of user %s on board %s: %w", userID, boardID, err)
	}
	return a.Role, true, nil
}

// EffectiveRole merges ownership with explicit rows: the owner is always admin,
// everyone else gets their explicit role, if any.
func (s *Store) EffectiveRole(ctx context.Context, board *models.Board, userID string) (models.Role, bool, error) {
	if userID == "" {
		return "", false, nil
	}
	if board.OwnerID == userID {
		return models.RoleAdmin, true, nil
	}
	return s.RoleOf(ctx, board.ID, userID)
}

// IsAdmin reports whether the user owns the board or holds an admin row on it
func (s *Store) IsAdmin(ctx context.Context, board *models.Board, userID string) (bool, error) {
	role, ok, err := s.EffectiveRole(ctx, board, userID)
	if err != nil {
		return false, err
	}
	return ok && role == models.RoleAdmin, nil
}

// Grant creates an access row. A second row for the same pair fails with
// utils.ErrConflict and leaves the existing row untouched.
func (s *Store) Grant(ctx context.Context, boardID, userID string, role models.Role) (*models.BoardAccess, error) {
	if !role.Valid() {
		return nil, utils.NewValidationError("role", "role must be one of: viewer, editor, admin")
	}
	a := &models.BoardAccess{
		BoardID: boardID,
		UserID:  userID,
		Role:    role,
	}
	if err := s.repo.CreateBoardAccess(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Access loads an access row and checks it belongs to boardID
func (s *Store) Access(ctx context.Context, boardID, accessID string) (*models.BoardAccess, error) {
	a, err := s.repo.GetBoardAccess(ctx, accessID)
	if err != nil {
		return nil, err
	}
	if a.BoardID != boardID {
		return nil, utils.NotFoundf("Board member not found")
	}
	return a, nil
}

func (s *Store) SetRole(ctx context.Context, accessID string, role models.Role) error {
	return s.repo.UpdateBoardAccessRole(ctx, accessID, role)
}

func (s *Store) Revoke(ctx context.Context, accessID string) error {
	return s.repo.DeleteBoardAccess(ctx, accessID)
}

// OtherAdmins counts admin rows on the board other than accessID
func (s *Store) OtherAdmins(ctx context.Context, boardID, accessID string) (int, error) {
	return s.repo.CountBoardAdmins(ctx, boardID, accessID)
}

func (s *Store) Members(ctx context.Context, boardID string) ([]models.BoardMember, error) {
	return s.repo.ListBoardMembers(ctx, boardID)
}

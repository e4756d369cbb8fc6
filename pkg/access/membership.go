package access

import (
	"context"
	"errors"
	"strings"

	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

// MemberRef identifies the user to add. Email wins when both are set.
type MemberRef struct {
	Email  string
	UserID string
}

// Membership mutates board access rows. Every mutation requires the acting
// user to be a board admin, and a board never loses its last admin row.
type Membership struct {
	repo   Repository
	engine *Engine
}

func NewMembership(repo Repository, engine *Engine) *Membership {
	return &Membership{repo: repo, engine: engine}
}

// ListMembers returns the board's access rows; any member may read them
func (m *Membership) ListMembers(ctx context.Context, boardID, actingUserID string) ([]models.BoardMember, error) {
	if _, _, err := m.engine.Board(ctx, actingUserID, boardID, ActionView); err != nil {
		return nil, err
	}
	return m.engine.Store().Members(ctx, boardID)
}

// AddMember grants role on the board to the referenced user
func (m *Membership) AddMember(ctx context.Context, boardID, actingUserID string, ref MemberRef, role string) (*models.BoardMember, error) {
	board, _, err := m.engine.Board(ctx, actingUserID, boardID, ActionAdmin)
	if err != nil {
		return nil, err
	}

	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}

	target, err := m.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	a, err := m.engine.Store().Grant(ctx, board.ID, target.ID, r)
	if err != nil {
		return nil, err
	}
	return &models.BoardMember{
		BoardAccess: *a,
		User:        target.Summary(),
		IsOwner:     target.ID == board.OwnerID,
	}, nil
}

// UpdateMemberRole changes the role of an access row on the board
func (m *Membership) UpdateMemberRole(ctx context.Context, boardID, actingUserID, accessID, role string) (*models.BoardAccess, error) {
	if _, _, err := m.engine.Board(ctx, actingUserID, boardID, ActionAdmin); err != nil {
		return nil, err
	}

	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}

	store := m.engine.Store()
	a, err := store.Access(ctx, boardID, accessID)
	if err != nil {
		return nil, err
	}
	if a.Role == r {
		return a, nil
	}

	if a.Role == models.RoleAdmin {
		if err := m.requireOtherAdmin(ctx, boardID, a.ID, "role", "Cannot demote the last admin of the board"); err != nil {
			return nil, err
		}
	}

	if err := store.SetRole(ctx, a.ID, r); err != nil {
		return nil, err
	}
	return store.Access(ctx, boardID, a.ID)
}

// RemoveMember deletes an access row from the board
func (m *Membership) RemoveMember(ctx context.Context, boardID, actingUserID, accessID string) error {
	if _, _, err := m.engine.Board(ctx, actingUserID, boardID, ActionAdmin); err != nil {
		return err
	}

	store := m.engine.Store()
	a, err := store.Access(ctx, boardID, accessID)
	if err != nil {
		return err
	}

	if a.Role == models.RoleAdmin {
		if err := m.requireOtherAdmin(ctx, boardID, a.ID, "member", "Cannot remove the last admin of the board"); err != nil {
			return err
		}
	}

	return store.Revoke(ctx, a.ID)
}

// requireOtherAdmin fails unless an admin row other than accessID exists
func (m *Membership) requireOtherAdmin(ctx context.Context, boardID, accessID, field, msg string) error {
	n, err := m.engine.Store().OtherAdmins(ctx, boardID, accessID)
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.NewValidationError(field, msg)
	}
	return nil
}

func (m *Membership) resolve(ctx context.Context, ref MemberRef) (*models.User, error) {
	email := strings.TrimSpace(ref.Email)
	id := strings.TrimSpace(ref.UserID)

	var (
		user *models.User
		err  error
	)
	switch {
	case email != "":
		user, err = m.repo.GetUserByEmail(ctx, email)
	case id != "":
		user, err = m.repo.GetUserByID(ctx, id)
	default:
		return nil, utils.NewValidationError("email", "email or user_id is required")
	}
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NotFoundf("User not found")
	}
	return user, err
}

func parseRole(role string) (models.Role, error) {
	if role == "" {
		return "", utils.NewValidationError("role", "role is required")
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return "", utils.NewValidationError("role", "role must be one of: viewer, editor, admin")
	}
	return r, nil
}

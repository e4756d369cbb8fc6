package access

import (
	"context"
	"errors"
	"fmt"

	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

// Action is something a user may attempt on a board-owned resource
type Action string

const (
	ActionView    Action = "view"
	ActionComment Action = "comment"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionAdmin   Action = "admin"
)

// policy is the minimum role per action
var policy = map[Action]models.Role{
	ActionView:    models.RoleViewer,
	ActionComment: models.RoleViewer,
	ActionEdit:    models.RoleEditor,
	ActionDelete:  models.RoleEditor,
	ActionAdmin:   models.RoleAdmin,
}

// RequiredRole returns the minimum role for an action
func RequiredRole(a Action) (models.Role, bool) {
	r, ok := policy[a]
	return r, ok
}

// Allows reports whether role satisfies the policy for action
func Allows(role models.Role, a Action) bool {
	required, ok := RequiredRole(a)
	return ok && role.AtLeast(required)
}

// Engine decides whether a user may perform an action on a board, list, card
// or comment. Existence is always checked before permission, so callers see
// NotFound for absent resources and Forbidden only for resources that exist.
type Engine struct {
	repo  Repository
	store *Store
}

func NewEngine(repo Repository, store *Store) *Engine {
	return &Engine{repo: repo, store: store}
}

// Store exposes the underlying access store
func (e *Engine) Store() *Store {
	return e.store
}

// Authorize resolves the resource's board and checks the user's effective
// role against the policy. It returns the board and the role on success.
func (e *Engine) Authorize(ctx context.Context, userID string, res models.OwnedByBoard, a Action) (*models.Board, models.Role, error) {
	board, ok := res.(*models.Board)
	if !ok {
		var err error
		board, err = e.repo.GetBoard(ctx, res.OwningBoardID())
		if err != nil {
			return nil, "", err
		}
	}

	role, has, err := e.store.EffectiveRole(ctx, board, userID)
	if err != nil {
		return nil, "", err
	}
	if !has || !Allows(role, a) {
		return nil, "", utils.Forbiddenf("You do not have %s access to this board", a)
	}
	return board, role, nil
}

// Board loads a board and authorizes a on it
func (e *Engine) Board(ctx context.Context, userID, boardID string, a Action) (*models.Board, models.Role, error) {
	board, err := e.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, "", err
	}
	return e.Authorize(ctx, userID, board, a)
}

// List loads a list and authorizes a on its board
func (e *Engine) List(ctx context.Context, userID, listID string, a Action) (*models.List, error) {
	list, err := e.repo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, _, err := e.Authorize(ctx, userID, list, a); err != nil {
		return nil, err
	}
	return list, nil
}

// Card loads a card and authorizes a on its board
func (e *Engine) Card(ctx context.Context, userID, cardID string, a Action) (*models.Card, error) {
	card, err := e.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, _, err := e.Authorize(ctx, userID, card, a); err != nil {
		return nil, err
	}
	return card, nil
}

// Comment loads a comment and authorizes a on its board
func (e *Engine) Comment(ctx context.Context, userID, commentID string, a Action) (*models.Comment, *models.Board, error) {
	comment, err := e.repo.GetComment(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	board, _, err := e.Authorize(ctx, userID, comment, a)
	if err != nil {
		return nil, nil, err
	}
	return comment, board, nil
}

// CommentForUpdate loads a comment the user may edit: board view access and authorship
func (e *Engine) CommentForUpdate(ctx context.Context, userID, commentID string) (*models.Comment, error) {
	comment, _, err := e.Comment(ctx, userID, commentID, ActionView)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, utils.Forbiddenf("Only the author can edit this comment")
	}
	return comment, nil
}

// CommentForDelete loads a comment the user may delete: board view access and
// either authorship or board ownership
func (e *Engine) CommentForDelete(ctx context.Context, userID, commentID string) (*models.Comment, error) {
	comment, board, err := e.Comment(ctx, userID, commentID, ActionView)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID && board.OwnerID != userID {
		return nil, utils.Forbiddenf("Only the author or the board owner can delete this comment")
	}
	return comment, nil
}

// ValidateAssignee checks that assigneeID names an existing user with view
// access to the board. Failures are validation errors on assignee_id.
func (e *Engine) ValidateAssignee(ctx context.Context, boardID, assigneeID string) error {
	board, err := e.repo.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}

	user, err := e.repo.GetUserByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewValidationError("assignee_id", fmt.Sprintf("User %s does not exist", assigneeID))
		}
		return err
	}

	role, has, err := e.store.EffectiveRole(ctx, board, user.ID)
	if err != nil {
		return err
	}
	if !has || !Allows(role, ActionView) {
		return utils.NewValidationError("assignee_id",
			fmt.Sprintf("User %s (%s) does not have access to this board", user.Email, user.ID))
	}
	return nil
}

// ValidateAssignees checks every assigned card against boardID, for moves of
// whole lists. The first failure is reported on field, naming the card.
func (e *Engine) ValidateAssignees(ctx context.Context, boardID, field string, cards []models.Card) error {
	for _, c := range cards {
		if c.AssigneeID == nil {
			continue
		}
		err := e.ValidateAssignee(ctx, boardID, *c.AssigneeID)
		var verr utils.ValidationError
		if errors.As(err, &verr) {
			return utils.NewValidationError(field,
				fmt.Sprintf("Card %q cannot move: %s", c.Title, verr["assignee_id"]))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

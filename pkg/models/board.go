package models

import "time"

// OwnedByBoard is implemented by every resource whose access policy is the
// policy of a board. Boards return their own id.
type OwnedByBoard interface {
	OwningBoardID() string
}

// Board is a shared workspace (owner + delegated members)
type Board struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Color       string    `json:"color,omitempty" db:"color"`
	IconID      *int64    `json:"icon_id,omitempty" db:"icon_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (b *Board) OwningBoardID() string { return b.ID }

// BoardView is a board as seen by one user
type BoardView struct {
	Board
	Owner    UserSummary `json:"owner"`
	UserRole Role        `json:"user_role"`
	AccessID *string     `json:"access_id"`
}

// BoardAccess grants a role on a board to a user
type BoardAccess struct {
	ID        string    `json:"id" db:"id"`
	BoardID   string    `json:"board_id" db:"board_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (a *BoardAccess) OwningBoardID() string { return a.BoardID }

// BoardMember is an access row joined with its user
type BoardMember struct {
	BoardAccess
	User    UserSummary `json:"user"`
	IsOwner bool        `json:"is_owner"`
}

// BoardCreateRequest is the payload of POST /boards
type BoardCreateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,max=64"`
	IconID      *int64 `json:"icon_id"`
}

// BoardUpdateRequest is the payload of PUT /boards/{id}; nil fields are left untouched
type BoardUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,max=64"`
	IconID      *int64  `json:"icon_id"`
}

// MemberAddRequest is the payload of POST /boards/{id}/members.
// Email is preferred over UserID when both are set.
type MemberAddRequest struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// MemberUpdateRequest is the payload of PUT /boards/{id}/members/{memberId}
type MemberUpdateRequest struct {
	Role string `json:"role"`
}

package models

import "time"

// Card is a task inside a list. BoardID is not stored on the card; it is
// resolved through the owning list when the card is loaded.
type Card struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	ListID      string    `json:"list_id" db:"list_id"`
	AssigneeID  *string   `json:"assignee_id" db:"assignee_id"`
	BoardID     string    `json:"board_id" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (c *Card) OwningBoardID() string { return c.BoardID }

type CardCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description"`
	ListID      string  `json:"list_id" validate:"required"`
	AssigneeID  *string `json:"assignee_id"`
}

// CardUpdateRequest updates a card. An empty AssigneeID clears the assignee.
type CardUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	ListID      *string `json:"list_id" validate:"omitempty,min=1"`
	AssigneeID  *string `json:"assignee_id"`
}

// Comment is a note left on a card by its author
type Comment struct {
	ID        string       `json:"id" db:"id"`
	Text      string       `json:"text" db:"text"`
	CardID    string       `json:"card_id" db:"card_id"`
	UserID    string       `json:"user_id" db:"user_id"`
	BoardID   string       `json:"board_id" db:"-"`
	Author    *UserSummary `json:"author,omitempty" db:"-"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

func (c *Comment) OwningBoardID() string { return c.BoardID }

type CommentCreateRequest struct {
	Text   string `json:"text" validate:"required"`
	CardID string `json:"card_id" validate:"required"`
}

type CommentUpdateRequest struct {
	Text string `json:"text" validate:"required"`
}

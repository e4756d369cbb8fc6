package models

import "time"

// List is a column on a board
type List struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	BoardID   string    `json:"board_id" db:"board_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (l *List) OwningBoardID() string { return l.BoardID }

type ListCreateRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	BoardID string `json:"board_id" validate:"required"`
}

type ListUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	BoardID *string `json:"board_id" validate:"omitempty,min=1"`
}

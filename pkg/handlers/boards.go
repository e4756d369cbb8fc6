package handlers

import (
	"errors"
	"net/http"
	"strings"

	"task-tracker-backend/pkg/access"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

type BoardsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	engine *access.Engine
}

func NewBoardsHandler(cfg *config.Config, db database.DatabaseInterface, engine *access.Engine) *BoardsHandler {
	return &BoardsHandler{config: cfg, db: db, engine: engine}
}

// GET /api/boards
// Boards the caller owns or has been granted access to, with the caller's role.
func (h *BoardsHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	rows, err := h.db.ListBoardsForUser(r.Context(), user.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	boards := make([]models.BoardView, 0, len(rows))
	for _, row := range rows {
		view := models.BoardView{
			Board:    row.Board,
			Owner:    row.Owner,
			AccessID: row.AccessID,
		}
		switch {
		case row.Board.OwnerID == user.ID:
			view.UserRole = models.RoleAdmin
		case row.Role != nil:
			view.UserRole = *row.Role
		}
		boards = append(boards, view)
	}
	utils.WriteSuccessResponse(w, boards)
}

// POST /api/boards
// The creator becomes owner and also receives an explicit admin row.
func (h *BoardsHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.BoardCreateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"title": &req.Title}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	board := &models.Board{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Color:       req.Color,
		IconID:      req.IconID,
		OwnerID:     user.ID,
	}
	owner := &models.BoardAccess{UserID: user.ID, Role: models.RoleAdmin}
	if err := h.db.CreateBoard(r.Context(), board, owner); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteCreatedResponse(w, models.BoardView{
		Board:    *board,
		Owner:    user.Summary(),
		UserRole: models.RoleAdmin,
		AccessID: &owner.ID,
	})
}

// GET /api/boards/{id}
func (h *BoardsHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	board, role, err := h.engine.Board(r.Context(), user.ID, boardID, access.ActionView)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	view, err := h.view(r, board, role, user.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, view)
}

// PUT /api/boards/{id}
func (h *BoardsHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	board, role, err := h.engine.Board(r.Context(), user.ID, boardID, access.ActionEdit)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	var req models.BoardUpdateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"title": req.Title}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	if req.Title != nil {
		board.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Color != nil {
		board.Color = *req.Color
	}
	if req.IconID != nil {
		board.IconID = req.IconID
	}
	if err := h.db.UpdateBoard(r.Context(), board); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	view, err := h.view(r, board, role, user.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, view)
}

// DELETE /api/boards/{id}
// Lists, cards, comments and access rows go with the board.
func (h *BoardsHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if _, _, err := h.engine.Board(r.Context(), user.ID, boardID, access.ActionDelete); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := h.db.DeleteBoard(r.Context(), boardID); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteNoContentResponse(w)
}

func (h *BoardsHandler) view(r *http.Request, board *models.Board, role models.Role, userID string) (models.BoardView, error) {
	view := models.BoardView{Board: *board, UserRole: role}

	owner, err := h.db.GetUserByID(r.Context(), board.OwnerID)
	if err != nil {
		return view, err
	}
	view.Owner = owner.Summary()

	a, err := h.db.GetBoardAccessByUser(r.Context(), board.ID, userID)
	switch {
	case err == nil:
		view.AccessID = &a.ID
	case !errors.Is(err, utils.ErrNotFound):
		return view, err
	}
	return view, nil
}

package handlers

import (
	"net/http"
	"strings"

	"task-tracker-backend/pkg/access"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

type ListsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	engine *access.Engine
}

func NewListsHandler(cfg *config.Config, db database.DatabaseInterface, engine *access.Engine) *ListsHandler {
	return &ListsHandler{config: cfg, db: db, engine: engine}
}

// GET /api/lists?board={boardId}
// Without a board filter, lists of every board the caller can view.
func (h *ListsHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID := strings.TrimSpace(utils.GetQueryParam(r, "board", ""))
	if boardID == "" {
		lists, err := h.db.ListListsForUser(r.Context(), user.ID)
		if err != nil {
			utils.WriteAppError(w, err)
			return
		}
		utils.WriteSuccessResponse(w, lists)
		return
	}

	if _, _, err := h.engine.Board(r.Context(), user.ID, boardID, access.ActionView); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	lists, err := h.db.ListListsByBoard(r.Context(), boardID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, lists)
}

// POST /api/lists
func (h *ListsHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ListCreateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"title": &req.Title}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	board, _, err := h.engine.Board(r.Context(), user.ID, req.BoardID, access.ActionEdit)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	list := &models.List{Title: strings.TrimSpace(req.Title), BoardID: board.ID}
	if err := h.db.CreateList(r.Context(), list); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, list)
}

// GET /api/lists/{id}
func (h *ListsHandler) GetList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	list, err := h.engine.List(r.Context(), user.ID, listID, access.ActionView)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, list)
}

// PUT /api/lists/{id}
// Moving a list to another board needs edit rights on both boards, and every
// assignee on its cards must have view access to the destination.
func (h *ListsHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	list, err := h.engine.List(r.Context(), user.ID, listID, access.ActionEdit)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	var req models.ListUpdateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"title": req.Title, "board_id": req.BoardID}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	if req.BoardID != nil && *req.BoardID != list.BoardID {
		target, _, err := h.engine.Board(r.Context(), user.ID, *req.BoardID, access.ActionEdit)
		if err != nil {
			utils.WriteAppError(w, err)
			return
		}

		// assignees travel with their cards and must be able to see the new board
		cards, err := h.db.ListCardsByList(r.Context(), list.ID)
		if err != nil {
			utils.WriteAppError(w, err)
			return
		}
		if err := h.engine.ValidateAssignees(r.Context(), target.ID, "board_id", cards); err != nil {
			utils.WriteAppError(w, err)
			return
		}
		list.BoardID = target.ID
	}
	if req.Title != nil {
		list.Title = strings.TrimSpace(*req.Title)
	}

	if err := h.db.UpdateList(r.Context(), list); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, list)
}

// DELETE /api/lists/{id}
func (h *ListsHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.engine.List(r.Context(), user.ID, listID, access.ActionDelete); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := h.db.DeleteList(r.Context(), listID); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteNoContentResponse(w)
}

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

type CommentsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	engine *access.Engine
}

func NewCommentsHandler(cfg *config.Config, db database.DatabaseInterface, engine *access.Engine) *CommentsHandler {
	return &CommentsHandler{config: cfg, db: db, engine: engine}
}

// GET /api/comments/card/{cardId}
func (h *CommentsHandler) ListByCard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathParam(w, r, "cardId")
	if !ok {
		return
	}

	if _, err := h.engine.Card(r.Context(), user.ID, cardID, access.ActionView); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	comments, err := h.db.ListCommentsByCard(r.Context(), cardID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, comments)
}

// POST /api/comments
// Any board member, viewers included, may comment.
func (h *CommentsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CommentCreateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"text": &req.Text}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	card, err := h.engine.Card(r.Context(), user.ID, req.CardID, access.ActionComment)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	comment := &models.Comment{
		Text:   strings.TrimSpace(req.Text),
		CardID: card.ID,
		UserID: user.ID,
	}
	if err := h.db.CreateComment(r.Context(), comment); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	comment.BoardID = card.BoardID
	author := user.Summary()
	comment.Author = &author
	utils.WriteCreatedResponse(w, comment)
}

// GET /api/comments/{id}
func (h *CommentsHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	commentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	comment, _, err := h.engine.Comment(r.Context(), user.ID, commentID, access.ActionView)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, comment)
}

// PUT /api/comments/{id}
// Only the author may edit.
func (h *CommentsHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	commentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	comment, err := h.engine.CommentForUpdate(r.Context(), user.ID, commentID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	var req models.CommentUpdateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"text": &req.Text}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	comment.Text = strings.TrimSpace(req.Text)
	if err := h.db.UpdateComment(r.Context(), comment); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, comment)
}

// DELETE /api/comments/{id}
// The author or the board owner may delete.
func (h *CommentsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	commentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.engine.CommentForDelete(r.Context(), user.ID, commentID); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := h.db.DeleteComment(r.Context(), commentID); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteNoContentResponse(w)
}

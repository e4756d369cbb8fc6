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

type CardsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	engine *access.Engine
}

func NewCardsHandler(cfg *config.Config, db database.DatabaseInterface, engine *access.Engine) *CardsHandler {
	return &CardsHandler{config: cfg, db: db, engine: engine}
}

// GET /api/cards?list={listId}
// Without a list filter, cards of every board the caller can view.
func (h *CardsHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	listID := strings.TrimSpace(utils.GetQueryParam(r, "list", ""))
	if listID == "" {
		cards, err := h.db.ListCardsForUser(r.Context(), user.ID)
		if err != nil {
			utils.WriteAppError(w, err)
			return
		}
		utils.WriteSuccessResponse(w, cards)
		return
	}

	if _, err := h.engine.List(r.Context(), user.ID, listID, access.ActionView); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	cards, err := h.db.ListCardsByList(r.Context(), listID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, cards)
}

// POST /api/cards
func (h *CardsHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CardCreateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"title": &req.Title}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	list, err := h.engine.List(r.Context(), user.ID, req.ListID, access.ActionEdit)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	card := &models.Card{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ListID:      list.ID,
		BoardID:     list.BoardID,
		AssigneeID:  trimmedOrNil(req.AssigneeID),
	}
	if card.AssigneeID != nil {
		if err := h.engine.ValidateAssignee(r.Context(), card.BoardID, *card.AssigneeID); err != nil {
			utils.WriteAppError(w, err)
			return
		}
	}

	if err := h.db.CreateCard(r.Context(), card); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, card)
}

// GET /api/cards/{id}
func (h *CardsHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	card, err := h.engine.Card(r.Context(), user.ID, cardID, access.ActionView)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, card)
}

// PUT /api/cards/{id}
// Moving a card re-checks edit rights on the destination list, and the
// assignee (new or kept) must be able to view the destination board.
func (h *CardsHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	card, err := h.engine.Card(r.Context(), user.ID, cardID, access.ActionEdit)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	var req models.CardUpdateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := nonBlank(map[string]*string{"title": req.Title, "list_id": req.ListID}); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	moved := false
	if req.ListID != nil && *req.ListID != card.ListID {
		target, err := h.engine.List(r.Context(), user.ID, *req.ListID, access.ActionEdit)
		if err != nil {
			utils.WriteAppError(w, err)
			return
		}
		moved = target.BoardID != card.BoardID
		card.ListID = target.ID
		card.BoardID = target.BoardID
	}

	if req.Title != nil {
		card.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		card.Description = *req.Description
	}

	checkAssignee := moved
	if req.AssigneeID != nil {
		card.AssigneeID = trimmedOrNil(req.AssigneeID)
		checkAssignee = true
	}
	if checkAssignee && card.AssigneeID != nil {
		if err := h.engine.ValidateAssignee(r.Context(), card.BoardID, *card.AssigneeID); err != nil {
			utils.WriteAppError(w, err)
			return
		}
	}

	if err := h.db.UpdateCard(r.Context(), card); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, card)
}

// DELETE /api/cards/{id}
func (h *CardsHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.engine.Card(r.Context(), user.ID, cardID, access.ActionDelete); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	if err := h.db.DeleteCard(r.Context(), cardID); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteNoContentResponse(w)
}

// trimmedOrNil maps nil and blank ids to nil
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

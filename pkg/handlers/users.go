package handlers

import (
	"net/http"

	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/utils"
)

type UsersHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

func NewUsersHandler(cfg *config.Config, db database.DatabaseInterface) *UsersHandler {
	return &UsersHandler{config: cfg, db: db}
}

const maxUserResults = 20

// GET /api/users?id=&email=&name=
// Used by the member picker; returns at most 20 users.
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	limit := utils.GetQueryInt(r, "limit", maxUserResults)
	if limit <= 0 || limit > maxUserResults {
		limit = maxUserResults
	}

	users, err := h.db.SearchUsers(r.Context(), database.UserFilter{
		ID:    utils.GetQueryParam(r, "id", ""),
		Email: normalizeEmail(utils.GetQueryParam(r, "email", "")),
		Name:  utils.GetQueryParam(r, "name", ""),
		Limit: uint64(limit),
	})
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, users)
}

// GET /api/users/{id}
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, user)
}

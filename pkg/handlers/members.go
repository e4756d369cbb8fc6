package handlers

import (
	"net/http"

	"task-tracker-backend/pkg/access"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

type MembersHandler struct {
	config  *config.Config
	members *access.Membership
}

func NewMembersHandler(cfg *config.Config, members *access.Membership) *MembersHandler {
	return &MembersHandler{config: cfg, members: members}
}

// GET /api/boards/{id}/members
func (h *MembersHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	members, err := h.members.ListMembers(r.Context(), boardID, user.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, members)
}

// POST /api/boards/{id}/members
func (h *MembersHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	// Role and target are validated by AddMember after the admin check.
	var req models.MemberAddRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	ref := access.MemberRef{Email: normalizeEmail(req.Email), UserID: req.UserID}
	member, err := h.members.AddMember(r.Context(), boardID, user.ID, ref, req.Role)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, member)
}

// PUT /api/boards/{id}/members/{memberId}
func (h *MembersHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	accessID, ok := pathParam(w, r, "memberId")
	if !ok {
		return
	}

	var req models.MemberUpdateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	a, err := h.members.UpdateMemberRole(r.Context(), boardID, user.ID, accessID, req.Role)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, a)
}

// DELETE /api/boards/{id}/members/{memberId}
func (h *MembersHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	accessID, ok := pathParam(w, r, "memberId")
	if !ok {
		return
	}

	if err := h.members.RemoveMember(r.Context(), boardID, user.ID, accessID); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteNoContentResponse(w)
}

package handlers

import (
	"net/http"
	"strings"

	chiRoute "github.com/go-chi/chi/v5"
	"task-tracker-backend/pkg/middleware"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

// currentUser returns the authenticated user or writes 401
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteAppError(w, err)
		return nil, false
	}
	return user, true
}

// pathParam returns a trimmed URL parameter or writes 400 when it is empty
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(chiRoute.URLParam(r, name))
	if v == "" {
		utils.WriteAppError(w, utils.NewValidationError(name, name+" is required"))
		return "", false
	}
	return v, true
}

// nonBlank rejects patch fields that are present but only whitespace
func nonBlank(fields map[string]*string) error {
	errs := utils.ValidationError{}
	for name, v := range fields {
		if v != nil && strings.TrimSpace(*v) == "" {
			errs[name] = name + " cannot be blank"
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

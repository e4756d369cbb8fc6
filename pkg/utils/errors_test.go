package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-tracker-backend/pkg/logging"
)

func TestWriteAppError(t *testing.T) {
	logging.SetWriter(io.Discard)

	samples := [...]struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", Forbiddenf("You do not have %s access to this board", "edit"), http.StatusForbidden, "You do not have edit access to this board"},
		{"bare forbidden", ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"not found", NotFoundf("Board not found"), http.StatusNotFound, "Board not found"},
		{"wrapped not found", fmt.Errorf("load: %w", NotFoundf("Card not found")), http.StatusNotFound, "Card not found"},
		{"conflict", Conflictf("User already has access to this board"), http.StatusConflict, "User already has access to this board"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, s := range samples {
		rec := httptest.NewRecorder()
		WriteAppError(rec, s.err)

		if rec.Code != s.status {
			t.Errorf("%s: expected %d, got %d", s.name, s.status, rec.Code)
			continue
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Errorf("%s: %v", s.name, err)
			continue
		}
		if body.Error != s.msg {
			t.Errorf("%s: expected %q, got %q", s.name, s.msg, body.Error)
		}
	}
}

func TestWriteAppErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, fmt.Errorf("card: %w", NewValidationError("assignee_id", "bad")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Errors["assignee_id"] != "bad" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	err := ValidateStruct(&request{Email: "nope", Password: "123"})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr["email"] == "" || verr["password"] == "" {
		t.Fatalf("expected json field names, got %v", verr)
	}

	if err := ValidateStruct(&request{Email: "a@b.co", Password: "secret"}); err != nil {
		t.Fatal(err)
	}
}

func TestParseJSONBodyErrors(t *testing.T) {
	t.Parallel()

	samples := [...]struct {
		body     string
		limit    int64
		expected string
	}{
		{"", 64, "request body is empty"},
		{"{", 64, "invalid JSON"},
		{`{"title":"` + strings.Repeat("x", 64) + `"}`, 16, "request body exceeds 16 bytes"},
	}

	for _, s := range samples {
		req := httptest.NewRequest(http.MethodPost, "/api/boards", strings.NewReader(s.body))
		req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, s.limit)

		var v map[string]string
		err := ParseJSONBody(req, &v)
		var verr ValidationError
		if !errors.As(err, &verr) || !strings.Contains(verr["body"], s.expected) {
			t.Errorf("body %q: expected %q, got %v", s.body, s.expected, err)
		}
	}
}

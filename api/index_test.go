package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/logging"
	"task-tracker-backend/pkg/models"
)

type testServer struct {
	t      *testing.T
	router *chi.Mux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logging.SetWriter(io.Discard)

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Environment:    "test",
		Port:           "0",
		SQLitePath:     ":memory:",
		JWTSecret:      "test-secret",
		AllowedOrigins: []string{"*"},
		RequestTimeout: 10 * time.Second,
		MaxBodyBytes:   1 << 20,
	}
	return &testServer{t: t, router: NewRouter(cfg, db)}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out interface{}) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
}

func (s *testServer) register(email string) (models.UserSummary, string) {
	s.t.Helper()
	var resp models.UserLoginResponse
	s.expect(s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     strings.Split(email, "@")[0],
	}), http.StatusCreated, &resp)
	if resp.Token == "" {
		s.t.Fatal("register returned no token")
	}
	return resp.User, resp.Token
}

func (s *testServer) createBoard(token, title string) models.BoardView {
	s.t.Helper()
	var board models.BoardView
	s.expect(s.do(http.MethodPost, "/api/boards", token, map[string]string{"title": title}), http.StatusCreated, &board)
	return board
}

func (s *testServer) addMember(token, boardID, email, role string) models.BoardMember {
	s.t.Helper()
	var m models.BoardMember
	s.expect(s.do(http.MethodPost, "/api/boards/"+boardID+"/members", token,
		map[string]string{"email": email, "role": role}), http.StatusCreated, &m)
	return m
}

func TestViewerPromotedToEditor(t *testing.T) {
	s := newTestServer(t)

	_, ownerToken := s.register("alice@example.com")
	_, carolToken := s.register("carol@example.com")
	_, _ = s.register("dave@example.com")

	board := s.createBoard(ownerToken, "Launch")
	if board.UserRole != models.RoleAdmin || board.AccessID == nil {
		t.Fatalf("creator must get an admin row: %+v", board)
	}

	member := s.addMember(ownerToken, board.ID, "carol@example.com", "viewer")
	if member.Role != models.RoleViewer {
		t.Fatalf("unexpected role %s", member.Role)
	}

	rename := map[string]string{"title": "Launch v2"}
	s.expect(s.do(http.MethodPut, "/api/boards/"+board.ID, carolToken, rename), http.StatusForbidden, nil)

	var updated models.BoardAccess
	s.expect(s.do(http.MethodPut, "/api/boards/"+board.ID+"/members/"+member.ID, ownerToken,
		map[string]string{"role": "editor"}), http.StatusOK, &updated)
	if updated.Role != models.RoleEditor {
		t.Fatalf("expected editor, got %s", updated.Role)
	}

	var renamed models.Board
	s.expect(s.do(http.MethodPut, "/api/boards/"+board.ID, carolToken, rename), http.StatusOK, &renamed)
	if renamed.Title != "Launch v2" {
		t.Fatalf("title not updated: %s", renamed.Title)
	}

	// editors cannot manage membership
	s.expect(s.do(http.MethodPost, "/api/boards/"+board.ID+"/members", carolToken,
		map[string]string{"email": "dave@example.com", "role": "viewer"}), http.StatusForbidden, nil)
}

func TestUnauthenticatedRequestsAreUniform(t *testing.T) {
	s := newTestServer(t)

	_, token := s.register("alice@example.com")
	board := s.createBoard(token, "Private")

	existing := s.do(http.MethodGet, "/api/boards/"+board.ID, "", nil)
	missing := s.do(http.MethodGet, "/api/boards/does-not-exist", "", nil)
	forged := s.do(http.MethodGet, "/api/boards/"+board.ID, "not-a-token", nil)

	for _, rec := range []*httptest.ResponseRecorder{existing, missing, forged} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if rec.Body.String() != existing.Body.String() {
			t.Fatalf("401 bodies differ: %q vs %q", rec.Body.String(), existing.Body.String())
		}
	}
	if !strings.Contains(existing.Body.String(), `"Unauthorized"`) {
		t.Fatalf("unexpected body: %s", existing.Body.String())
	}
}

func TestNotFoundBeforeForbidden(t *testing.T) {
	s := newTestServer(t)

	_, ownerToken := s.register("alice@example.com")
	_, strangerToken := s.register("eve@example.com")
	board := s.createBoard(ownerToken, "Secret")

	s.expect(s.do(http.MethodGet, "/api/boards/"+board.ID, strangerToken, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/api/boards/does-not-exist", strangerToken, nil), http.StatusNotFound, nil)

	var boards []models.BoardView
	s.expect(s.do(http.MethodGet, "/api/boards", strangerToken, nil), http.StatusOK, &boards)
	if len(boards) != 0 {
		t.Fatalf("stranger sees %d boards", len(boards))
	}
}

func TestAssigneeMustHaveAccess(t *testing.T) {
	s := newTestServer(t)

	_, ownerToken := s.register("alice@example.com")
	dave, _ := s.register("dave@example.com")
	board := s.createBoard(ownerToken, "Sprint")

	var list models.List
	s.expect(s.do(http.MethodPost, "/api/lists", ownerToken,
		map[string]string{"title": "Todo", "board_id": board.ID}), http.StatusCreated, &list)

	var verr struct {
		Errors map[string]string `json:"errors"`
	}
	s.expect(s.do(http.MethodPost, "/api/cards", ownerToken, map[string]string{
		"title":       "Ship it",
		"list_id":     list.ID,
		"assignee_id": dave.ID,
	}), http.StatusBadRequest, &verr)
	if msg := verr.Errors["assignee_id"]; !strings.Contains(msg, "dave@example.com") {
		t.Fatalf("message must name the user: %q", msg)
	}

	s.addMember(ownerToken, board.ID, "dave@example.com", "viewer")

	var card models.Card
	s.expect(s.do(http.MethodPost, "/api/cards", ownerToken, map[string]string{
		"title":       "Ship it",
		"list_id":     list.ID,
		"assignee_id": dave.ID,
	}), http.StatusCreated, &card)
	if card.AssigneeID == nil || *card.AssigneeID != dave.ID || card.BoardID != board.ID {
		t.Fatalf("unexpected card: %+v", card)
	}
}

func TestMembershipRules(t *testing.T) {
	s := newTestServer(t)

	_, ownerToken := s.register("alice@example.com")
	_, bobToken := s.register("bob@example.com")
	board := s.createBoard(ownerToken, "Ops")

	s.addMember(ownerToken, board.ID, "bob@example.com", "viewer")

	// duplicate membership
	s.expect(s.do(http.MethodPost, "/api/boards/"+board.ID+"/members", ownerToken,
		map[string]string{"email": "bob@example.com", "role": "editor"}), http.StatusConflict, nil)

	// unknown user
	s.expect(s.do(http.MethodPost, "/api/boards/"+board.ID+"/members", ownerToken,
		map[string]string{"email": "ghost@example.com", "role": "viewer"}), http.StatusNotFound, nil)

	// last admin row
	s.expect(s.do(http.MethodDelete, "/api/boards/"+board.ID+"/members/"+*board.AccessID, ownerToken, nil),
		http.StatusBadRequest, nil)

	var members []models.BoardMember
	s.expect(s.do(http.MethodGet, "/api/boards/"+board.ID+"/members", bobToken, nil), http.StatusOK, &members)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
}

func TestCommentsAndDeletion(t *testing.T) {
	s := newTestServer(t)

	_, ownerToken := s.register("alice@example.com")
	_, viewerToken := s.register("vic@example.com")
	board := s.createBoard(ownerToken, "Team")
	s.addMember(ownerToken, board.ID, "vic@example.com", "viewer")

	var list models.List
	s.expect(s.do(http.MethodPost, "/api/lists", ownerToken,
		map[string]string{"title": "Doing", "board_id": board.ID}), http.StatusCreated, &list)
	var card models.Card
	s.expect(s.do(http.MethodPost, "/api/cards", ownerToken,
		map[string]string{"title": "Review", "list_id": list.ID}), http.StatusCreated, &card)

	// viewers may comment but not edit cards
	var comment models.Comment
	s.expect(s.do(http.MethodPost, "/api/comments", viewerToken,
		map[string]string{"text": "looks good", "card_id": card.ID}), http.StatusCreated, &comment)
	if comment.Author == nil || comment.Author.Email != "vic@example.com" {
		t.Fatalf("missing author: %+v", comment)
	}
	s.expect(s.do(http.MethodPut, "/api/cards/"+card.ID, viewerToken,
		map[string]string{"title": "Hijacked"}), http.StatusForbidden, nil)

	// only the author edits; the owner may delete
	s.expect(s.do(http.MethodPut, "/api/comments/"+comment.ID, ownerToken,
		map[string]string{"text": "edited"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodDelete, "/api/comments/"+comment.ID, ownerToken, nil), http.StatusNoContent, nil)

	// deleting the board cascades to its lists and cards
	s.expect(s.do(http.MethodDelete, "/api/boards/"+board.ID, ownerToken, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/api/cards/"+card.ID, ownerToken, nil), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodGet, "/api/lists/"+list.ID, ownerToken, nil), http.StatusNotFound, nil)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")

	var resp models.UserLoginResponse
	s.expect(s.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "Alice@Example.com", "password": "password123"}), http.StatusOK, &resp)

	var me models.User
	s.expect(s.do(http.MethodGet, "/api/auth/me", resp.Token, nil), http.StatusOK, &me)
	if me.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", me)
	}

	s.expect(s.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}), http.StatusUnauthorized, nil)

	s.expect(s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}), http.StatusConflict, nil)
}

func TestUserSearch(t *testing.T) {
	s := newTestServer(t)

	_, token := s.register("alice@example.com")
	bob, _ := s.register("bob@example.com")
	s.register("bobby@example.com")

	samples := [...]struct {
		query    string
		expected int
	}{
		{"", 3},
		{"?name=BOB", 2},
		{"?email=Bob@Example.com", 1},
		{"?id=" + bob.ID, 1},
		{"?name=nobody", 0},
		{"?limit=1", 1},
	}

	for _, sample := range samples {
		var users []models.User
		s.expect(s.do(http.MethodGet, "/api/users"+sample.query, token, nil), http.StatusOK, &users)
		if len(users) != sample.expected {
			t.Errorf("%q: expected %d users, got %d", sample.query, sample.expected, len(users))
		}
		for _, u := range users {
			if u.Password != "" {
				t.Fatal("password hash leaked")
			}
		}
	}

	var got models.User
	s.expect(s.do(http.MethodGet, "/api/users/"+bob.ID, token, nil), http.StatusOK, &got)
	if got.Email != bob.Email {
		t.Fatalf("unexpected user: %+v", got)
	}
	s.expect(s.do(http.MethodGet, "/api/users/missing", token, nil), http.StatusNotFound, nil)
}

func TestListMoveChecksAssignees(t *testing.T) {
	s := newTestServer(t)

	_, aliceToken := s.register("alice@example.com")
	dave, _ := s.register("dave@example.com")
	one := s.createBoard(aliceToken, "One")
	two := s.createBoard(aliceToken, "Two")
	s.addMember(aliceToken, one.ID, "dave@example.com", "viewer")

	var list models.List
	s.expect(s.do(http.MethodPost, "/api/lists", aliceToken,
		map[string]string{"title": "Todo", "board_id": one.ID}), http.StatusCreated, &list)
	var card models.Card
	s.expect(s.do(http.MethodPost, "/api/cards", aliceToken, map[string]string{
		"title":       "Ship it",
		"list_id":     list.ID,
		"assignee_id": dave.ID,
	}), http.StatusCreated, &card)

	var verr struct {
		Errors map[string]string `json:"errors"`
	}
	move := map[string]string{"board_id": two.ID}
	s.expect(s.do(http.MethodPut, "/api/lists/"+list.ID, aliceToken, move), http.StatusBadRequest, &verr)
	if msg := verr.Errors["board_id"]; !strings.Contains(msg, "dave@example.com") {
		t.Fatalf("message must name the assignee: %q", msg)
	}

	var got models.Card
	s.expect(s.do(http.MethodGet, "/api/cards/"+card.ID, aliceToken, nil), http.StatusOK, &got)
	if got.BoardID != one.ID {
		t.Fatalf("card moved despite rejection: %s", got.BoardID)
	}

	s.addMember(aliceToken, two.ID, "dave@example.com", "viewer")
	var moved models.List
	s.expect(s.do(http.MethodPut, "/api/lists/"+list.ID, aliceToken, move), http.StatusOK, &moved)
	s.expect(s.do(http.MethodGet, "/api/cards/"+card.ID, aliceToken, nil), http.StatusOK, &got)
	if moved.BoardID != two.ID || got.BoardID != two.ID {
		t.Fatalf("list not moved: list=%s card=%s", moved.BoardID, got.BoardID)
	}
}

func TestListingWithoutFilter(t *testing.T) {
	s := newTestServer(t)

	_, aliceToken := s.register("alice@example.com")
	_, bobToken := s.register("bob@example.com")
	mine := s.createBoard(aliceToken, "Mine")
	shared := s.createBoard(bobToken, "Shared")
	private := s.createBoard(bobToken, "Private")
	s.addMember(bobToken, shared.ID, "alice@example.com", "viewer")

	for _, b := range []models.BoardView{mine, shared, private} {
		token := aliceToken
		if b.OwnerID != mine.OwnerID {
			token = bobToken
		}
		var list models.List
		s.expect(s.do(http.MethodPost, "/api/lists", token,
			map[string]string{"title": b.Title, "board_id": b.ID}), http.StatusCreated, &list)
		s.expect(s.do(http.MethodPost, "/api/cards", token,
			map[string]string{"title": b.Title, "list_id": list.ID}), http.StatusCreated, nil)
	}

	var lists []models.List
	s.expect(s.do(http.MethodGet, "/api/lists", aliceToken, nil), http.StatusOK, &lists)
	var cards []models.Card
	s.expect(s.do(http.MethodGet, "/api/cards", aliceToken, nil), http.StatusOK, &cards)

	if len(lists) != 2 || len(cards) != 2 {
		t.Fatalf("expected 2 lists and 2 cards, got %d and %d", len(lists), len(cards))
	}
	for _, c := range cards {
		if c.BoardID == private.ID {
			t.Fatal("card from a board without access")
		}
	}

	// filtered listing still checks access
	var bobLists []models.List
	s.expect(s.do(http.MethodGet, "/api/lists?board="+private.ID, bobToken, nil), http.StatusOK, &bobLists)
	s.expect(s.do(http.MethodGet, "/api/lists?board="+private.ID, aliceToken, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/api/cards?list="+bobLists[0].ID, aliceToken, nil), http.StatusForbidden, nil)
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsharma/prepdesk/internal/auth"
	"github.com/rsharma/prepdesk/internal/model"
	"github.com/rsharma/prepdesk/internal/store"
)

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
	auth  *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	a, err := auth.New("test-secret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}

	r := chi.NewRouter()
	New(s, a).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: s, auth: a}
}

// tokenFor creates a user with the given role and returns a bearer token.
func (e *testEnv) tokenFor(t *testing.T, email string, role model.Role) string {
	t.Helper()
	hash, err := e.auth.HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	id, err := e.store.CreateUser(model.User{
		Name: "Test " + string(role), Email: email, PasswordHash: hash, Role: role,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := e.auth.IssueToken(id)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestSignupAndLogin(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "s3cret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", resp.StatusCode)
	}
	signup := decode[struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}](t, resp)
	if signup.Token == "" {
		t.Error("expected a token from signup")
	}
	if signup.User.Role != model.RoleUser {
		t.Errorf("expected role user, got %q", signup.User.Role)
	}

	// Duplicate email conflicts and creates no second row.
	resp = e.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"name": "Other", "email": "asha@example.com", "password": "other",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", resp.StatusCode)
	}
	count, _ := e.store.UserCount()
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}

	// Missing fields.
	resp = e.do(t, "POST", "/api/auth/signup", "", map[string]string{"email": "x@example.com"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("incomplete signup: expected 400, got %d", resp.StatusCode)
	}

	// Wrong password issues no token.
	resp = e.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", resp.StatusCode)
	}

	resp = e.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "s3cret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	login := decode[struct {
		Token string `json:"token"`
	}](t, resp)

	// Profile round trip.
	resp = e.do(t, "GET", "/api/auth/profile", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.StatusCode)
	}
	profile := decode[model.User](t, resp)
	if profile.Email != "asha@example.com" {
		t.Errorf("unexpected profile email %q", profile.Email)
	}

	resp = e.do(t, "GET", "/api/auth/profile", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("profile without token: expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthGuard(t *testing.T) {
	e := newTestEnv(t)

	// Garbage token.
	resp := e.do(t, "GET", "/api/auth/profile", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token: expected 401, got %d", resp.StatusCode)
	}

	// Valid token for a user that does not exist resolves to forbidden.
	token, err := e.auth.IssueToken(9999)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	resp = e.do(t, "GET", "/api/auth/profile", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("unknown user: expected 403, got %d", resp.StatusCode)
	}
}

func TestMockTestWorkflow(t *testing.T) {
	e := newTestEnv(t)
	examID, err := e.store.InsertExam(model.Exam{Name: "SSC CGL"})
	if err != nil {
		t.Fatalf("InsertExam: %v", err)
	}

	userTok := e.tokenFor(t, "user@example.com", model.RoleUser)
	editorTok := e.tokenFor(t, "editor@example.com", model.RoleEditor)
	publisherTok := e.tokenFor(t, "publisher@example.com", model.RolePublisher)

	body := map[string]any{
		"exam_id": examID, "title": "Tier 1 Mock", "duration_minutes": 60,
		"total_marks": 4, "negative_marking": 0.5,
	}

	// Candidates cannot create mock tests.
	resp := e.do(t, "POST", "/mock_tests", userTok, body)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("create as user: expected 403, got %d", resp.StatusCode)
	}

	// No token at all.
	resp = e.do(t, "POST", "/mock_tests", "", body)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("create without token: expected 401, got %d", resp.StatusCode)
	}

	// Editors can, and the new test starts as a draft.
	resp = e.do(t, "POST", "/mock_tests", editorTok, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create as editor: expected 201, got %d", resp.StatusCode)
	}
	created := decode[model.MockTest](t, resp)
	if created.ID == 0 {
		t.Error("expected a new identifier")
	}
	if created.Status != model.StatusDraft {
		t.Errorf("expected draft status, got %q", created.Status)
	}

	// Missing fields.
	resp = e.do(t, "POST", "/mock_tests", editorTok, map[string]any{"title": "no exam"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("incomplete create: expected 400, got %d", resp.StatusCode)
	}

	// Draft listing is role-gated; editors cannot see it.
	resp = e.do(t, "GET", "/mock_tests", editorTok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("draft list as editor: expected 403, got %d", resp.StatusCode)
	}
	resp = e.do(t, "GET", "/mock_tests", publisherTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("draft list as publisher: expected 200, got %d", resp.StatusCode)
	}
	drafts := decode[[]model.MockTest](t, resp)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}

	// Drafts are not publicly visible.
	resp = e.do(t, "GET", "/exams/1/mock_tests", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public list: expected 200, got %d", resp.StatusCode)
	}
	public := decode[[]model.MockTest](t, resp)
	if len(public) != 0 {
		t.Errorf("expected no live mock tests yet, got %d", len(public))
	}

	// Editors cannot publish.
	statusBody := map[string]string{"status": "approved"}
	path := "/mock_tests/1/status"
	resp = e.do(t, "PATCH", path, editorTok, statusBody)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("publish as editor: expected 403, got %d", resp.StatusCode)
	}

	// Publishers can; "approved" maps to live.
	resp = e.do(t, "PATCH", path, publisherTok, statusBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d", resp.StatusCode)
	}
	updated := decode[struct {
		Status model.Status `json:"status"`
	}](t, resp)
	if updated.Status != model.StatusLive {
		t.Errorf("expected live, got %q", updated.Status)
	}

	// Re-approving an already-live test still succeeds.
	resp = e.do(t, "PATCH", path, publisherTok, map[string]string{"status": "live"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("idempotent publish: expected 200, got %d", resp.StatusCode)
	}
	mt, _ := e.store.GetMockTest(1)
	if mt.Status != model.StatusLive {
		t.Errorf("expected live after repeat, got %q", mt.Status)
	}

	// Unknown status values change nothing.
	resp = e.do(t, "PATCH", path, publisherTok, map[string]string{"status": "published"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid status: expected 400, got %d", resp.StatusCode)
	}
	mt, _ = e.store.GetMockTest(1)
	if mt.Status != model.StatusLive {
		t.Errorf("expected state unchanged, got %q", mt.Status)
	}

	// Transition on a nonexistent test.
	resp = e.do(t, "PATCH", "/mock_tests/9999/status", publisherTok, statusBody)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing test: expected 404, got %d", resp.StatusCode)
	}

	// Now publicly visible.
	resp = e.do(t, "GET", "/exams/1/mock_tests", "", nil)
	public = decode[[]model.MockTest](t, resp)
	if len(public) != 1 {
		t.Errorf("expected 1 live mock test, got %d", len(public))
	}
}

func TestQuestionWorkflow(t *testing.T) {
	e := newTestEnv(t)
	examID, _ := e.store.InsertExam(model.Exam{Name: "SSC CGL"})
	mockID, err := e.store.CreateMockTest(model.MockTest{
		ExamID: examID, Title: "M1", DurationMinutes: 60, Status: model.StatusLive,
	})
	if err != nil {
		t.Fatalf("CreateMockTest: %v", err)
	}

	editorTok := e.tokenFor(t, "editor@example.com", model.RoleEditor)
	adminTok := e.tokenFor(t, "admin@example.com", model.RoleAdmin)
	publisherTok := e.tokenFor(t, "publisher@example.com", model.RolePublisher)

	body := map[string]any{
		"mock_id":        mockID,
		"question_text":  "What is 2+2?",
		"options":        map[string]string{"a": "3", "b": "4"},
		"correct_answer": "b",
		"marks":          2,
	}

	resp := e.do(t, "POST", "/questions", editorTok, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create question: expected 201, got %d", resp.StatusCode)
	}
	q := decode[model.Question](t, resp)
	if q.Status != model.StatusDraft {
		t.Errorf("expected draft status, got %q", q.Status)
	}

	// Correct answer must reference an option.
	bad := map[string]any{
		"mock_id": mockID, "question_text": "Q", "options": map[string]string{"a": "1"},
		"correct_answer": "z",
	}
	resp = e.do(t, "POST", "/questions", editorTok, bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad correct_answer: expected 400, got %d", resp.StatusCode)
	}

	// Question for a missing mock test.
	orphan := map[string]any{
		"mock_id": 9999, "question_text": "Q", "options": map[string]string{"a": "1"},
		"correct_answer": "a",
	}
	resp = e.do(t, "POST", "/questions", editorTok, orphan)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("orphan question: expected 404, got %d", resp.StatusCode)
	}

	// Draft questions are hidden from the public list.
	resp = e.do(t, "GET", "/mock_tests/1/questions", "", nil)
	public := decode[[]model.Question](t, resp)
	if len(public) != 0 {
		t.Errorf("expected no live questions, got %d", len(public))
	}

	// Review listing defaults to drafts.
	resp = e.do(t, "GET", "/questions", publisherTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list drafts: expected 200, got %d", resp.StatusCode)
	}
	drafts := decode[[]model.Question](t, resp)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft question, got %d", len(drafts))
	}

	// Approve it.
	resp = e.do(t, "PATCH", "/questions/1/status", publisherTok, map[string]string{"status": "live"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve question: expected 200, got %d", resp.StatusCode)
	}
	resp = e.do(t, "GET", "/mock_tests/1/questions", "", nil)
	public = decode[[]model.Question](t, resp)
	if len(public) != 1 {
		t.Errorf("expected 1 live question, got %d", len(public))
	}

	// Only admins may delete.
	resp = e.do(t, "DELETE", "/questions/1", publisherTok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("delete as publisher: expected 403, got %d", resp.StatusCode)
	}
	resp = e.do(t, "DELETE", "/questions/1", adminTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete as admin: expected 200, got %d", resp.StatusCode)
	}
	resp = e.do(t, "DELETE", "/questions/1", adminTok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("repeat delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestGradeSubmission(t *testing.T) {
	e := newTestEnv(t)
	examID, _ := e.store.InsertExam(model.Exam{Name: "SSC CGL"})
	mockID, err := e.store.CreateMockTest(model.MockTest{
		ExamID: examID, Title: "Tier 1 Mock", DurationMinutes: 60,
		TotalMarks: 4, NegativeMarking: 0.5, Status: model.StatusLive,
	})
	if err != nil {
		t.Fatalf("CreateMockTest: %v", err)
	}
	q1, err := e.store.CreateQuestion(model.Question{
		MockID: mockID, Text: "Q1", Options: map[string]string{"a": "1", "b": "2"},
		CorrectAnswer: "a", Marks: 2, Status: model.StatusLive,
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	q2, err := e.store.CreateQuestion(model.Question{
		MockID: mockID, Text: "Q2", Options: map[string]string{"a": "1", "b": "2"},
		CorrectAnswer: "b", Marks: 2, Status: model.StatusLive,
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	userID, err := e.store.CreateUser(model.User{Name: "Asha", Email: "a@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	type graded struct {
		Result model.Result `json:"result"`
		Graded struct {
			Score            float64 `json:"score"`
			CorrectCount     int     `json:"correct_count"`
			WrongCount       int     `json:"wrong_count"`
			UnattemptedCount int     `json:"unattempted_count"`
			NegativeMarking  float64 `json:"negative_marking"`
		} `json:"graded"`
	}

	// One correct, one wrong: 2 - 0.5 = 1.5.
	resp := e.do(t, "POST", "/results", "", map[string]any{
		"user_id": userID, "mock_id": mockID, "time_taken_minutes": 42,
		"answers": []map[string]any{
			{"question_id": q1, "selected_option": "a"},
			{"question_id": q2, "selected_option": "a"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", resp.StatusCode)
	}
	got := decode[graded](t, resp)
	if got.Graded.Score != 1.5 {
		t.Errorf("expected score 1.5, got %f", got.Graded.Score)
	}
	if got.Graded.CorrectCount != 1 || got.Graded.WrongCount != 1 || got.Graded.UnattemptedCount != 0 {
		t.Errorf("unexpected tallies: %+v", got.Graded)
	}
	if got.Graded.NegativeMarking != 0.5 {
		t.Errorf("expected negative marking 0.5, got %f", got.Graded.NegativeMarking)
	}
	if got.Result.Score != 1.5 || got.Result.TotalMarks != 4 {
		t.Errorf("unexpected persisted result: %+v", got.Result)
	}
	if got.Result.TimeTakenMinutes != 42 {
		t.Errorf("expected time taken 42, got %d", got.Result.TimeTakenMinutes)
	}

	// Omitting a question leaves it unattempted: score stays 2.
	resp = e.do(t, "POST", "/results", "", map[string]any{
		"user_id": userID, "mock_id": mockID,
		"answers": []map[string]any{
			{"question_id": q1, "selected_option": "a"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", resp.StatusCode)
	}
	got = decode[graded](t, resp)
	if got.Graded.Score != 2.0 {
		t.Errorf("expected score 2, got %f", got.Graded.Score)
	}
	if got.Graded.UnattemptedCount != 1 {
		t.Errorf("expected 1 unattempted, got %d", got.Graded.UnattemptedCount)
	}

	// Unknown mock test.
	resp = e.do(t, "POST", "/results", "", map[string]any{
		"user_id": userID, "mock_id": 9999,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown test: expected 404, got %d", resp.StatusCode)
	}

	// Missing required fields.
	resp = e.do(t, "POST", "/results", "", map[string]any{"mock_id": mockID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing user_id: expected 400, got %d", resp.StatusCode)
	}

	// Result history, most recent first, joined with test metadata.
	resp = e.do(t, "GET", "/results/1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list results: expected 200, got %d", resp.StatusCode)
	}
	rows := decode[[]model.ResultRow](t, resp)
	if len(rows) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rows))
	}
	if rows[0].Score != 2.0 {
		t.Errorf("expected newest result first, got score %f", rows[0].Score)
	}
	if rows[0].TestTitle != "Tier 1 Mock" {
		t.Errorf("expected joined title, got %q", rows[0].TestTitle)
	}
}

func TestListExams(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.store.InsertExam(model.Exam{Name: "SSC CGL", Description: "Tier 1"}); err != nil {
		t.Fatalf("InsertExam: %v", err)
	}

	resp := e.do(t, "GET", "/exams", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list exams: expected 200, got %d", resp.StatusCode)
	}
	exams := decode[[]model.Exam](t, resp)
	if len(exams) != 1 || exams[0].Name != "SSC CGL" {
		t.Errorf("unexpected exams: %+v", exams)
	}
}

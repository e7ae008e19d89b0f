package handler

import (
	"net/http"

	"github.com/rsharma/prepdesk/internal/model"
)

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		respondInternal(w, "failed to list exams", err)
		return
	}
	respondJSON(w, http.StatusOK, exams)
}

// handleListExamMockTests lists a single exam's mock tests. Only live
// tests are publicly servable; drafts stay internal.
func (h *Handler) handleListExamMockTests(w http.ResponseWriter, r *http.Request) {
	examID, ok := urlID(r, "examID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid exam ID")
		return
	}
	tests, err := h.store.ListMockTests(examID, model.StatusLive)
	if err != nil {
		respondInternal(w, "failed to list mock tests", err)
		return
	}
	respondJSON(w, http.StatusOK, tests)
}

func (h *Handler) handleListMockTestQuestions(w http.ResponseWriter, r *http.Request) {
	mockID, ok := urlID(r, "mockID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid mock test ID")
		return
	}
	questions, err := h.store.ListQuestions(mockID, model.StatusLive)
	if err != nil {
		respondInternal(w, "failed to list questions", err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// handleListMockTestsByStatus is the review-side listing; the status
// filter defaults to draft.
func (h *Handler) handleListMockTestsByStatus(w http.ResponseWriter, r *http.Request) {
	status := model.StatusDraft
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := model.ParseStatus(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}
	tests, err := h.store.ListMockTests(0, status)
	if err != nil {
		respondInternal(w, "failed to list mock tests", err)
		return
	}
	respondJSON(w, http.StatusOK, tests)
}

type createMockTestRequest struct {
	ExamID          int64   `json:"exam_id"`
	Title           string  `json:"title"`
	DurationMinutes int     `json:"duration_minutes"`
	Difficulty      string  `json:"difficulty"`
	TotalMarks      float64 `json:"total_marks"`
	NegativeMarking float64 `json:"negative_marking"`
}

func (h *Handler) handleCreateMockTest(w http.ResponseWriter, r *http.Request) {
	var req createMockTestRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExamID == 0 || req.Title == "" || req.DurationMinutes <= 0 {
		respondError(w, http.StatusBadRequest, "exam_id, title and duration_minutes are required")
		return
	}

	// New content always starts as a draft regardless of who creates it.
	id, err := h.store.CreateMockTest(model.MockTest{
		ExamID:          req.ExamID,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Difficulty:      req.Difficulty,
		TotalMarks:      req.TotalMarks,
		NegativeMarking: req.NegativeMarking,
		Status:          model.StatusDraft,
	})
	if err != nil {
		respondInternal(w, "failed to create mock test", err)
		return
	}

	mt, err := h.store.GetMockTest(id)
	if err != nil || mt == nil {
		respondInternal(w, "failed to load created mock test", err)
		return
	}
	respondJSON(w, http.StatusCreated, mt)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleMockTestStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid mock test ID")
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mt, err := h.store.GetMockTest(id)
	if err != nil {
		respondInternal(w, "failed to load mock test", err)
		return
	}
	if mt == nil {
		respondError(w, http.StatusNotFound, "mock test not found")
		return
	}

	// The transition is idempotent: re-applying the current status
	// still succeeds.
	if _, err := h.store.UpdateMockTestStatus(id, status); err != nil {
		respondInternal(w, "failed to update mock test status", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (h *Handler) handleListQuestionsByStatus(w http.ResponseWriter, r *http.Request) {
	status := model.StatusDraft
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := model.ParseStatus(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}
	var mockID int64
	if m := r.URL.Query().Get("mock_id"); m != "" {
		id, ok := parsePositiveInt(m)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid mock_id")
			return
		}
		mockID = id
	}
	questions, err := h.store.ListQuestions(mockID, status)
	if err != nil {
		respondInternal(w, "failed to list questions", err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

type createQuestionRequest struct {
	MockID        int64             `json:"mock_id"`
	Text          string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Marks         float64           `json:"marks"`
}

func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MockID == 0 || req.Text == "" || len(req.Options) == 0 || req.CorrectAnswer == "" {
		respondError(w, http.StatusBadRequest, "mock_id, question_text, options and correct_answer are required")
		return
	}
	if _, ok := req.Options[req.CorrectAnswer]; !ok {
		respondError(w, http.StatusBadRequest, "correct_answer must be one of the option keys")
		return
	}

	mt, err := h.store.GetMockTest(req.MockID)
	if err != nil {
		respondInternal(w, "failed to load mock test", err)
		return
	}
	if mt == nil {
		respondError(w, http.StatusNotFound, "mock test not found")
		return
	}

	marks := req.Marks
	if marks == 0 {
		marks = 1
	}
	id, err := h.store.CreateQuestion(model.Question{
		MockID:        req.MockID,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Marks:         marks,
		Status:        model.StatusDraft,
	})
	if err != nil {
		respondInternal(w, "failed to create question", err)
		return
	}

	q, err := h.store.GetQuestion(id)
	if err != nil || q == nil {
		respondInternal(w, "failed to load created question", err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

func (h *Handler) handleQuestionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid question ID")
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.store.GetQuestion(id)
	if err != nil {
		respondInternal(w, "failed to load question", err)
		return
	}
	if q == nil {
		respondError(w, http.StatusNotFound, "question not found")
		return
	}

	if _, err := h.store.UpdateQuestionStatus(id, status); err != nil {
		respondInternal(w, "failed to update question status", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid question ID")
		return
	}
	affected, err := h.store.DeleteQuestion(id)
	if err != nil {
		respondInternal(w, "failed to delete question", err)
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "question not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}

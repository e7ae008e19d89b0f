package handler

import (
	"net/http"

	"github.com/rsharma/prepdesk/internal/model"
	"github.com/rsharma/prepdesk/internal/scoring"
)

type gradedResponse struct {
	Result model.Result    `json:"result"`
	Graded scoring.Outcome `json:"graded"`
}

// handleSubmitResult grades a submission and persists the result.
// Grading considers every question of the test, including drafts, so a
// test that is edited mid-review still scores consistently.
func (h *Handler) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var sub model.Submission
	if err := decodeBody(r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.UserID == 0 || sub.MockID == 0 {
		respondError(w, http.StatusBadRequest, "user_id and mock_id are required")
		return
	}

	test, err := h.store.GetMockTest(sub.MockID)
	if err != nil {
		respondInternal(w, "failed to load mock test", err)
		return
	}
	if test == nil {
		respondError(w, http.StatusNotFound, "mock test not found")
		return
	}

	questions, err := h.store.ListQuestions(sub.MockID, "")
	if err != nil {
		respondInternal(w, "failed to load questions", err)
		return
	}

	outcome := scoring.Grade(*test, questions, sub.Answers)

	id, err := h.store.CreateResult(model.Result{
		UserID:           sub.UserID,
		MockID:           sub.MockID,
		Score:            outcome.Score,
		TotalMarks:       outcome.TotalMarks,
		TimeTakenMinutes: sub.TimeTakenMinutes,
	})
	if err != nil {
		respondInternal(w, "failed to save result", err)
		return
	}

	saved, err := h.store.GetResult(id)
	if err != nil || saved == nil {
		respondInternal(w, "failed to load saved result", err)
		return
	}

	respondJSON(w, http.StatusCreated, gradedResponse{Result: *saved, Graded: outcome})
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}
	results, err := h.store.ListResultsByUser(userID)
	if err != nil {
		respondInternal(w, "failed to list results", err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

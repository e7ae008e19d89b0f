package model

import (
	"context"
	"fmt"
	"time"
)

// Role represents a user's access level.
type Role string

const (
	// RoleUser is a regular candidate taking mock tests.
	RoleUser Role = "user"
	// RoleEditor can draft questions and mock tests.
	RoleEditor Role = "editor"
	// RolePublisher can approve or reject drafted content.
	RolePublisher Role = "publisher"
	// RoleAdmin can do everything, including deleting questions.
	RoleAdmin Role = "admin"
)

// Status represents the lifecycle state of a question or mock test.
type Status string

const (
	StatusDraft Status = "draft"
	StatusLive  Status = "live"
)

// ParseStatus maps a client-supplied status value to the two-state
// enumeration. "approved" and "rejected" are accepted as aliases for
// "live" and "draft"; anything else is an error.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "live", "approved":
		return StatusLive, nil
	case "draft", "rejected":
		return StatusDraft, nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Exam is a top-level exam category. Exams are seeded externally and
// read-only here.
type Exam struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MockTest is a timed practice test belonging to an exam.
type MockTest struct {
	ID              int64     `json:"id"`
	ExamID          int64     `json:"exam_id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	Difficulty      string    `json:"difficulty"`
	TotalMarks      float64   `json:"total_marks"`
	NegativeMarking float64   `json:"negative_marking"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Question is a multiple-choice question in a mock test. Options are
// keyed by option letter; CorrectAnswer holds the key of the right one.
type Question struct {
	ID            int64             `json:"id"`
	MockID        int64             `json:"mock_id"`
	Text          string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Marks         float64           `json:"marks"`
	Status        Status            `json:"status"`
}

// Answer is a candidate's selected option for one question.
type Answer struct {
	QuestionID     int64  `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// Submission is a candidate's full set of answers for a mock test.
// It is graded into a Result; the submission itself is not stored.
type Submission struct {
	UserID           int64    `json:"user_id"`
	MockID           int64    `json:"mock_id"`
	Answers          []Answer `json:"answers"`
	TimeTakenMinutes int      `json:"time_taken_minutes"`
}

// Result is a graded submission. TotalMarks is a snapshot taken at
// grading time so later edits to the mock test don't alter history.
type Result struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	MockID           int64     `json:"mock_id"`
	Score            float64   `json:"score"`
	TotalMarks       float64   `json:"total_marks"`
	TimeTakenMinutes int       `json:"time_taken_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

// ResultRow is a Result joined with its mock test's title and current
// total marks, for result history listings.
type ResultRow struct {
	Result
	TestTitle      string  `json:"test_title"`
	TestTotalMarks float64 `json:"test_total_marks"`
}

type userCtxKey struct{}

// ContextWithUser stores the authenticated user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rsharma/prepdesk/internal/model"
)

// InsertExam stores an exam.
func (s *Store) InsertExam(e model.Exam) (int64, error) {
	if e.Name == "" {
		return 0, errors.New("exam name is required")
	}
	res, err := s.db.Exec(
		`INSERT INTO exams (name, description) VALUES (?, ?)`,
		e.Name, e.Description,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListExams returns all exams.
func (s *Store) ListExams() ([]model.Exam, error) {
	rows, err := s.db.Query(`SELECT id, name, description FROM exams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.Description); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ExamCount returns the number of exams in the database.
func (s *Store) ExamCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams`).Scan(&count)
	return count, err
}

// CreateMockTest stores a mock test. Missing required fields are
// rejected rather than coerced to defaults.
func (s *Store) CreateMockTest(mt model.MockTest) (int64, error) {
	if mt.ExamID == 0 || mt.Title == "" || mt.DurationMinutes <= 0 {
		return 0, errors.New("exam_id, title and duration_minutes are required")
	}
	if mt.Status == "" {
		mt.Status = model.StatusDraft
	}
	res, err := s.db.Exec(
		`INSERT INTO mock_tests (exam_id, title, duration_minutes, difficulty, total_marks, negative_marking, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mt.ExamID, mt.Title, mt.DurationMinutes, mt.Difficulty, mt.TotalMarks, mt.NegativeMarking, mt.Status, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetMockTest returns a mock test by ID, or nil if not found.
func (s *Store) GetMockTest(id int64) (*model.MockTest, error) {
	var mt model.MockTest
	err := s.db.QueryRow(
		`SELECT id, exam_id, title, duration_minutes, difficulty, total_marks, negative_marking, status, created_at
		 FROM mock_tests WHERE id = ?`, id,
	).Scan(&mt.ID, &mt.ExamID, &mt.Title, &mt.DurationMinutes, &mt.Difficulty, &mt.TotalMarks, &mt.NegativeMarking, &mt.Status, &mt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

// ListMockTests returns mock tests matching the given filters.
// examID 0 and empty status mean no filtering on that field.
func (s *Store) ListMockTests(examID int64, status model.Status) ([]model.MockTest, error) {
	query := `SELECT id, exam_id, title, duration_minutes, difficulty, total_marks, negative_marking, status, created_at
		 FROM mock_tests WHERE 1=1`
	var args []any
	if examID != 0 {
		query += ` AND exam_id = ?`
		args = append(args, examID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tests []model.MockTest
	for rows.Next() {
		var mt model.MockTest
		if err := rows.Scan(&mt.ID, &mt.ExamID, &mt.Title, &mt.DurationMinutes, &mt.Difficulty, &mt.TotalMarks, &mt.NegativeMarking, &mt.Status, &mt.CreatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, mt)
	}
	return tests, rows.Err()
}

// UpdateMockTestStatus sets a mock test's status and returns the
// number of affected rows.
func (s *Store) UpdateMockTestStatus(id int64, status model.Status) (int64, error) {
	res, err := s.db.Exec(`UPDATE mock_tests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateQuestion stores a question. Missing required fields are
// rejected rather than coerced to defaults.
func (s *Store) CreateQuestion(q model.Question) (int64, error) {
	if q.MockID == 0 || q.Text == "" || len(q.Options) == 0 || q.CorrectAnswer == "" {
		return 0, errors.New("mock_id, question_text, options and correct_answer are required")
	}
	if q.Status == "" {
		q.Status = model.StatusDraft
	}
	opts, err := marshalOptions(q.Options)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Exec(
		`INSERT INTO questions (mock_id, question_text, options, correct_answer, marks, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.MockID, q.Text, opts, q.CorrectAnswer, q.Marks, q.Status,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetQuestion returns a question by ID, or nil if not found.
func (s *Store) GetQuestion(id int64) (*model.Question, error) {
	var q model.Question
	var opts string
	err := s.db.QueryRow(
		`SELECT id, mock_id, question_text, options, correct_answer, marks, status
		 FROM questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.MockID, &q.Text, &opts, &q.CorrectAnswer, &q.Marks, &q.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if q.Options, err = unmarshalOptions(opts); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns questions matching the given filters.
// mockID 0 and empty status mean no filtering on that field.
func (s *Store) ListQuestions(mockID int64, status model.Status) ([]model.Question, error) {
	query := `SELECT id, mock_id, question_text, options, correct_answer, marks, status
		 FROM questions WHERE 1=1`
	var args []any
	if mockID != 0 {
		query += ` AND mock_id = ?`
		args = append(args, mockID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var opts string
		if err := rows.Scan(&q.ID, &q.MockID, &q.Text, &opts, &q.CorrectAnswer, &q.Marks, &q.Status); err != nil {
			return nil, err
		}
		if q.Options, err = unmarshalOptions(opts); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// UpdateQuestionStatus sets a question's status and returns the number
// of affected rows.
func (s *Store) UpdateQuestionStatus(id int64, status model.Status) (int64, error) {
	res, err := s.db.Exec(`UPDATE questions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteQuestion removes a question and returns the number of affected rows.
func (s *Store) DeleteQuestion(id int64) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

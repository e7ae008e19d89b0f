package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rsharma/prepdesk/internal/model"
)

// CreateResult stores a graded result. Each grading operation writes
// its own row; results are never updated afterwards.
func (s *Store) CreateResult(r model.Result) (int64, error) {
	if r.UserID == 0 || r.MockID == 0 {
		return 0, errors.New("user_id and mock_id are required")
	}
	res, err := s.db.Exec(
		`INSERT INTO results (user_id, mock_id, score, total_marks, time_taken_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.MockID, r.Score, r.TotalMarks, r.TimeTakenMinutes, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetResult returns a result by ID, or nil if not found.
func (s *Store) GetResult(id int64) (*model.Result, error) {
	var r model.Result
	err := s.db.QueryRow(
		`SELECT id, user_id, mock_id, score, total_marks, time_taken_minutes, created_at
		 FROM results WHERE id = ?`, id,
	).Scan(&r.ID, &r.UserID, &r.MockID, &r.Score, &r.TotalMarks, &r.TimeTakenMinutes, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResultsByUser returns a user's results joined with mock test
// metadata, most recent first.
func (s *Store) ListResultsByUser(userID int64) ([]model.ResultRow, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.user_id, r.mock_id, r.score, r.total_marks, r.time_taken_minutes, r.created_at,
		        m.title, m.total_marks
		 FROM results r
		 JOIN mock_tests m ON m.id = r.mock_id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ResultRow
	for rows.Next() {
		var rr model.ResultRow
		if err := rows.Scan(&rr.ID, &rr.UserID, &rr.MockID, &rr.Score, &rr.TotalMarks, &rr.TimeTakenMinutes, &rr.CreatedAt, &rr.TestTitle, &rr.TestTotalMarks); err != nil {
			return nil, err
		}
		results = append(results, rr)
	}
	return results, rows.Err()
}

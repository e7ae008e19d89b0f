package store

import (
	"fmt"

	"github.com/rsharma/prepdesk/internal/model"
)

// ExportAllResults builds export-ready rows for every graded result,
// joined with user and mock test metadata, most recent first.
func (s *Store) ExportAllResults() ([]model.ResultExport, error) {
	rows, err := s.db.Query(
		`SELECT u.name, u.email, m.title, r.score, r.total_marks, r.time_taken_minutes, r.created_at
		 FROM results r
		 JOIN users u ON u.id = r.user_id
		 JOIN mock_tests m ON m.id = r.mock_id
		 ORDER BY r.created_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	var exports []model.ResultExport
	for rows.Next() {
		var re model.ResultExport
		if err := rows.Scan(&re.UserName, &re.UserEmail, &re.TestTitle, &re.Score, &re.TotalMarks, &re.TimeTakenMinutes, &re.TakenAt); err != nil {
			return nil, err
		}
		exports = append(exports, re)
	}
	return exports, rows.Err()
}

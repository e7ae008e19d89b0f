package model

import "time"

// ResultsExport is the top-level JSON structure for result export.
type ResultsExport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	NumResults  int            `json:"num_results"`
	Results     []ResultExport `json:"results"`
}

// ResultExport holds one graded result with user and test metadata.
type ResultExport struct {
	UserName         string    `json:"user_name"`
	UserEmail        string    `json:"user_email"`
	TestTitle        string    `json:"test_title"`
	Score            float64   `json:"score"`
	TotalMarks       float64   `json:"total_marks"`
	TimeTakenMinutes int       `json:"time_taken_minutes"`
	TakenAt          time.Time `json:"taken_at"`
}

package model

// ExamImport is the JSON shape for seeding exams with their mock tests.
type ExamImport struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	MockTests   []MockTestImport `json:"mock_tests"`
}

// MockTestImport is a mock test inside an exam seed file. Imported
// content goes live immediately; it is assumed already reviewed.
type MockTestImport struct {
	Title           string           `json:"title"`
	DurationMinutes int              `json:"duration_minutes"`
	Difficulty      string           `json:"difficulty"`
	TotalMarks      float64          `json:"total_marks"`
	NegativeMarking float64          `json:"negative_marking"`
	Questions       []QuestionImport `json:"questions"`
}

// QuestionImport is a question inside an exam seed file.
type QuestionImport struct {
	Text          string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Marks         float64           `json:"marks"`
}

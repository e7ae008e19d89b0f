// Package scoring grades mock test submissions under negative-marking
// rules. It is pure: persistence is the caller's concern.
package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/rsharma/prepdesk/internal/model"
)

// Outcome is a graded submission before persistence.
type Outcome struct {
	Score            float64 `json:"score"`
	TotalMarks       float64 `json:"total_marks"`
	CorrectCount     int     `json:"correct_count"`
	WrongCount       int     `json:"wrong_count"`
	UnattemptedCount int     `json:"unattempted_count"`
	NegativeMarking  float64 `json:"negative_marking"`
}

// Grade scores a candidate's answers against a mock test's questions.
// Only the given questions are scored; answers referencing anything
// else are ignored. If the submission carries multiple answers for the
// same question, the first one wins. The final score is floored at
// zero and rounded to two decimal places.
func Grade(test model.MockTest, questions []model.Question, answers []model.Answer) Outcome {
	selected := make(map[int64]string, len(answers))
	for _, a := range answers {
		if _, ok := selected[a.QuestionID]; !ok {
			selected[a.QuestionID] = a.SelectedOption
		}
	}

	negative := decimal.NewFromFloat(test.NegativeMarking)
	score := decimal.Zero
	out := Outcome{
		TotalMarks:      test.TotalMarks,
		NegativeMarking: test.NegativeMarking,
	}

	for _, q := range questions {
		sel, ok := selected[q.ID]
		switch {
		case !ok || sel == "":
			out.UnattemptedCount++
		case sel == q.CorrectAnswer:
			out.CorrectCount++
			score = score.Add(decimal.NewFromFloat(q.Marks))
		default:
			out.WrongCount++
			score = score.Sub(negative)
		}
	}

	if score.IsNegative() {
		score = decimal.Zero
	}
	// A test whose declared total disagrees with its question marks
	// still never yields a score above the snapshot.
	if total := decimal.NewFromFloat(test.TotalMarks); total.IsPositive() && score.GreaterThan(total) {
		score = total
	}
	out.Score = score.Round(2).InexactFloat64()
	return out
}

// Package grading scores answer sheets against a quiz and folds scored
// participations into quiz statistics. Nothing here does I/O or keeps state,
// so calls for different quizzes can run in parallel.
package grading

import (
	"quiz-stats-service/internal/domain"

	"github.com/samber/lo"
)

// Score grades one answer sheet. It never fails: a nil sheet, a short sheet,
// wrong-shaped answers and out-of-range indices all count as incorrect.
func Score(quiz domain.Quiz, answers domain.AnswerSheet) domain.ScoreResult {
	total := len(quiz.Questions)
	details := make([]domain.QuestionResult, total)
	correct := 0
	for i, question := range quiz.Questions {
		answer := answers.At(i)
		ok := gradeQuestion(question, answer)
		if ok {
			correct++
		}
		details[i] = domain.QuestionResult{
			QuestionIndex:  i,
			UserAnswer:     answer.Clone(),
			CorrectOptions: CorrectOptions(question),
			IsCorrect:      ok,
		}
	}
	return domain.ScoreResult{
		Score:          Percent(correct, total),
		CorrectAnswers: correct,
		TotalQuestions: total,
		Details:        details,
	}
}

// CorrectOptions lists the texts of the options flagged correct, in option order.
func CorrectOptions(q domain.Question) []string {
	return lo.FilterMap(q.Options, func(o domain.Option, _ int) (string, bool) {
		return o.Text, o.IsCorrect
	})
}

func correctIndices(q domain.Question) []int {
	return lo.FilterMap(q.Options, func(o domain.Option, i int) (int, bool) {
		return i, o.IsCorrect
	})
}

// Anything that is not a single-answer question is graded as a set.
func gradeQuestion(q domain.Question, a domain.Answer) bool {
	if q.Kind == domain.KindSingle {
		return gradeSingle(q, a)
	}
	return gradeMultiple(q, a)
}

func gradeSingle(q domain.Question, a domain.Answer) bool {
	if a.Kind != domain.AnswerSingle {
		return false
	}
	option, ok := optionAt(q, a.Index)
	return ok && option.IsCorrect
}

func gradeMultiple(q domain.Question, a domain.Answer) bool {
	selected := selection(a)
	want := correctIndices(q)
	return len(selected) == len(want) && lo.Every(want, selected)
}

// selection returns the distinct indices of a multiple choice; other shapes select nothing.
func selection(a domain.Answer) []int {
	if a.Kind != domain.AnswerMultiple {
		return nil
	}
	return lo.Uniq(a.Indices)
}

func optionAt(q domain.Question, index int) (domain.Option, bool) {
	if index < 0 || index >= len(q.Options) {
		return domain.Option{}, false
	}
	return q.Options[index], true
}

// Percent returns part/whole as a whole percentage rounded half up, using
// integer arithmetic so .5 boundaries are exact. A zero whole yields 0.
func Percent(part, whole int) int {
	return roundDiv(part*100, whole)
}

func roundDiv(num, den int) int {
	if den <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}

package grading

import (
	"quiz-stats-service/internal/domain"

	"github.com/samber/lo"
)

// InvalidAnswerBucket collects selections that point at no option.
const InvalidAnswerBucket = "Invalid answer"

// Aggregate scores every valid participation, in the order given, and reduces
// the results into global and per-question statistics. Participations without
// a non-empty answer list are left out of every number.
func Aggregate(quiz domain.Quiz, records []domain.Participation) domain.AggregateReport {
	results := lo.FilterMap(records, func(record domain.Participation, _ int) (domain.ParticipationResult, bool) {
		sheet, ok := validSheet(record)
		if !ok {
			return domain.ParticipationResult{}, false
		}
		return domain.ParticipationResult{
			ID:          record.ID,
			Username:    record.Username,
			SubmittedAt: record.SubmittedAt,
			ScoreResult: Score(quiz, sheet),
		}, true
	})

	return domain.AggregateReport{
		Global:         globalStats(results),
		Participations: results,
		QuestionStats:  questionStats(quiz, results),
	}
}

// CountValid reports how many participations would be included by Aggregate.
func CountValid(records []domain.Participation) int {
	return lo.CountBy(records, func(record domain.Participation) bool {
		_, ok := validSheet(record)
		return ok
	})
}

func validSheet(record domain.Participation) (domain.AnswerSheet, bool) {
	sheet := record.Sheet()
	return sheet, len(sheet) > 0
}

type totals struct {
	sum   int
	best  int
	worst int
}

func globalStats(results []domain.ParticipationResult) domain.GlobalStats {
	if len(results) == 0 {
		return domain.GlobalStats{}
	}
	acc := lo.Reduce(results, func(acc totals, r domain.ParticipationResult, _ int) totals {
		return totals{
			sum:   acc.sum + r.Score,
			best:  max(acc.best, r.Score),
			worst: min(acc.worst, r.Score),
		}
	}, totals{worst: 100})

	return domain.GlobalStats{
		TotalParticipations: len(results),
		AverageScore:        roundDiv(acc.sum, len(results)),
		BestScore:           acc.best,
		WorstScore:          acc.worst,
		CompletionRate:      100,
	}
}

func questionStats(quiz domain.Quiz, results []domain.ParticipationResult) []domain.QuestionStats {
	return lo.Map(quiz.Questions, func(question domain.Question, i int) domain.QuestionStats {
		correct := lo.CountBy(results, func(r domain.ParticipationResult) bool {
			return i < len(r.Details) && r.Details[i].IsCorrect
		})
		return domain.QuestionStats{
			QuestionIndex:      i,
			QuestionText:       question.Text,
			QuestionType:       question.Kind,
			CorrectAnswers:     correct,
			TotalAttempts:      len(results),
			SuccessRate:        Percent(correct, len(results)),
			AnswerDistribution: distribution(question, i, results),
			CorrectOptions:     CorrectOptions(question),
		}
	})
}

func distribution(question domain.Question, i int, results []domain.ParticipationResult) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		if i >= len(r.Details) {
			continue
		}
		for _, index := range chosen(question, r.Details[i].UserAnswer) {
			counts[optionLabel(question, index)]++
		}
	}
	return counts
}

// chosen lists the option indices an answer counts toward. A list sent for a
// single-answer question names no option and lands in the invalid bucket.
func chosen(q domain.Question, a domain.Answer) []int {
	if q.Kind == domain.KindSingle {
		switch a.Kind {
		case domain.AnswerSingle:
			return []int{a.Index}
		case domain.AnswerMultiple:
			return []int{domain.NoOption}
		default:
			return nil
		}
	}
	return selection(a)
}

func optionLabel(q domain.Question, index int) string {
	option, ok := optionAt(q, index)
	if !ok {
		return InvalidAnswerBucket
	}
	return option.Text
}

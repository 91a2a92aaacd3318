package grading

import (
	"encoding/json"
	"testing"
	"time"

	"quiz-stats-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func participation(id string, sheet domain.AnswerSheet) domain.Participation {
	return domain.Participation{
		ID:          id,
		QuizID:      "quiz-1",
		Username:    "user-" + id,
		UserAnswers: sheet,
		SubmittedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateScenario(t *testing.T) {
	quiz := sampleQuiz()
	report := Aggregate(quiz, []domain.Participation{
		participation("p1", domain.AnswerSheet{domain.SingleChoice(0), domain.MultipleChoice(0, 1)}),
		participation("p2", domain.AnswerSheet{domain.SingleChoice(1), domain.MultipleChoice(0)}),
	})

	require.Equal(t, domain.GlobalStats{
		TotalParticipations: 2,
		AverageScore:        50,
		BestScore:           100,
		WorstScore:          0,
		CompletionRate:      100,
	}, report.Global)

	require.Len(t, report.Participations, 2)
	require.Equal(t, "p1", report.Participations[0].ID)
	require.Equal(t, 100, report.Participations[0].Score)
	require.Equal(t, "p2", report.Participations[1].ID)
	require.Equal(t, 0, report.Participations[1].Score)

	require.Len(t, report.QuestionStats, 2)
	first := report.QuestionStats[0]
	require.Equal(t, 50, first.SuccessRate)
	require.Equal(t, 1, first.CorrectAnswers)
	require.Equal(t, 2, first.TotalAttempts)
	require.Equal(t, map[string]int{"A": 1, "B": 1}, first.AnswerDistribution)
	require.Equal(t, []string{"A"}, first.CorrectOptions)
	require.Equal(t, domain.KindSingle, first.QuestionType)

	second := report.QuestionStats[1]
	require.Equal(t, 50, second.SuccessRate)
	require.Equal(t, map[string]int{"X": 2, "Y": 1}, second.AnswerDistribution)
	require.Equal(t, []string{"X", "Y"}, second.CorrectOptions)
}

func TestAggregateExcludesInvalidSubmissions(t *testing.T) {
	quiz := sampleQuiz()
	valid := participation("ok", domain.AnswerSheet{domain.SingleChoice(0), domain.MultipleChoice(2)})

	report := Aggregate(quiz, []domain.Participation{
		participation("missing", nil),
		participation("empty", domain.AnswerSheet{}),
		valid,
	})

	require.Equal(t, 1, report.Global.TotalParticipations)
	require.Equal(t, 50, report.Global.AverageScore)
	require.Equal(t, 50, report.Global.BestScore)
	require.Equal(t, 50, report.Global.WorstScore)
	require.Len(t, report.Participations, 1)
	require.Equal(t, "ok", report.Participations[0].ID)
	require.Equal(t, 1, CountValid([]domain.Participation{participation("missing", nil), valid}))
}

func TestAggregateNormalizesLegacyAnswerField(t *testing.T) {
	var records []domain.Participation
	raw := `[
		{"id": "new", "username": "n", "userAnswers": [0, [0, 1]]},
		{"id": "old", "username": "o", "answers": [1, [0]]},
		{"id": "broken", "username": "b", "answers": {"0": 1}},
		{"id": "none", "username": "x"}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &records))

	report := Aggregate(sampleQuiz(), records)
	require.Equal(t, 2, report.Global.TotalParticipations)
	require.Equal(t, "new", report.Participations[0].ID)
	require.Equal(t, "old", report.Participations[1].ID)
	require.Equal(t, 0, report.Participations[1].Score)
}

func TestAggregateWithoutParticipations(t *testing.T) {
	quiz := sampleQuiz()
	report := Aggregate(quiz, nil)

	require.Equal(t, domain.GlobalStats{}, report.Global)
	require.Empty(t, report.Participations)
	require.Len(t, report.QuestionStats, len(quiz.Questions))
	for _, stats := range report.QuestionStats {
		require.Equal(t, 0, stats.SuccessRate)
		require.Equal(t, 0, stats.TotalAttempts)
		require.Empty(t, stats.AnswerDistribution)
		require.NotEmpty(t, stats.CorrectOptions)
	}

	encoded, err := json.Marshal(report)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"participations":[]`)
}

func TestAggregateSinglePerfectParticipation(t *testing.T) {
	report := Aggregate(sampleQuiz(), []domain.Participation{
		participation("p1", domain.AnswerSheet{domain.SingleChoice(0), domain.MultipleChoice(1, 0)}),
	})
	require.Equal(t, 100, report.Global.WorstScore)
	require.Equal(t, 100, report.Global.BestScore)
	require.Equal(t, 100, report.Global.AverageScore)
}

func TestAggregateAverageRoundsHalfUp(t *testing.T) {
	quiz := singleQuiz(2)
	report := Aggregate(quiz, []domain.Participation{
		participation("a", domain.AnswerSheet{domain.SingleChoice(0), domain.SingleChoice(1)}),
		participation("b", domain.AnswerSheet{domain.SingleChoice(0), domain.SingleChoice(0)}),
		participation("c", domain.AnswerSheet{domain.SingleChoice(0), domain.SingleChoice(0)}),
		participation("d", domain.AnswerSheet{domain.SingleChoice(0), domain.SingleChoice(0)}),
	})
	// (50 + 100 + 100 + 100) / 4 = 87.5
	require.Equal(t, 88, report.Global.AverageScore)
	require.Equal(t, 50, report.Global.WorstScore)
	// 3 of 4 answered the second question correctly.
	require.Equal(t, 75, report.QuestionStats[1].SuccessRate)
	require.Equal(t, 100, report.QuestionStats[0].SuccessRate)
}

func TestAnswerDistributionBuckets(t *testing.T) {
	quiz := sampleQuiz()
	report := Aggregate(quiz, []domain.Participation{
		participation("a", domain.AnswerSheet{domain.SingleChoice(9), domain.MultipleChoice(0, 1, 2)}),
		participation("b", domain.AnswerSheet{domain.NoAnswer(), domain.MultipleChoice(1, 1, 5)}),
		participation("c", domain.AnswerSheet{domain.MultipleChoice(0), domain.SingleChoice(0)}),
		participation("d", domain.AnswerSheet{domain.SingleChoice(2)}),
	})

	require.Equal(t, map[string]int{InvalidAnswerBucket: 2, "C": 1}, report.QuestionStats[0].AnswerDistribution)
	require.Equal(t, map[string]int{"X": 1, "Y": 2, "Z": 1, InvalidAnswerBucket: 1}, report.QuestionStats[1].AnswerDistribution)

	selections := 0
	for _, n := range report.QuestionStats[1].AnswerDistribution {
		selections += n
	}
	require.Equal(t, 5, selections)
	require.GreaterOrEqual(t, selections, 2)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	quiz := sampleQuiz()
	records := []domain.Participation{
		participation("a", domain.AnswerSheet{domain.SingleChoice(0), domain.MultipleChoice(1, 0)}),
	}
	before, err := json.Marshal(records)
	require.NoError(t, err)
	quizBefore, err := json.Marshal(quiz)
	require.NoError(t, err)

	_ = Aggregate(quiz, records)

	after, err := json.Marshal(records)
	require.NoError(t, err)
	quizAfter, err := json.Marshal(quiz)
	require.NoError(t, err)
	require.JSONEq(t, string(before), string(after))
	require.JSONEq(t, string(quizBefore), string(quizAfter))
}

func TestAnswerDistributionCountsMistypedScalars(t *testing.T) {
	var records []domain.Participation
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": "a", "userAnswers": [true, [0, 0, 1]]},
		{"id": "b", "userAnswers": ["1", [1]]},
		{"id": "c", "userAnswers": [{}, null]},
		{"id": "d", "userAnswers": [null, [2]]}
	]`), &records))

	report := Aggregate(sampleQuiz(), records)

	require.Equal(t, map[string]int{InvalidAnswerBucket: 3}, report.QuestionStats[0].AnswerDistribution)
	require.Equal(t, map[string]int{"X": 1, "Y": 2, "Z": 1}, report.QuestionStats[1].AnswerDistribution)
	require.Equal(t, 0, report.QuestionStats[0].SuccessRate)
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"quiz-stats-service/internal/domain"

	"github.com/stretchr/testify/require"
)

const quizYAML = `
id: quiz-1
title: Letters
questions:
  - type: single
    text: Pick A
    options:
      - text: A
        isCorrect: true
      - text: B
  - type: multiple
    text: Pick X and Y
    options:
      - text: X
        isCorrect: true
      - text: "Y"
        isCorrect: true
      - text: Z
`

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	quizPath := filepath.Join(dir, "quiz.yaml")
	subsPath := filepath.Join(dir, "submissions.json")
	require.NoError(t, os.WriteFile(quizPath, []byte(quizYAML), 0o600))
	require.NoError(t, os.WriteFile(subsPath, []byte(`[
		{"id": "p1", "username": "alice", "userAnswers": [0, [0, 1]]},
		{"id": "p2", "username": "bob", "answers": [1, [0]]},
		{"id": "p3", "username": "carol", "userAnswers": null}
	]`), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"report", "--quiz", quizPath, "--submissions", subsPath})
	require.NoError(t, cmd.Execute())

	var stats domain.QuizStats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	require.Equal(t, "Letters", stats.Quiz.Title)
	require.Equal(t, 2, stats.Quiz.TotalQuestions)
	require.Equal(t, 2, stats.Global.TotalParticipations)
	require.Equal(t, 50, stats.Global.AverageScore)
	require.Equal(t, map[string]int{"X": 2, "Y": 1}, stats.QuestionStats[1].AnswerDistribution)
}

func TestReportRejectsInvalidQuiz(t *testing.T) {
	dir := t.TempDir()
	quizPath := filepath.Join(dir, "quiz.yaml")
	subsPath := filepath.Join(dir, "submissions.json")
	require.NoError(t, os.WriteFile(quizPath, []byte("title: Empty\nquestions: []\n"), 0o600))
	require.NoError(t, os.WriteFile(subsPath, []byte(`[]`), 0o600))

	var out bytes.Buffer
	err := runReport(&out, quizPath, subsPath)
	require.ErrorIs(t, err, domain.ErrInvalidQuiz)
}

package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/infra/memory"

	"github.com/sirupsen/logrus/hooks/test"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	quizzes := memory.NewQuizStore(sampleQuiz())
	service := app.NewQuizService(app.Deps{
		Quizzes:        quizzes,
		Cache:          memory.NewQuizRepository(quizzes, time.Minute),
		Participations: memory.NewParticipationStore(),
		Reports:        memory.NewReportCache(time.Minute),
		Feeds:          memory.NewFeedStore(),
		Logger:         logger,
	})
	server := httptest.NewServer(NewRouter(service, logger, nil))
	t.Cleanup(server.Close)
	return server
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				Kind: domain.KindSingle,
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
					{Text: "5"},
				},
			},
		},
	}
}

package memory

import (
	"context"
	"testing"
	"time"

	"quiz-stats-service/internal/domain"
)

func TestParticipationStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewParticipationStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []domain.Participation{
		{ID: "p1", QuizID: "quiz-1", UserAnswers: domain.AnswerSheet{domain.SingleChoice(0)}, SubmittedAt: base},
		{ID: "p2", QuizID: "quiz-1", UserAnswers: domain.AnswerSheet{domain.SingleChoice(1)}, SubmittedAt: base.Add(time.Minute)},
		{ID: "other", QuizID: "quiz-2", SubmittedAt: base},
	}
	for _, p := range records {
		if err := store.CreateParticipation(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}

	listed, err := store.ListParticipations(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "p2" || listed[1].ID != "p1" {
		t.Fatalf("expected p2 then p1, got %+v", listed)
	}

	if err := store.DeleteParticipations(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	listed, _ = store.ListParticipations(ctx, "quiz-1")
	if len(listed) != 0 {
		t.Fatalf("expected no participations after delete, got %d", len(listed))
	}
	others, _ := store.ListParticipations(ctx, "quiz-2")
	if len(others) != 1 {
		t.Fatalf("expected other quiz untouched, got %d", len(others))
	}
}

func TestParticipationStoreCopiesAnswers(t *testing.T) {
	ctx := context.Background()
	store := NewParticipationStore()
	sheet := domain.AnswerSheet{domain.MultipleChoice(0, 1)}

	_ = store.CreateParticipation(ctx, domain.Participation{ID: "p1", QuizID: "quiz-1", UserAnswers: sheet})
	sheet[0].Indices[0] = 5

	listed, _ := store.ListParticipations(ctx, "quiz-1")
	if got := listed[0].Sheet()[0].Indices[0]; got != 0 {
		t.Fatalf("expected stored answers untouched, got %d", got)
	}
}

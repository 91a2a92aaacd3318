package memory

import (
	"context"
	"sync"
	"testing"

	"quiz-stats-service/internal/domain"
)

func statsFor(quizID string, participations int) domain.QuizStats {
	stats := domain.QuizStats{Quiz: domain.QuizHeader{ID: quizID}}
	stats.Global.TotalParticipations = participations
	return stats
}

func TestFeedStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewFeedStore()

	ch, cancel, err := store.Subscribe(ctx, "quiz-1", statsFor("quiz-1", 0))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if initial := <-ch; initial.Global.TotalParticipations != 0 {
		t.Fatalf("expected initial snapshot first, got %+v", initial.Global)
	}
	if live, _ := store.HasSubscribers(ctx, "quiz-1"); !live {
		t.Fatalf("expected quiz-1 followed")
	}
	if live, _ := store.HasSubscribers(ctx, "quiz-2"); live {
		t.Fatalf("expected quiz-2 not followed")
	}

	if err := store.Publish(ctx, statsFor("quiz-1", 3)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if update := <-ch; update.Global.TotalParticipations != 3 {
		t.Fatalf("expected published stats, got %+v", update.Global)
	}
	if err := store.Publish(ctx, statsFor("quiz-2", 1)); err != nil {
		t.Fatalf("publish without viewers: %v", err)
	}

	cancel()
	cancel()
	if _, open := <-ch; open {
		t.Fatalf("expected channel closed after cancel")
	}
	if live, _ := store.HasSubscribers(ctx, "quiz-1"); live {
		t.Fatalf("expected feed removed when empty")
	}
}

func TestFeedStoreKeepsFeedForViewerJoiningDuringLastLeave(t *testing.T) {
	ctx := context.Background()
	store := NewFeedStore()

	for i := 0; i < 500; i++ {
		_, leaveFirst, err := store.Subscribe(ctx, "quiz-1", statsFor("quiz-1", 0))
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}

		var (
			wg          sync.WaitGroup
			second      <-chan domain.QuizStats
			leaveSecond func()
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			leaveFirst()
		}()
		go func() {
			defer wg.Done()
			second, leaveSecond, _ = store.Subscribe(ctx, "quiz-1", statsFor("quiz-1", 0))
		}()
		wg.Wait()

		if live, _ := store.HasSubscribers(ctx, "quiz-1"); !live {
			t.Fatalf("iteration %d: feed dropped while a viewer is subscribed", i)
		}
		<-second
		if err := store.Publish(ctx, statsFor("quiz-1", i+1)); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if update := <-second; update.Global.TotalParticipations != i+1 {
			t.Fatalf("iteration %d: unexpected update %+v", i, update.Global)
		}
		leaveSecond()
	}
}

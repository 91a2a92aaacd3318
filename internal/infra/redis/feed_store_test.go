package redis

import (
	"context"
	"testing"
	"time"

	"quiz-stats-service/internal/domain"

	"github.com/sirupsen/logrus/hooks/test"
)

func statsFor(quizID string, participations int) domain.QuizStats {
	stats := domain.QuizStats{Quiz: domain.QuizHeader{ID: quizID, Title: "Numbers"}}
	stats.Global.TotalParticipations = participations
	return stats
}

func TestFeedStoreRelaysAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr := startRedis(t)
	logger, _ := test.NewNullLogger()

	viewerSide := NewFeedStore(newClient(mr), logger)
	submitSide := NewFeedStore(newClient(mr), logger)

	ch, cancel, err := viewerSide.Subscribe(ctx, "quiz-1", statsFor("quiz-1", 0))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if initial := <-ch; initial.Global.TotalParticipations != 0 {
		t.Fatalf("expected initial snapshot first, got %+v", initial.Global)
	}

	live, err := submitSide.HasSubscribers(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("has subscribers: %v", err)
	}
	if !live {
		t.Fatalf("expected the other instance to see the viewer")
	}

	if err := submitSide.Publish(ctx, statsFor("quiz-1", 2)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case update := <-ch:
		if update.Global.TotalParticipations != 2 || update.Quiz.Title != "Numbers" {
			t.Fatalf("unexpected relayed stats %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected stats relayed through redis")
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for {
		live, err := submitSide.HasSubscribers(ctx, "quiz-1")
		if err != nil {
			t.Fatalf("has subscribers: %v", err)
		}
		if !live {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected channel unsubscribed after the last viewer left")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFeedStoreSharesOneSubscriptionPerQuiz(t *testing.T) {
	ctx := context.Background()
	mr := startRedis(t)
	logger, _ := test.NewNullLogger()
	store := NewFeedStore(newClient(mr), logger)

	first, cancelFirst, err := store.Subscribe(ctx, "quiz-1", statsFor("quiz-1", 0))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	second, cancelSecond, err := store.Subscribe(ctx, "quiz-1", statsFor("quiz-1", 0))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancelSecond()
	<-first
	<-second

	counts, err := newClient(mr).PubSubNumSub(ctx, "quiz:feed:quiz-1").Result()
	if err != nil {
		t.Fatalf("numsub: %v", err)
	}
	if counts["quiz:feed:quiz-1"] != 1 {
		t.Fatalf("expected one redis subscription for both viewers, got %d", counts["quiz:feed:quiz-1"])
	}

	cancelFirst()
	if live, _ := store.HasSubscribers(ctx, "quiz-1"); !live {
		t.Fatalf("expected feed kept for the remaining viewer")
	}
	if err := store.Publish(ctx, statsFor("quiz-1", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case update := <-second:
		if update.Global.TotalParticipations != 1 {
			t.Fatalf("unexpected update %+v", update.Global)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected remaining viewer to get the update")
	}
}

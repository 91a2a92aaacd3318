package memory

import (
	"context"
	"sync"

	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"
)

// FeedStore is an in-memory implementation of app.FeedRepository.
// Joining and leaving a feed both happen under mu, so a feed is never
// dropped while a subscriber is on its way in.
type FeedStore struct {
	mu    sync.Mutex
	feeds map[string]*app.Feed
}

func NewFeedStore() *FeedStore {
	return &FeedStore{
		feeds: make(map[string]*app.Feed),
	}
}

func (s *FeedStore) Subscribe(_ context.Context, quizID string, initial domain.QuizStats) (<-chan domain.QuizStats, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed, ok := s.feeds[quizID]
	if !ok {
		feed = app.NewFeed(quizID)
		s.feeds[quizID] = feed
	}
	ch, leave := feed.Subscribe(initial)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		leave()
		if feed.IsEmpty() && s.feeds[quizID] == feed {
			delete(s.feeds, quizID)
		}
	}
	return ch, cancel, nil
}

func (s *FeedStore) HasSubscribers(_ context.Context, quizID string) (bool, error) {
	_, ok := s.feed(quizID)
	return ok, nil
}

func (s *FeedStore) Publish(_ context.Context, stats domain.QuizStats) error {
	if feed, ok := s.feed(stats.Quiz.ID); ok {
		feed.Publish(stats)
	}
	return nil
}

func (s *FeedStore) feed(quizID string) (*app.Feed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[quizID]
	return feed, ok
}

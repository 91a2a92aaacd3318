package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// FeedStore relays statistics through Redis pub/sub so viewers connected to
// any instance sharing the Redis see every update.
// Each quiz followed locally holds one SUBSCRIBE on quiz:feed:{quizID};
// Publish sends the report to that channel and every subscribed instance
// fans it out to its own viewers.
type FeedStore struct {
	client *redis.Client
	log    logrus.FieldLogger

	mu    sync.Mutex
	feeds map[string]*relay
}

type relay struct {
	feed   *app.Feed
	pubsub *redis.PubSub
}

func NewFeedStore(client *redis.Client, log logrus.FieldLogger) *FeedStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FeedStore{
		client: client,
		log:    log,
		feeds:  make(map[string]*relay),
	}
}

func (s *FeedStore) Subscribe(ctx context.Context, quizID string, initial domain.QuizStats) (<-chan domain.QuizStats, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.feeds[quizID]
	if !ok {
		pubsub := s.client.Subscribe(ctx, feedChannel(quizID))
		// wait for the confirmation so no publish slips past a new viewer
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, nil, fmt.Errorf("subscribe %s: %w", feedChannel(quizID), err)
		}
		r = &relay{feed: app.NewFeed(quizID), pubsub: pubsub}
		s.feeds[quizID] = r
		go s.forward(r)
	}
	ch, leave := r.feed.Subscribe(initial)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		leave()
		if r.feed.IsEmpty() && s.feeds[quizID] == r {
			delete(s.feeds, quizID)
			if err := r.pubsub.Close(); err != nil {
				s.log.WithError(err).WithField("quiz_id", quizID).Warn("close stats subscription")
			}
		}
	}
	return ch, cancel, nil
}

// HasSubscribers asks Redis whether any instance follows the quiz.
func (s *FeedStore) HasSubscribers(ctx context.Context, quizID string) (bool, error) {
	counts, err := s.client.PubSubNumSub(ctx, feedChannel(quizID)).Result()
	if err != nil {
		return false, err
	}
	return counts[feedChannel(quizID)] > 0, nil
}

func (s *FeedStore) Publish(ctx context.Context, stats domain.QuizStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, feedChannel(stats.Quiz.ID), raw).Err()
}

func (s *FeedStore) forward(r *relay) {
	for msg := range r.pubsub.Channel() {
		var stats domain.QuizStats
		if err := json.Unmarshal([]byte(msg.Payload), &stats); err != nil {
			s.log.WithError(err).WithField("quiz_id", r.feed.QuizID()).Warn("decode published stats")
			continue
		}
		r.feed.Publish(stats)
	}
}

func feedChannel(quizID string) string {
	return "quiz:feed:" + quizID
}

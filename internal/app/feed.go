package app

import (
	"sync"

	"quiz-stats-service/internal/domain"
)

// feedBuffer is how many updates a subscriber may fall behind before the
// oldest pending one is dropped.
const feedBuffer = 4

// Feed fans statistics updates for one quiz out to the subscribers of this
// process. Feed stores decide when a feed is created and dropped.
type Feed struct {
	quizID      string
	mu          sync.RWMutex
	subscribers map[chan domain.QuizStats]struct{}
}

func NewFeed(quizID string) *Feed {
	return &Feed{
		quizID:      quizID,
		subscribers: make(map[chan domain.QuizStats]struct{}),
	}
}

func (f *Feed) QuizID() string {
	return f.quizID
}

// IsEmpty reports whether the feed has no subscribers.
func (f *Feed) IsEmpty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers) == 0
}

// Subscribe registers a subscriber whose channel already holds initial.
// The returned leave function closes the channel and is safe to call twice.
func (f *Feed) Subscribe(initial domain.QuizStats) (<-chan domain.QuizStats, func()) {
	ch := make(chan domain.QuizStats, feedBuffer)
	ch <- initial

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	leave := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
	}
	return ch, leave
}

// Publish hands stats to every subscriber without blocking.
func (f *Feed) Publish(stats domain.QuizStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- stats:
		default:
			// slow subscriber: drop its oldest update so the latest report always lands
			select {
			case <-ch:
			default:
			}
			ch <- stats
		}
	}
}

package memory

import (
	"context"
	"sync"
	"time"

	"quiz-stats-service/internal/domain"
)

// ReportCache keeps computed statistics in memory for a bounded time.
// A non-positive TTL keeps reports until they are invalidated.
type ReportCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.RWMutex
	reports map[string]cachedReport
}

type cachedReport struct {
	stats     domain.QuizStats
	expiresAt time.Time
}

func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		ttl:     ttl,
		clock:   time.Now,
		reports: make(map[string]cachedReport),
	}
}

func (c *ReportCache) GetReport(_ context.Context, quizID string) (domain.QuizStats, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.reports[quizID]
	if !ok {
		return domain.QuizStats{}, false, nil
	}
	if c.ttl > 0 && !entry.expiresAt.After(c.clock()) {
		return domain.QuizStats{}, false, nil
	}
	return entry.stats, true, nil
}

func (c *ReportCache) PutReport(_ context.Context, stats domain.QuizStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[stats.Quiz.ID] = cachedReport{
		stats:     stats,
		expiresAt: c.clock().Add(c.ttl),
	}
	return nil
}

func (c *ReportCache) Invalidate(_ context.Context, quizID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, quizID)
	return nil
}

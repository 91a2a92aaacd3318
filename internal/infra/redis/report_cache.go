package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quiz-stats-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores computed statistics as JSON under quiz:{quizID}:report.
// Every instance sharing the Redis sees the same report and the same
// invalidations.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) GetReport(ctx context.Context, quizID string) (domain.QuizStats, bool, error) {
	raw, err := c.client.Get(ctx, reportKey(quizID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizStats{}, false, nil
	}
	if err != nil {
		return domain.QuizStats{}, false, err
	}
	var stats domain.QuizStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.QuizStats{}, false, fmt.Errorf("decode report: %w", err)
	}
	return stats, true, nil
}

func (c *ReportCache) PutReport(ctx context.Context, stats domain.QuizStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(stats.Quiz.ID), raw, c.ttl).Err()
}

func (c *ReportCache) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, reportKey(quizID)).Err()
}

func reportKey(quizID string) string {
	return "quiz:" + quizID + ":report"
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"quiz-stats-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from the system of record.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches quiz documents in Redis and falls back to a loader on cache miss.
// Quizzes are stored as JSON: SET quiz:{quizID} {json} EX {ttl+jitter}
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	// gens counts local invalidations per quiz; a load started before the
	// latest one does not write the cache.
	gensMu sync.Mutex
	gens   map[string]uint64
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration, log logrus.FieldLogger) *QuizRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		gens:   make(map[string]uint64),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (any, error) {
		// Re-check cache in case another caller filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		gen := r.generation(quizID)
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if r.generation(quizID) != gen {
			return quiz, nil
		}

		raw, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := r.client.Set(ctx, quizKey(quizID), raw, r.ttlWithJitter()).Err(); err != nil {
			r.log.WithError(err).WithField("quiz_id", quizID).Warn("cache quiz in redis")
		}
		if r.generation(quizID) != gen {
			// invalidated while writing
			_ = r.client.Del(ctx, quizKey(quizID)).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate removes the cached document so the next read reloads it.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) error {
	r.gensMu.Lock()
	r.gens[quizID]++
	r.gensMu.Unlock()
	r.sf.Forget(quizID)
	return r.client.Del(ctx, quizKey(quizID)).Err()
}

func (r *QuizRepository) generation(quizID string) uint64 {
	r.gensMu.Lock()
	defer r.gensMu.Unlock()
	return r.gens[quizID]
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, quizKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithError(err).WithField("quiz_id", quizID).Warn("read cached quiz")
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		r.log.WithError(err).WithField("quiz_id", quizID).Warn("decode cached quiz")
		return domain.Quiz{}, false
	}
	return quiz, true
}

func quizKey(quizID string) string {
	return "quiz:" + quizID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

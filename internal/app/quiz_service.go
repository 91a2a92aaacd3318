package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/grading"
	"quiz-stats-service/internal/metrics"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// QuizStore is the system of record for quiz definitions (memory or Postgres).
type QuizStore interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuizRepository serves quiz content through a cache in front of the QuizStore.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID string) error
}

// ParticipationStore persists submissions. ListParticipations returns the
// newest submission first.
type ParticipationStore interface {
	CreateParticipation(ctx context.Context, participation domain.Participation) error
	ListParticipations(ctx context.Context, quizID string) ([]domain.Participation, error)
	DeleteParticipations(ctx context.Context, quizID string) error
}

// ReportCache keeps computed statistics until the next submission or edit.
type ReportCache interface {
	GetReport(ctx context.Context, quizID string) (domain.QuizStats, bool, error)
	PutReport(ctx context.Context, stats domain.QuizStats) error
	Invalidate(ctx context.Context, quizID string) error
}

// FeedRepository tracks live stats feeds (in-memory, Redis, etc).
// Subscribe joins a quiz's feed atomically with creating it, and the returned
// cancel drops the feed once its last subscriber leaves.
type FeedRepository interface {
	Subscribe(ctx context.Context, quizID string, initial domain.QuizStats) (<-chan domain.QuizStats, func(), error)
	HasSubscribers(ctx context.Context, quizID string) (bool, error)
	Publish(ctx context.Context, stats domain.QuizStats) error
}

// Deps wires a QuizService. Logger, Now and NewID default when nil.
type Deps struct {
	Quizzes        QuizStore
	Cache          QuizRepository
	Participations ParticipationStore
	Reports        ReportCache
	Feeds          FeedRepository
	Logger         logrus.FieldLogger
	Now            func() time.Time
	NewID          func() string
}

// QuizService contains the quiz authoring, submission and statistics use cases.
type QuizService struct {
	quizzes        QuizStore
	cache          QuizRepository
	participations ParticipationStore
	reports        ReportCache
	feeds          FeedRepository
	log            logrus.FieldLogger
	now            func() time.Time
	newID          func() string
}

// listConcurrency bounds the participation lookups ListQuizzes runs at once.
const listConcurrency = 8

func NewQuizService(deps Deps) *QuizService {
	s := &QuizService{
		quizzes:        deps.Quizzes,
		cache:          deps.Cache,
		participations: deps.Participations,
		reports:        deps.Reports,
		feeds:          deps.Feeds,
		log:            deps.Logger,
		now:            deps.Now,
		newID:          deps.NewID,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreateQuiz validates and stores a new quiz under a fresh ID.
func (s *QuizService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	now := s.now().UTC()
	quiz = quiz.Clone()
	quiz.ID = s.newID()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	metrics.RecordQuizChange("create")
	s.log.WithField("quiz_id", quiz.ID).Info("quiz created")
	return quiz, nil
}

// UpdateQuiz replaces a quiz's content. Stored participations are regraded
// against the new content the next time statistics are computed.
func (s *QuizService) UpdateQuiz(ctx context.Context, quizID string, quiz domain.Quiz) (domain.Quiz, error) {
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	existing, err := s.quizzes.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz = quiz.Clone()
	quiz.ID = existing.ID
	quiz.CreatedAt = existing.CreatedAt
	quiz.UpdatedAt = s.now().UTC()
	if err := s.quizzes.UpdateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}

	s.invalidate(ctx, quizID)
	metrics.RecordQuizChange("update")
	s.log.WithField("quiz_id", quizID).Info("quiz updated")
	s.refreshFeed(ctx, quizID)
	return quiz, nil
}

// GetQuiz returns the author view, correct options included.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.cache.GetQuiz(ctx, quizID)
}

// PublicQuiz returns the respondent view of a quiz.
func (s *QuizService) PublicQuiz(ctx context.Context, quizID string) (domain.PublicQuiz, error) {
	quiz, err := s.cache.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.PublicQuiz{}, err
	}
	return quiz.Public(), nil
}

// ListQuizzes lists non-private quizzes, newest first, with their number of
// valid participations.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	listed := lo.Filter(quizzes, func(q domain.Quiz, _ int) bool { return !q.IsPrivate })

	summaries := make([]domain.QuizSummary, len(listed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, quiz := range listed {
		i, quiz := i, quiz
		g.Go(func() error {
			records, err := s.participations.ListParticipations(gctx, quiz.ID)
			if err != nil {
				return fmt.Errorf("list participations of %s: %w", quiz.ID, err)
			}
			summaries[i] = quiz.Summary(grading.CountValid(records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// DeleteQuiz removes a quiz together with its participations.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.quizzes.LoadQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.participations.DeleteParticipations(ctx, quizID); err != nil {
		return fmt.Errorf("delete participations: %w", err)
	}
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	metrics.RecordQuizChange("delete")
	s.log.WithField("quiz_id", quizID).Info("quiz deleted")
	return nil
}

// Submit grades an answer sheet, stores the participation and pushes fresh
// statistics to live subscribers.
func (s *QuizService) Submit(ctx context.Context, quizID, username string, answers domain.AnswerSheet) (domain.ParticipationResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.ParticipationResult{}, fmt.Errorf("%w: username is required", domain.ErrInvalidSubmission)
	}
	if answers == nil {
		return domain.ParticipationResult{}, fmt.Errorf("%w: answers must be a list", domain.ErrInvalidSubmission)
	}

	quiz, err := s.cache.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ParticipationResult{}, err
	}

	result := grading.Score(quiz, answers)
	record := domain.Participation{
		ID:             s.newID(),
		QuizID:         quiz.ID,
		Username:       username,
		UserAnswers:    answers.Clone(),
		Score:          result.Score,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		SubmittedAt:    s.now().UTC(),
	}
	if err := s.participations.CreateParticipation(ctx, record); err != nil {
		return domain.ParticipationResult{}, fmt.Errorf("store participation: %w", err)
	}

	metrics.RecordSubmission(result.Score)
	s.log.WithFields(logrus.Fields{
		"quiz_id":          quiz.ID,
		"participation_id": record.ID,
		"score":            result.Score,
	}).Info("participation graded")

	if err := s.reports.Invalidate(ctx, quiz.ID); err != nil {
		s.log.WithError(err).WithField("quiz_id", quiz.ID).Warn("invalidate report")
	}
	s.refreshFeed(ctx, quiz.ID)

	return domain.ParticipationResult{
		ID:          record.ID,
		Username:    record.Username,
		SubmittedAt: record.SubmittedAt,
		ScoreResult: result,
	}, nil
}

// Stats returns the statistics report of a quiz, computing it when the
// cached copy is missing.
func (s *QuizService) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	cached, ok, err := s.reports.GetReport(ctx, quizID)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("read cached report")
	} else if ok {
		return cached, nil
	}

	quiz, err := s.cache.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, err
	}
	records, err := s.participations.ListParticipations(ctx, quiz.ID)
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("list participations: %w", err)
	}

	stats := domain.QuizStats{
		Quiz:            quiz.Header(),
		AggregateReport: grading.Aggregate(quiz, records),
	}
	metrics.RecordReportComputed()
	s.log.WithFields(logrus.Fields{
		"quiz_id":        quiz.ID,
		"participations": stats.Global.TotalParticipations,
	}).Debug("report computed")

	if err := s.reports.PutReport(ctx, stats); err != nil {
		s.log.WithError(err).WithField("quiz_id", quiz.ID).Warn("cache report")
	}
	return stats, nil
}

// Subscribe returns a channel that receives statistics updates for a quiz,
// starting with the current report. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID string) (<-chan domain.QuizStats, func(), error) {
	stats, err := s.Stats(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel, err := s.feeds.Subscribe(ctx, quizID, stats)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe to stats: %w", err)
	}
	return ch, cancel, nil
}

// Publish recomputes a quiz's statistics and sends them to its feed.
// It returns ErrFeedNotFound when nobody follows the quiz.
func (s *QuizService) Publish(ctx context.Context, quizID string) error {
	live, err := s.feeds.HasSubscribers(ctx, quizID)
	if err != nil {
		return fmt.Errorf("look up stats feed: %w", err)
	}
	if !live {
		return domain.ErrFeedNotFound
	}
	stats, err := s.Stats(ctx, quizID)
	if err != nil {
		return err
	}
	if err := s.feeds.Publish(ctx, stats); err != nil {
		return fmt.Errorf("publish stats: %w", err)
	}
	return nil
}

func (s *QuizService) refreshFeed(ctx context.Context, quizID string) {
	if err := s.Publish(ctx, quizID); err != nil && !errors.Is(err, domain.ErrFeedNotFound) {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("publish stats")
	}
}

func (s *QuizService) invalidate(ctx context.Context, quizID string) {
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("invalidate quiz cache")
	}
	if err := s.reports.Invalidate(ctx, quizID); err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("invalidate report")
	}
}

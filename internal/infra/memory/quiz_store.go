package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quiz-stats-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore. It doubles as
// the QuizLoader behind QuizRepository when no database is configured.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore(seed ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[string]domain.Quiz, len(seed))}
	for _, quiz := range seed {
		s.quizzes[quiz.ID] = quiz.Clone()
	}
	return s
}

func (s *QuizStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz.Clone(), nil
}

// ListQuizzes returns every quiz, newest first.
func (s *QuizStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		out = append(out, quiz.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; ok {
		return fmt.Errorf("quiz %s already exists", quiz.ID)
	}
	s.quizzes[quiz.ID] = quiz.Clone()
	return nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = quiz.Clone()
	return nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}

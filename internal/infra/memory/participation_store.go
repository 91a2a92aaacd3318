package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-stats-service/internal/domain"
)

// ParticipationStore keeps submissions per quiz in process memory.
type ParticipationStore struct {
	mu     sync.RWMutex
	byQuiz map[string][]domain.Participation
}

func NewParticipationStore() *ParticipationStore {
	return &ParticipationStore{byQuiz: make(map[string][]domain.Participation)}
}

func (s *ParticipationStore) CreateParticipation(_ context.Context, participation domain.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byQuiz[participation.QuizID] = append(s.byQuiz[participation.QuizID], participation.Clone())
	return nil
}

// ListParticipations returns the quiz's submissions, newest first.
func (s *ParticipationStore) ListParticipations(_ context.Context, quizID string) ([]domain.Participation, error) {
	s.mu.RLock()
	stored := s.byQuiz[quizID]
	out := make([]domain.Participation, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i].Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *ParticipationStore) DeleteParticipations(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byQuiz, quizID)
	return nil
}

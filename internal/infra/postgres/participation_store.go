package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quiz-stats-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ParticipationStore keeps submissions in the participations table. The
// answers live in a JSONB document; rows written before the payload rename
// carry {"answers": [...]} instead of {"userAnswers": [...]}.
type ParticipationStore struct {
	pool *pgxpool.Pool
}

func NewParticipationStore(pool *pgxpool.Pool) *ParticipationStore {
	return &ParticipationStore{pool: pool}
}

type answerDocument struct {
	UserAnswers domain.AnswerSheet `json:"userAnswers,omitempty"`
	Answers     domain.AnswerSheet `json:"answers,omitempty"`
}

func (s *ParticipationStore) CreateParticipation(ctx context.Context, p domain.Participation) error {
	raw, err := json.Marshal(answerDocument{UserAnswers: p.UserAnswers, Answers: p.Answers})
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO participations (id, quiz_id, username, data, score, correct_answers, total_questions, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.QuizID, p.Username, raw, p.Score, p.CorrectAnswers, p.TotalQuestions, p.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// ListParticipations returns the quiz's submissions, newest first.
func (s *ParticipationStore) ListParticipations(ctx context.Context, quizID string) ([]domain.Participation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, username, data, score, correct_answers, total_questions, submitted_at
		 FROM participations WHERE quiz_id=$1 ORDER BY submitted_at DESC, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	out := []domain.Participation{}
	for rows.Next() {
		var (
			p           domain.Participation
			raw         []byte
			submittedAt time.Time
		)
		if err := rows.Scan(&p.ID, &p.QuizID, &p.Username, &raw, &p.Score, &p.CorrectAnswers, &p.TotalQuestions, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		p.UserAnswers, p.Answers = decodeAnswers(raw)
		p.SubmittedAt = submittedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ParticipationStore) DeleteParticipations(ctx context.Context, quizID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM participations WHERE quiz_id=$1`, quizID); err != nil {
		return fmt.Errorf("delete participations: %w", err)
	}
	return nil
}

// decodeAnswers never fails: an unreadable document leaves both sheets nil,
// which keeps the row out of the statistics.
func decodeAnswers(raw []byte) (domain.AnswerSheet, domain.AnswerSheet) {
	var doc answerDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}
	return doc.UserAnswers, doc.Answers
}

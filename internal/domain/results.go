package domain

import "time"

// QuestionResult is the grading detail for one question of one submission.
type QuestionResult struct {
	QuestionIndex  int      `json:"questionIndex"`
	UserAnswer     Answer   `json:"userAnswer"`
	CorrectOptions []string `json:"correctOptions"`
	IsCorrect      bool     `json:"isCorrect"`
}

// ScoreResult is the outcome of grading one answer sheet.
type ScoreResult struct {
	Score          int              `json:"score"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	Details        []QuestionResult `json:"details"`
}

// ParticipationResult is a scored participation as listed in a report.
type ParticipationResult struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	SubmittedAt time.Time `json:"submittedAt"`
	ScoreResult
}

// GlobalStats summarizes every valid participation of a quiz.
type GlobalStats struct {
	TotalParticipations int `json:"totalParticipations"`
	AverageScore        int `json:"averageScore"`
	BestScore           int `json:"bestScore"`
	WorstScore          int `json:"worstScore"`
	CompletionRate      int `json:"completionRate"`
}

// QuestionStats holds per-question analytics.
type QuestionStats struct {
	QuestionIndex      int            `json:"questionIndex"`
	QuestionText       string         `json:"questionText"`
	QuestionType       QuestionKind   `json:"questionType"`
	CorrectAnswers     int            `json:"correctAnswers"`
	TotalAttempts      int            `json:"totalAttempts"`
	SuccessRate        int            `json:"successRate"`
	AnswerDistribution map[string]int `json:"answerDistribution"`
	CorrectOptions     []string       `json:"correctOptions"`
}

// AggregateReport is the statistics report for one quiz.
type AggregateReport struct {
	Global         GlobalStats           `json:"global"`
	Participations []ParticipationResult `json:"participations"`
	QuestionStats  []QuestionStats       `json:"questionStats"`
}

// QuizHeader identifies the quiz a report belongs to.
type QuizHeader struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QuizStats is what the stats endpoint and the live feed publish.
type QuizStats struct {
	Quiz QuizHeader `json:"quiz"`
	AggregateReport
}

func (q Quiz) Header() QuizHeader {
	return QuizHeader{
		ID:             q.ID,
		Title:          q.Title,
		Description:    q.Description,
		TotalQuestions: len(q.Questions),
		CreatedAt:      q.CreatedAt,
	}
}

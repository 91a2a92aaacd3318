package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned when a quiz definition fails authoring rules.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidSubmission is returned when a participation lacks a username or answers.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrFeedNotFound is returned when nobody is following a quiz's live stats.
	ErrFeedNotFound = errors.New("stats feed not found")
)

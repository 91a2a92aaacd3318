package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// ValidateQuiz enforces the authoring rules a quiz must satisfy before it is
// stored. Every violation is reported; the result wraps ErrInvalidQuiz.
func ValidateQuiz(q Quiz) error {
	var result *multierror.Error
	if strings.TrimSpace(q.Title) == "" {
		result = multierror.Append(result, errors.New("title is required"))
	}
	if len(q.Questions) == 0 {
		result = multierror.Append(result, errors.New("at least one question is required"))
	}
	for i, question := range q.Questions {
		if err := validateQuestion(question); err != nil {
			result = multierror.Append(result, fmt.Errorf("question %d: %w", i+1, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuiz, err)
	}
	return nil
}

func validateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("text is required")
	}
	if q.Kind != KindSingle && q.Kind != KindMultiple {
		return fmt.Errorf("unknown type %q", q.Kind)
	}
	if len(q.Options) < 2 {
		return errors.New("at least 2 options are required")
	}
	correct := lo.CountBy(q.Options, func(o Option) bool { return o.IsCorrect })
	if correct == 0 {
		return errors.New("at least one option must be correct")
	}
	if q.Kind == KindSingle && correct > 1 {
		return errors.New("a single-answer question can have only one correct option")
	}
	return nil
}

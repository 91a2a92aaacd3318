package domain

import (
	"time"

	"github.com/samber/lo"
)

// QuestionKind tells whether a question takes one option or a set of options.
type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
)

// Option represents a possible answer for a question.
type Option struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Question models an MCQ question. Answers refer to options by their position,
// so option order must be preserved as authored.
type Question struct {
	Kind    QuestionKind `json:"type" yaml:"type"`
	Text    string       `json:"text" yaml:"text"`
	Options []Option     `json:"options" yaml:"options"`
}

// Quiz is a collection of questions plus authoring metadata.
type Quiz struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Category    string     `json:"category,omitempty" yaml:"category"`
	Difficulty  string     `json:"difficulty,omitempty" yaml:"difficulty"`
	IsPrivate   bool       `json:"isPrivate" yaml:"isPrivate"`
	Questions   []Question `json:"questions" yaml:"questions"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy so stores can hand out quizzes without sharing slices.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = lo.Map(q.Questions, func(question Question, _ int) Question {
		question.Options = append([]Option(nil), question.Options...)
		return question
	})
	return out
}

// PublicOption is an option as shown to respondents.
type PublicOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// PublicQuestion is a question stripped of its answer key.
type PublicQuestion struct {
	Index   int            `json:"index"`
	Kind    QuestionKind   `json:"type"`
	Text    string         `json:"text"`
	Options []PublicOption `json:"options"`
}

// PublicQuiz is the respondent view of a quiz.
type PublicQuiz struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Questions   []PublicQuestion `json:"questions"`
}

// Public hides which options are correct.
func (q Quiz) Public() PublicQuiz {
	return PublicQuiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Questions: lo.Map(q.Questions, func(question Question, index int) PublicQuestion {
			return PublicQuestion{
				Index: index,
				Kind:  question.Kind,
				Text:  question.Text,
				Options: lo.Map(question.Options, func(option Option, optionIndex int) PublicOption {
					return PublicOption{ID: optionIndex, Text: option.Text}
				}),
			}
		}),
	}
}

// QuizSummary is a listing entry.
type QuizSummary struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	QuestionCount      int       `json:"questionCount"`
	ParticipationCount int       `json:"participationCount"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Summary builds a listing entry with the given number of valid participations.
func (q Quiz) Summary(participations int) QuizSummary {
	return QuizSummary{
		ID:                 q.ID,
		Title:              q.Title,
		Description:        q.Description,
		QuestionCount:      len(q.Questions),
		ParticipationCount: participations,
		CreatedAt:          q.CreatedAt,
	}
}

// Participation is a stored submission record. Records written before the
// payload was renamed keep their answers under "answers"; newer ones use
// "userAnswers". Only one of the two is ever set on a record.
type Participation struct {
	ID             string      `json:"id"`
	QuizID         string      `json:"quizId"`
	Username       string      `json:"username"`
	UserAnswers    AnswerSheet `json:"userAnswers,omitempty"`
	Answers        AnswerSheet `json:"answers,omitempty"`
	Score          int         `json:"score"`
	CorrectAnswers int         `json:"correctAnswers"`
	TotalQuestions int         `json:"totalQuestions"`
	SubmittedAt    time.Time   `json:"submittedAt"`
}

// Sheet returns the answer payload, whichever field it was stored under.
func (p Participation) Sheet() AnswerSheet {
	if p.UserAnswers != nil {
		return p.UserAnswers
	}
	return p.Answers
}

// Clone returns a copy whose answer sheets share nothing with p.
func (p Participation) Clone() Participation {
	p.UserAnswers = p.UserAnswers.Clone()
	p.Answers = p.Answers.Clone()
	return p
}

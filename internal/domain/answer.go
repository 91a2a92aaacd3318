package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// AnswerKind tags which variant an Answer holds.
type AnswerKind uint8

const (
	AnswerNone AnswerKind = iota
	AnswerSingle
	AnswerMultiple
)

// NoOption is the index recorded for selections that cannot name an option
// (fractions, negative numbers, strings, booleans).
const NoOption = -1

// Answer is one entry of an answer sheet: nothing, one option index, or a
// list of option indices. The list keeps the order and duplicates the
// respondent sent; graders treat it as a set.
type Answer struct {
	Kind    AnswerKind
	Index   int
	Indices []int
}

func NoAnswer() Answer {
	return Answer{Kind: AnswerNone}
}

func SingleChoice(index int) Answer {
	return Answer{Kind: AnswerSingle, Index: index}
}

func MultipleChoice(indices ...int) Answer {
	return Answer{Kind: AnswerMultiple, Indices: append([]int{}, indices...)}
}

// Clone copies the index list so results never alias caller input.
func (a Answer) Clone() Answer {
	if a.Kind == AnswerMultiple {
		a.Indices = append([]int{}, a.Indices...)
	}
	return a
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerSingle:
		return json.Marshal(a.Index)
	case AnswerMultiple:
		return json.Marshal(append([]int{}, a.Indices...))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON never rejects a well-formed value: null is no answer, lists
// become a multiple choice and any other value is a single choice.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = answerFromValue(raw)
	return nil
}

func answerFromValue(raw any) Answer {
	switch v := raw.(type) {
	case float64:
		return SingleChoice(optionIndex(v))
	case []any:
		indices := make([]int, 0, len(v))
		for _, item := range v {
			n, ok := item.(float64)
			if !ok {
				indices = append(indices, NoOption)
				continue
			}
			indices = append(indices, optionIndex(n))
		}
		return Answer{Kind: AnswerMultiple, Indices: indices}
	case nil:
		return NoAnswer()
	default:
		// strings, booleans and objects name no option
		return SingleChoice(NoOption)
	}
}

func optionIndex(v float64) int {
	if v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return NoOption
	}
	return int(v)
}

// AnswerSheet holds a respondent's answers aligned by index with the quiz
// questions. A nil sheet means the payload was absent or was not a list.
type AnswerSheet []Answer

// At returns the answer for question i, or no answer when the sheet is short.
func (s AnswerSheet) At(i int) Answer {
	if i < 0 || i >= len(s) {
		return NoAnswer()
	}
	return s[i]
}

func (s *AnswerSheet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*s = nil
		return nil
	}
	answers := []Answer{}
	if err := json.Unmarshal(trimmed, &answers); err != nil {
		return err
	}
	*s = answers
	return nil
}

// Clone deep-copies the sheet, keeping nil as nil.
func (s AnswerSheet) Clone() AnswerSheet {
	if s == nil {
		return nil
	}
	out := make(AnswerSheet, len(s))
	for i, answer := range s {
		out[i] = answer.Clone()
	}
	return out
}

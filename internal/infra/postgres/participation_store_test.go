package postgres

import (
	"encoding/json"
	"testing"

	"quiz-stats-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestDecodeAnswersHandlesLegacyAndBrokenDocuments(t *testing.T) {
	current, legacy := decodeAnswers([]byte(`{"userAnswers": [1, [0, 2]]}`))
	require.Equal(t, domain.AnswerSheet{domain.SingleChoice(1), domain.MultipleChoice(0, 2)}, current)
	require.Nil(t, legacy)

	current, legacy = decodeAnswers([]byte(`{"answers": [0]}`))
	require.Nil(t, current)
	require.Equal(t, domain.AnswerSheet{domain.SingleChoice(0)}, legacy)

	current, legacy = decodeAnswers([]byte(`{"answers": "nope"}`))
	require.Nil(t, current)
	require.Nil(t, legacy)

	current, legacy = decodeAnswers([]byte(`not json`))
	require.Nil(t, current)
	require.Nil(t, legacy)
}

func TestAnswerDocumentKeepsCanonicalField(t *testing.T) {
	raw, err := json.Marshal(answerDocument{UserAnswers: domain.AnswerSheet{domain.NoAnswer(), domain.MultipleChoice(1)}})
	require.NoError(t, err)
	require.JSONEq(t, `{"userAnswers": [null, [1]]}`, string(raw))
}

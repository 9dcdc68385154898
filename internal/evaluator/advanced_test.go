package evaluator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmonsalve/rubrica/internal/llm"
)

func freeText(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func cannedReview(confidence float64) llm.MockResponse {
	content := `{"score_consistent": true, "feedback_adequate": true, ` +
		`"suggestions_useful": false, "observations": "puntuación bien fundamentada", ` +
		`"confidence_score": ` + jsonFloat(confidence) + `}`
	return llm.MockResponse{Content: json.RawMessage(content)}
}

func jsonFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestEvaluateCriterionAdvanced(t *testing.T) {
	mock := llm.NewMockProvider(
		freeText("Revisar primero el template, luego la configuración"),
		freeText("La estructura sigue la plantilla, faltan notebooks. Tentativa: 85/100"),
		cannedResult(85, 6.2),
		cannedReview(0.85),
	)
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("r"), Options{}, nil)
	c := twoCriterionRubric(t).Criteria()[0]

	adv := svc.EvaluateCriterionAdvanced(context.Background(), c, snapshotFetcher("r")["r"])

	assert.Equal(t, 85, adv.Score)
	assert.Equal(t, 0.85, adv.Confidence)
	assert.Contains(t, adv.Checks, "Puntuación consistente: true")
	assert.Contains(t, adv.Checks, "Sugerencias útiles: false")
	assert.Contains(t, adv.Checks, "puntuación bien fundamentada")

	require.Len(t, adv.Steps, 3)
	assert.Equal(t, "planificación", adv.Steps[0].Name)
	assert.Contains(t, adv.Steps[0].Reasoning, "Revisar primero")
	assert.Equal(t, "análisis", adv.Steps[1].Name)
	assert.Equal(t, 0.85, adv.Steps[2].Confidence)

	require.Equal(t, 4, mock.CallCount())
	// only the scoring stage carries the structured-output schema
	assert.Nil(t, mock.Calls[0].Schema)
	assert.Nil(t, mock.Calls[1].Schema)
	require.NotNil(t, mock.Calls[2].Schema)
	assert.Equal(t, "criterion-result", mock.Calls[2].Schema.Name)
	assert.Nil(t, mock.Calls[3].Schema)

	// the reasoning feeds the scoring prompt
	assert.Contains(t, mock.Calls[2].Messages[0].Content, "ANÁLISIS PREVIO")
	assert.Contains(t, mock.Calls[2].Messages[0].Content, "faltan notebooks")
}

func TestEvaluateCriterionAdvanced_AllStagesFail(t *testing.T) {
	// empty mock queue: every stage fails, the chain still resolves
	mock := llm.NewMockProvider()
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("r"), Options{}, nil)
	c := twoCriterionRubric(t).Criteria()[0]

	adv := svc.EvaluateCriterionAdvanced(context.Background(), c, snapshotFetcher("r")["r"])

	assert.Equal(t, 60, adv.Score, "empty text lands on the neutral tier")
	assert.Equal(t, 0.5, adv.Confidence)
	assert.Contains(t, adv.Checks, "Revisión automática no disponible")
	require.Len(t, adv.Steps, 3)
	assert.Empty(t, adv.Steps[0].Reasoning)
}

func TestService_Evaluate_AdvancedMode(t *testing.T) {
	mock := llm.NewMockProvider(
		// four calls per criterion: plan, reasoning, scoring, review
		freeText("plan uno"), freeText("análisis uno"), cannedResult(90, 6.5), cannedReview(0.9),
		freeText("plan dos"), freeText("análisis dos"), cannedResult(70, 5.5), cannedReview(0.7),
	)
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("r"), Options{Advanced: true}, nil)

	ev, err := svc.Evaluate(context.Background(), Subject{ID: "s1", Name: "Ana", Repository: "r"})
	require.NoError(t, err)

	require.Len(t, ev.Results, 2)
	assert.Equal(t, 90, ev.Results[0].Score)
	assert.Equal(t, 70, ev.Results[1].Score)
	assert.Equal(t, 8, mock.CallCount())
}

func TestParseReview(t *testing.T) {
	t.Run("complete verdict", func(t *testing.T) {
		confidence, checks := parseReview(`{"score_consistent": true, ` +
			`"feedback_adequate": false, "suggestions_useful": true, ` +
			`"observations": "revisar la evidencia citada", "confidence_score": 0.7}`)

		assert.Equal(t, 0.7, confidence)
		assert.Contains(t, checks, "Puntuación consistente: true")
		assert.Contains(t, checks, "Retroalimentación adecuada: false")
		assert.Contains(t, checks, "revisar la evidencia citada")
	})

	t.Run("missing fields marked unverified", func(t *testing.T) {
		confidence, checks := parseReview(`{"confidence_score": 0.6}`)
		assert.Equal(t, 0.6, confidence)
		assert.Contains(t, checks, "Puntuación consistente: sin verificar")
	})

	t.Run("out of range confidence", func(t *testing.T) {
		confidence, _ := parseReview(`{"confidence_score": 1.5}`)
		assert.Equal(t, 0.5, confidence)
	})

	t.Run("no payload", func(t *testing.T) {
		confidence, checks := parseReview("sin JSON por aquí")
		assert.Equal(t, 0.5, confidence)
		assert.Equal(t, []string{"Revisión automática no disponible"}, checks)
	})
}

package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriterionResponse_RoundTrip(t *testing.T) {
	raw := `Aquí está mi evaluación:
{"score": 85, "grade": 6.1, "feedback": "Buen catálogo de datos",
 "evidence": ["conf/base/catalog.yml"], "suggestions": ["Agregar un dataset más"]}
Espero que sea útil.`

	res := ParseCriterionResponse(raw, "Catálogo")

	assert.Equal(t, 85, res.Score)
	assert.Equal(t, 6.1, res.Grade)
	assert.Equal(t, "Buen catálogo de datos", res.Feedback)
	assert.Equal(t, []string{"conf/base/catalog.yml"}, res.Evidence)
	assert.Equal(t, []string{"Agregar un dataset más"}, res.Suggestions)
	assert.Equal(t, "Catálogo", res.Criterion)
}

func TestParseCriterionResponse_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"score\": 70, \"grade\": 5.5, \"feedback\": \"ok\", \"evidence\": [], \"suggestions\": []}\n```"

	res := ParseCriterionResponse(raw, "c")
	assert.Equal(t, 70, res.Score)
	assert.Equal(t, 5.5, res.Grade)
}

func TestParseCriterionResponse_ControlCharsInStrings(t *testing.T) {
	raw := "{\"score\": 70, \"grade\": 5.5, \"feedback\": \"línea\nuno\", \"evidence\": [], \"suggestions\": []}"

	res := ParseCriterionResponse(raw, "c")
	assert.Equal(t, 70, res.Score)
	assert.Contains(t, res.Feedback, "línea")
}

func TestParseCriterionResponse_ClampsRanges(t *testing.T) {
	raw := `{"score": 150, "grade": 9.3, "feedback": "x", "evidence": [], "suggestions": []}`
	res := ParseCriterionResponse(raw, "c")
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 7.0, res.Grade)

	raw = `{"score": -5, "grade": 0.2, "feedback": "x", "evidence": [], "suggestions": []}`
	res = ParseCriterionResponse(raw, "c")
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 1.0, res.Grade)
}

func TestParseCriterionResponse_MissingFieldFallsBack(t *testing.T) {
	// grade is absent, so this is structurally invalid despite being JSON
	raw := `{"score": 90, "feedback": "excelente estructura"}`

	res := ParseCriterionResponse(raw, "Estructura")
	assert.Equal(t, 85, res.Score, "positive keyword should pick the high tier")
	assert.Equal(t, 6.0, res.Grade)
}

func TestFallback_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantScore int
		wantGrade float64
	}{
		{"positive", "El proyecto está excelente en general", 85, 6.0},
		{"negative", "El pipeline está incorrecto y faltante", 30, 3.5},
		{"neutral", "No tengo una opinión formada", 60, 5.0},
		{"positive dominates", "excelente, aunque hay un error menor", 85, 6.0},
		{"empty", "", 60, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseCriterionResponse(tt.raw, "c")
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantGrade, res.Grade)
			assert.NotEmpty(t, res.Feedback)
			assert.NotNil(t, res.Evidence)
			assert.NotEmpty(t, res.Suggestions)
		})
	}
}

func TestParseCriterionResponse_NeverOutOfRange(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"}{",
		"null",
		`{"score": "ochenta", "grade": 6.0, "feedback": "x"}`,
		`{"score": 1e9, "grade": -1e9, "feedback": "x", "evidence": [], "suggestions": []}`,
		"respuesta libre sin estructura alguna",
		"\x00\x01\x02{\"score\":}",
	}

	for _, raw := range inputs {
		res := ParseCriterionResponse(raw, "c")
		require.GreaterOrEqual(t, res.Score, 0, "input %q", raw)
		require.LessOrEqual(t, res.Score, 100, "input %q", raw)
		require.GreaterOrEqual(t, res.Grade, 1.0, "input %q", raw)
		require.LessOrEqual(t, res.Grade, 7.0, "input %q", raw)
	}
}

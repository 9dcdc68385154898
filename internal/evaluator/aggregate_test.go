package evaluator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmonsalve/rubrica/internal/rubric"
)

func uniformResults(r *rubric.Rubric, score int) []CriterionResult {
	var out []CriterionResult
	for _, c := range r.Criteria() {
		out = append(out, CriterionResult{
			Criterion: c.Name,
			Score:     score,
			Grade:     rubric.GradeFromPercent(float64(score)),
		})
	}
	return out
}

func TestAggregate_UniformScores(t *testing.T) {
	r := rubric.KedroML() // ten criteria, weight 0.10 each
	subject := Subject{ID: "s1", Name: "Ana", Repository: "ana/proyecto"}

	ev := Aggregate(r, subject, uniformResults(r, 80), nil)

	assert.InDelta(t, 80.0, ev.Percent, 1e-9)
	assert.Equal(t, 6.0, ev.Grade)
	assert.Equal(t, StatusApproved, ev.Status)
	assert.Len(t, ev.Results, 10)
	assert.NotEmpty(t, ev.ID)
	assert.NotEmpty(t, ev.Summary)
}

func TestAggregate_AdjustmentsShiftPercent(t *testing.T) {
	r := rubric.KedroML()
	subject := Subject{ID: "s1", Name: "Ana"}

	adj := []Adjustment{{Name: "sin_estructura_ejecutable", Delta: -20}}
	ev := Aggregate(r, subject, uniformResults(r, 50), adj)

	assert.InDelta(t, 30.0, ev.Percent, 1e-9)
	assert.Equal(t, 3.5, ev.Grade)
	assert.Equal(t, StatusFailed, ev.Status)
}

func TestAggregate_ClampsPercent(t *testing.T) {
	r := rubric.KedroML()
	subject := Subject{ID: "s1", Name: "Ana"}

	high := Aggregate(r, subject, uniformResults(r, 100),
		[]Adjustment{{Name: "kedro_viz", Delta: 3}, {Name: "tests_unitarios", Delta: 5}})
	assert.Equal(t, 100.0, high.Percent)
	assert.Equal(t, 7.0, high.Grade)

	low := Aggregate(r, subject, uniformResults(r, 0),
		[]Adjustment{{Name: "datasets_faltantes", Delta: -30}})
	assert.Equal(t, 0.0, low.Percent)
	assert.Equal(t, 1.0, low.Grade)
}

func TestAggregate_StrengthsAndWeakAreas(t *testing.T) {
	def := rubric.Definition{
		Name: "mini",
		Criteria: []rubric.Criterion{
			{Name: "fuerte", Weight: 0.4},
			{Name: "medio", Weight: 0.3},
			{Name: "débil", Weight: 0.3},
		},
	}
	r, err := rubric.New(def)
	require.NoError(t, err)

	results := []CriterionResult{
		{Criterion: "fuerte", Score: 90},
		{Criterion: "medio", Score: 70},
		{Criterion: "débil", Score: 40},
	}
	ev := Aggregate(r, Subject{Name: "Ana"}, results, nil)

	assert.Equal(t, []string{"fuerte"}, ev.Strengths)
	assert.Equal(t, []string{"débil"}, ev.WeakAreas)
	assert.Contains(t, ev.Summary, "fuerte")
	assert.Contains(t, ev.Summary, "débil")
}

func TestAggregate_IgnoresUnknownCriteria(t *testing.T) {
	r := rubric.KedroML()
	results := append(uniformResults(r, 80), CriterionResult{Criterion: "inexistente", Score: 100})

	ev := Aggregate(r, Subject{Name: "Ana"}, results, nil)
	assert.InDelta(t, 80.0, ev.Percent, 1e-9)
}

func TestErrorEvaluation(t *testing.T) {
	subject := Subject{ID: "s9", Name: "Beto", Repository: "beto/nada"}
	ev := ErrorEvaluation(subject, errors.New("404 not found"))

	assert.Equal(t, StatusError, ev.Status)
	assert.Equal(t, 1.0, ev.Grade)
	assert.Equal(t, 0.0, ev.Percent)
	assert.Empty(t, ev.Results)
	assert.Contains(t, ev.Summary, "404 not found")
	assert.NotEmpty(t, ev.ID)
}

package agents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmonsalve/rubrica/internal/evaluator"
	"github.com/vmonsalve/rubrica/internal/llm"
)

func evalWithScores(scores map[string]int) *evaluator.Evaluation {
	ev := &evaluator.Evaluation{SubjectID: "s1", SubjectName: "Ana", Grade: 5.0}
	for criterion, score := range scores {
		ev.Results = append(ev.Results, evaluator.CriterionResult{
			Criterion: criterion,
			Score:     score,
			Grade:     float64(score)/20 + 2, // rough spread, only the mean matters
		})
	}
	return ev
}

func TestRecommend_WeakestFirst(t *testing.T) {
	ev := evalWithScores(map[string]int{
		"Construcción de Pipelines":                     40,
		"Documentación y Notebooks":                     60,
		"Implementación del Catálogo de Datos":          75,
		"Estructura y Configuración del Proyecto Kedro": 90,
	})

	recs := Recommend(ev)
	require.Len(t, recs, 3, "criteria at 80 or above get no recommendation")

	assert.Equal(t, "Construcción de Pipelines", recs[0].Criterion)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, PriorityMedium, recs[1].Priority)
	assert.Equal(t, PriorityLow, recs[2].Priority)

	for _, rec := range recs {
		assert.NotEmpty(t, rec.Resources)
		assert.NotEmpty(t, rec.Title)
		assert.NotEmpty(t, rec.Description)
		assert.NotEmpty(t, rec.Steps)
		assert.NotEmpty(t, rec.Effort)
	}
}

func TestRecommend_UsesFirstSuggestion(t *testing.T) {
	ev := &evaluator.Evaluation{
		Results: []evaluator.CriterionResult{{
			Criterion:   "Catálogo",
			Score:       30,
			Suggestions: []string{"definir los datasets en catalog.yml", "otra cosa"},
		}},
	}

	recs := Recommend(ev)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Description, "definir los datasets en catalog.yml")
	assert.Equal(t, "definir los datasets en catalog.yml", recs[0].Steps[0])
	assert.Equal(t, "alta", recs[0].Difficulty)
}

func TestRecommend_StrongEvaluation(t *testing.T) {
	ev := evalWithScores(map[string]int{"a": 85, "b": 95})
	assert.Empty(t, Recommend(ev))
}

func TestBuildLearningPath_SlotsAndOrder(t *testing.T) {
	ev := evalWithScores(map[string]int{
		"h1": 20, "h2": 30, "h3": 45, // three high candidates, cap is two
		"m1": 55, "m2": 60, // two medium
		"l1": 70, "l2": 75, // two low, cap is one
	})

	path := BuildLearningPath([]*evaluator.Evaluation{ev})
	require.Len(t, path.Weeks, 5)

	assert.Equal(t, []WeekPlan{
		{Week: 1, Criterion: "h1", Priority: PriorityHigh},
		{Week: 2, Criterion: "h2", Priority: PriorityHigh},
		{Week: 3, Criterion: "m1", Priority: PriorityMedium},
		{Week: 4, Criterion: "m2", Priority: PriorityMedium},
		{Week: 5, Criterion: "l1", Priority: PriorityLow},
	}, path.Weeks)
}

func TestBuildLearningPath_LevelFromHistoryAverage(t *testing.T) {
	tests := []struct {
		name   string
		grades []float64
		want   string
	}{
		{"advanced", []float64{6.5, 6.0}, "advanced"},
		{"intermediate", []float64{5.0, 4.0}, "intermediate"},
		{"beginner", []float64{3.0, 2.0}, "beginner"},
		{"boundary advanced", []float64{6.0}, "advanced"},
		{"boundary intermediate", []float64{4.0}, "intermediate"},
		// a strong latest grade does not outweigh a weak history
		{"mixed history averages out", []float64{6.5, 3.0}, "intermediate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := BuildLearningPath(gradeHistory("s1", "Ana", tt.grades...))
			assert.Equal(t, tt.want, path.Level)
		})
	}

	assert.Equal(t, "beginner", BuildLearningPath(nil).Level)
	assert.NotEmpty(t, BuildLearningPath(nil).GeneralResources)
}

func TestBuildLearningPath_ObjectivesAndResources(t *testing.T) {
	ev := evalWithScores(map[string]int{"Catálogo": 40, "Notebooks": 85})
	ev.Grade = 4.5

	path := BuildLearningPath([]*evaluator.Evaluation{ev})

	assert.Equal(t, "intermediate", path.Level)
	assert.Equal(t, "Ana", path.SubjectName)
	assert.Equal(t, generalResources["intermediate"], path.GeneralResources)

	require.Len(t, path.Objectives, 4, "three base objectives plus the weak-criteria one")
	assert.Equal(t, baseObjectives["intermediate"], path.Objectives[:3])
	assert.Equal(t, "Mejorar: Catálogo", path.Objectives[3])
}

func TestPersonalize_MergesBackendSteps(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`[{"criterion": "Catálogo", "steps": ["Definir los datasets", "Validar las rutas"]}]`),
	})
	rec := NewRecommender(mock, nil)

	ev := evalWithScores(map[string]int{"Catálogo": 40})
	recs := rec.Personalize(context.Background(), ev)

	require.Len(t, recs, 1)
	assert.Equal(t, []string{"Definir los datasets", "Validar las rutas"}, recs[0].Steps)
	assert.Equal(t, 1, mock.CallCount())
}

func TestPersonalize_BackendFailureKeepsDeterministicSteps(t *testing.T) {
	rec := NewRecommender(llm.NewMockProvider(), nil) // empty queue fails every call
	ev := evalWithScores(map[string]int{"Catálogo": 40})

	recs := rec.Personalize(context.Background(), ev)
	require.Len(t, recs, 1)
	assert.Equal(t, Recommend(ev)[0].Steps, recs[0].Steps)
}

func TestPersonalize_UnparsableResponseKeepsDeterministicSteps(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`ningún arreglo por aquí`),
	})
	rec := NewRecommender(mock, nil)

	ev := evalWithScores(map[string]int{"Catálogo": 40})
	recs := rec.Personalize(context.Background(), ev)

	require.Len(t, recs, 1)
	assert.Equal(t, Recommend(ev)[0].Steps, recs[0].Steps)
}

func TestPersonalize_NoWeakCriteria(t *testing.T) {
	mock := llm.NewMockProvider()
	rec := NewRecommender(mock, nil)

	ev := evalWithScores(map[string]int{"a": 90})
	assert.Empty(t, rec.Personalize(context.Background(), ev))
	assert.Zero(t, mock.CallCount(), "no call when there is nothing to advise on")
}

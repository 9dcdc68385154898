package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmonsalve/rubrica/internal/evidence"
	"github.com/vmonsalve/rubrica/internal/llm"
	"github.com/vmonsalve/rubrica/internal/rubric"
)

func twoCriterionRubric(t *testing.T) *rubric.Rubric {
	t.Helper()
	r, err := rubric.New(rubric.Definition{
		Name: "mini",
		Criteria: []rubric.Criterion{
			{Name: "Estructura", Weight: 0.5, Levels: map[int]string{0: "nada", 100: "todo"}},
			{Name: "Documentación", Weight: 0.5, Levels: map[int]string{0: "nada", 100: "todo"}},
		},
	})
	require.NoError(t, err)
	return r
}

func snapshotFetcher(ref string) evidence.Static {
	return evidence.Static{
		ref: &evidence.Snapshot{
			Name:        "proyecto",
			Directories: []string{"src", "conf"},
			Files: map[string]evidence.FileMeta{
				"README.md":                {},
				"data/01_raw/uno.csv":      {},
				"data/01_raw/dos.csv":      {},
				"data/01_raw/tres.csv":     {},
				"src/pipeline_registry.py": {},
			},
			ReadmePresent: true,
		},
	}
}

func cannedResult(score int, grade float64) llm.MockResponse {
	content := fmt.Sprintf(
		`{"score": %d, "grade": %.1f, "feedback": "ok", "evidence": ["README.md"], "suggestions": []}`,
		score, grade)
	return llm.MockResponse{Content: json.RawMessage(content)}
}

func TestService_Evaluate(t *testing.T) {
	mock := llm.NewMockProvider(cannedResult(90, 6.5), cannedResult(70, 5.5))
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("ana/proyecto"), Options{}, nil)

	ev, err := svc.Evaluate(context.Background(), Subject{ID: "s1", Name: "Ana", Repository: "ana/proyecto"})
	require.NoError(t, err)

	require.Len(t, ev.Results, 2)
	assert.Equal(t, "Estructura", ev.Results[0].Criterion)
	assert.Equal(t, 90, ev.Results[0].Score)
	assert.Equal(t, "Documentación", ev.Results[1].Criterion)
	assert.Equal(t, 70, ev.Results[1].Score)

	// 90*0.5 + 70*0.5 = 80, no tests and no viz in the snapshot
	assert.InDelta(t, 80.0, ev.Percent, 1e-9)
	assert.Equal(t, 6.0, ev.Grade)
	assert.Equal(t, StatusApproved, ev.Status)
	assert.Positive(t, ev.Duration)

	require.Equal(t, 2, mock.CallCount())
	for _, call := range mock.Calls {
		require.NotNil(t, call.Schema)
		assert.Equal(t, "criterion-result", call.Schema.Name)
		assert.NotEmpty(t, call.System)
	}
}

func TestService_Evaluate_PromptMentionsCriterion(t *testing.T) {
	mock := llm.NewMockProvider(cannedResult(80, 6.0), cannedResult(80, 6.0))
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("r"), Options{}, nil)

	_, err := svc.Evaluate(context.Background(), Subject{Name: "Ana", Repository: "r"})
	require.NoError(t, err)

	require.Len(t, mock.Calls, 2)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Estructura")
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "Documentación")
}

func TestService_Evaluate_InaccessibleRepository(t *testing.T) {
	mock := llm.NewMockProvider()
	svc := NewService(mock, twoCriterionRubric(t), evidence.Static{}, Options{}, nil)

	ev, err := svc.Evaluate(context.Background(), Subject{ID: "s2", Name: "Beto", Repository: "beto/nada"})
	require.NoError(t, err)

	assert.Equal(t, StatusError, ev.Status)
	assert.Equal(t, 1.0, ev.Grade)
	assert.Zero(t, mock.CallCount(), "no generation calls for an inaccessible repository")
}

func TestService_Evaluate_BackendFailureDegradesToFallback(t *testing.T) {
	// empty mock queue: every Generate call fails
	mock := llm.NewMockProvider()
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("r"), Options{}, nil)

	ev, err := svc.Evaluate(context.Background(), Subject{Name: "Ana", Repository: "r"})
	require.NoError(t, err)

	require.Len(t, ev.Results, 2)
	for _, res := range ev.Results {
		assert.Equal(t, 60, res.Score, "empty text lands on the neutral tier")
	}
	assert.NotEqual(t, StatusError, ev.Status)
}

func TestService_Evaluate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := llm.NewMockProvider(cannedResult(80, 6.0))
	svc := NewService(mock, twoCriterionRubric(t), snapshotFetcher("r"), Options{}, nil)

	_, err := svc.Evaluate(ctx, Subject{Name: "Ana", Repository: "r"})
	assert.Error(t, err)
}

package evaluator

import "github.com/vmonsalve/rubrica/internal/llm"

// criterionResultSchema is the structured-output contract for one
// criterion evaluation. Providers with native structured output enforce
// it server-side; the parser still defends against violations.
func criterionResultSchema() *llm.Schema {
	return &llm.Schema{
		Name:        "criterion-result",
		Description: "Resultado de la evaluación de un criterio de la rúbrica",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"score": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"maximum":     100,
					"description": "Porcentaje de logro del criterio (0-100)",
				},
				"grade": map[string]any{
					"type":        "number",
					"minimum":     1.0,
					"maximum":     7.0,
					"description": "Nota en escala chilena (1.0-7.0)",
				},
				"feedback": map[string]any{
					"type":        "string",
					"description": "Retroalimentación específica del criterio",
				},
				"evidence": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Evidencia encontrada en el repositorio",
				},
				"suggestions": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Sugerencias concretas de mejora",
				},
			},
			"required":             []string{"score", "grade", "feedback", "evidence", "suggestions"},
			"additionalProperties": false,
		},
	}
}

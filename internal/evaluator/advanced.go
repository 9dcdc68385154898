package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vmonsalve/rubrica/internal/evidence"
	"github.com/vmonsalve/rubrica/internal/llm"
	"github.com/vmonsalve/rubrica/internal/rubric"
)

// ReasoningStep documents one stage of the advanced evaluation chain.
type ReasoningStep struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Reasoning   string   `json:"reasoning"`
	Evidence    []string `json:"evidence"`
	Confidence  float64  `json:"confidence"`
}

// AdvancedResult is a criterion result plus the reasoning chain that
// produced it and the self-review verdict over it.
type AdvancedResult struct {
	CriterionResult
	Steps      []ReasoningStep `json:"steps"`
	Confidence float64         `json:"confidence"`
	Checks     []string        `json:"checks"`
}

// EvaluateCriterionAdvanced grades one criterion through a four-call
// chain: draft an evaluation plan, reason over the evidence following
// it, produce the structured result, then self-review that result for
// a confidence verdict. Every stage degrades independently — a failed
// call leaves its stage empty and the chain continues — so the method
// never fails; at worst the result is the parser's neutral fallback.
func (s *Service) EvaluateCriterionAdvanced(ctx context.Context, c rubric.Criterion, snap *evidence.Snapshot) AdvancedResult {
	plan := s.chainCall(ctx, "evaluation-plan", buildChainPlanPrompt(c, snap))
	reasoning := s.chainCall(ctx, "criterion-reasoning", buildChainReasoningPrompt(c, snap, plan))

	raw := s.chainEvaluate(ctx, c, snap, reasoning)
	res := ParseCriterionResponse(raw, c.Name)

	review := s.chainCall(ctx, "evaluation-review", buildChainReviewPrompt(c, raw))
	confidence, checks := parseReview(review)

	return AdvancedResult{
		CriterionResult: res,
		Steps: []ReasoningStep{
			{
				Name:        "planificación",
				Description: "Plan de evaluación del criterio",
				Reasoning:   plan,
				Evidence:    []string{},
				Confidence:  0.9,
			},
			{
				Name:        "análisis",
				Description: "Razonamiento paso a paso sobre la evidencia",
				Reasoning:   reasoning,
				Evidence:    res.Evidence,
				Confidence:  0.8,
			},
			{
				Name:        "evaluación",
				Description: "Determinación de la puntuación final",
				Reasoning:   res.Feedback,
				Evidence:    res.Evidence,
				Confidence:  confidence,
			},
		},
		Confidence: confidence,
		Checks:     checks,
	}
}

// chainCall runs one free-text stage. Failures return an empty string;
// the downstream prompt simply carries less context.
func (s *Service) chainCall(ctx context.Context, purpose, prompt string) string {
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.log.Warn("chain stage failed, continuing without it",
			zap.String("purpose", purpose), zap.Error(err))
		return ""
	}
	return string(resp.Content)
}

// chainEvaluate runs the structured scoring stage. A failed call yields
// an empty string, which the parser turns into the neutral fallback.
func (s *Service) chainEvaluate(ctx context.Context, c rubric.Criterion, snap *evidence.Snapshot, reasoning string) string {
	ctx = llm.WithPurpose(ctx, "criterion-eval")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildChainEvaluationPrompt(c, snap, reasoning)}},
		Schema:      criterionResultSchema(),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.log.Warn("chain evaluation failed, using fallback",
			zap.String("criterion", c.Name), zap.Error(err))
		return ""
	}
	return string(resp.Content)
}

func buildChainPlanPrompt(c rubric.Criterion, snap *evidence.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Antes de evaluar, planifica cómo revisar el criterio %q.\n\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "DESCRIPCIÓN: %s\n", c.Description)
	}
	fmt.Fprintf(&b, "PESO: %.0f%% de la nota final\n\n", c.Weight*100)
	b.WriteString("CONTENIDO DEL REPOSITORIO:\n")
	writeSnapshot(&b, snap)
	b.WriteString("\nDescribe qué aspectos evaluarás, qué evidencia revisarás para cada uno ")
	b.WriteString("y en qué orden, y cómo asignarás la puntuación. Sé breve y concreto.")

	return b.String()
}

func buildChainReasoningPrompt(c rubric.Criterion, snap *evidence.Snapshot, plan string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analiza paso a paso la evidencia para el criterio %q.\n\n", c.Name)
	if plan != "" {
		fmt.Fprintf(&b, "PLAN DE EVALUACIÓN:\n%s\n\n", plan)
	}
	b.WriteString("CONTENIDO DEL REPOSITORIO:\n")
	writeSnapshot(&b, snap)
	b.WriteString("\nPara cada aspecto del plan indica la evidencia encontrada, fortalezas ")
	b.WriteString("y debilidades, y una puntuación parcial. Cierra con una síntesis y una ")
	b.WriteString("puntuación tentativa sobre 100.")

	return b.String()
}

func buildChainEvaluationPrompt(c rubric.Criterion, snap *evidence.Snapshot, reasoning string) string {
	var b strings.Builder

	b.WriteString(buildCriterionPrompt(c, snap))
	if reasoning != "" {
		b.WriteString("\n\nANÁLISIS PREVIO (básate en él para la puntuación final):\n")
		b.WriteString(reasoning)
	}
	return b.String()
}

func buildChainReviewPrompt(c rubric.Criterion, evaluation string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Revisa la calidad de esta evaluación del criterio %q:\n\n%s\n\n", c.Name, evaluation)
	b.WriteString("Verifica que la puntuación sea consistente con la evidencia, que la ")
	b.WriteString("retroalimentación sea específica y que las sugerencias sean accionables.\n")
	b.WriteString(`Responde con un objeto JSON con los campos "score_consistent" (bool), `)
	b.WriteString(`"feedback_adequate" (bool), "suggestions_useful" (bool), `)
	b.WriteString(`"observations" (string) y "confidence_score" (número 0.0-1.0). `)
	b.WriteString("Sin texto adicional.")

	return b.String()
}

// parseReview extracts the self-review verdict. An unusable review
// settles on middling confidence rather than discarding the result.
func parseReview(raw string) (float64, []string) {
	const defaultConfidence = 0.5

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return defaultConfidence, []string{"Revisión automática no disponible"}
	}

	var review struct {
		ScoreConsistent   *bool   `json:"score_consistent"`
		FeedbackAdequate  *bool   `json:"feedback_adequate"`
		SuggestionsUseful *bool   `json:"suggestions_useful"`
		Observations      string  `json:"observations"`
		ConfidenceScore   float64 `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(stripControlChars(raw[start:end+1])), &review); err != nil {
		return defaultConfidence, []string{"Revisión automática no disponible"}
	}

	confidence := review.ConfidenceScore
	if confidence <= 0 || confidence > 1 {
		confidence = defaultConfidence
	}

	check := func(label string, v *bool) string {
		if v == nil {
			return fmt.Sprintf("%s: sin verificar", label)
		}
		return fmt.Sprintf("%s: %v", label, *v)
	}
	checks := []string{
		check("Puntuación consistente", review.ScoreConsistent),
		check("Retroalimentación adecuada", review.FeedbackAdequate),
		check("Sugerencias útiles", review.SuggestionsUseful),
	}
	if review.Observations != "" {
		checks = append(checks, review.Observations)
	}
	return confidence, checks
}

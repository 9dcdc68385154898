package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vmonsalve/rubrica/internal/rubric"
)

// errNoResult reports a response that carried no usable JSON object.
// Internal to the parser; callers only ever see the fallback result.
var errNoResult = errors.New("no criterion result in response")

// rawResult uses pointer fields so a missing key is distinguishable
// from a zero value.
type rawResult struct {
	Score       *float64 `json:"score"`
	Grade       *float64 `json:"grade"`
	Feedback    *string  `json:"feedback"`
	Evidence    []string `json:"evidence"`
	Suggestions []string `json:"suggestions"`
}

// ParseCriterionResponse turns raw model output into a CriterionResult.
// It never fails: structured parsing is attempted first, and any
// malformed or non-JSON response degrades to the deterministic keyword
// fallback. Numeric fields are clamped to their valid ranges.
func ParseCriterionResponse(raw string, criterion string) CriterionResult {
	res, err := tryParse(raw, criterion)
	if err != nil {
		return fallbackResult(raw, criterion)
	}
	return res
}

func tryParse(raw string, criterion string) (CriterionResult, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return CriterionResult{}, errNoResult
	}
	payload := stripControlChars(raw[start : end+1])

	var r rawResult
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&r); err != nil {
		return CriterionResult{}, fmt.Errorf("decode criterion result: %w", err)
	}
	if r.Score == nil || r.Grade == nil || r.Feedback == nil {
		return CriterionResult{}, errNoResult
	}

	evidence := r.Evidence
	if evidence == nil {
		evidence = []string{}
	}
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return CriterionResult{
		Criterion:   criterion,
		Score:       clampScore(*r.Score),
		Grade:       clampGrade(*r.Grade),
		Feedback:    *r.Feedback,
		Evidence:    evidence,
		Suggestions: suggestions,
	}, nil
}

// stripControlChars removes ASCII control characters that some models
// leak into string literals, which the strict JSON decoder rejects.
// Newlines and tabs between tokens survive as spaces.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return ' '
		case r < 0x20:
			return -1
		}
		return r
	}, s)
}

func clampScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

func clampGrade(v float64) float64 {
	return math.Min(7.0, math.Max(1.0, v))
}

// Keyword tiers for the deterministic fallback. Matched as substrings
// of the lowercased response.
var (
	positiveKeywords = []string{"excelente", "muy bien", "perfecto", "completo"}
	negativeKeywords = []string{"malo", "incorrecto", "faltante", "error"}
)

// fallbackResult scores an unparseable response by keyword presence:
// positive markers dominate, negative markers lower the tier, anything
// else lands on the neutral midpoint. The grade follows the stepped
// conversion so fallback results stay comparable with parsed ones.
func fallbackResult(raw string, criterion string) CriterionResult {
	lower := strings.ToLower(raw)

	score := 60
	switch {
	case containsAny(lower, positiveKeywords):
		score = 85
	case containsAny(lower, negativeKeywords):
		score = 30
	}

	return CriterionResult{
		Criterion: criterion,
		Score:     score,
		Grade:     rubric.GradeFromPercent(float64(score)),
		Feedback: fmt.Sprintf("Evaluación automática de %s: la respuesta del modelo "+
			"no pudo interpretarse como JSON, se aplicó análisis de texto.", criterion),
		Evidence: []string{},
		Suggestions: []string{
			"Revisar los aspectos del criterio indicados en la rúbrica",
			"Consultar la documentación oficial de Kedro",
			"Solicitar retroalimentación detallada al docente",
		},
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vmonsalve/rubrica/internal/evaluator"
	"github.com/vmonsalve/rubrica/internal/llm"
)

const analysisSystemPrompt = "Eres un analista académico. A partir de " +
	"estadísticas de evaluación de proyectos, produces observaciones breves " +
	"y accionables en español. Respondes únicamente con un arreglo JSON."

// Analyzer finds patterns in accumulated evaluations.
type Analyzer struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewAnalyzer wires an analysis agent. A nil logger disables logging.
func NewAnalyzer(provider llm.Provider, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{provider: provider, log: log}
}

// CriterionStats aggregates per-criterion scores across evaluations,
// weakest criterion first. Synthetic ERROR evaluations carry no results
// and contribute nothing. Purely deterministic.
func CriterionStats(evals []*evaluator.Evaluation) []CriterionStat {
	type acc struct {
		sum, count int
		min, max   int
	}
	byName := map[string]*acc{}
	order := []string{}

	for _, ev := range evals {
		for _, res := range ev.Results {
			a, ok := byName[res.Criterion]
			if !ok {
				a = &acc{min: res.Score, max: res.Score}
				byName[res.Criterion] = a
				order = append(order, res.Criterion)
			}
			a.sum += res.Score
			a.count++
			if res.Score < a.min {
				a.min = res.Score
			}
			if res.Score > a.max {
				a.max = res.Score
			}
		}
	}

	stats := make([]CriterionStat, 0, len(order))
	for _, name := range order {
		a := byName[name]
		stats = append(stats, CriterionStat{
			Name:  name,
			Count: a.count,
			Mean:  float64(a.sum) / float64(a.count),
			Min:   a.min,
			Max:   a.max,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Mean < stats[j].Mean })
	return stats
}

// FindCommonIssues asks the model to name recurring problems, grounded
// on the cohort statistics. Backend or parse failure yields an empty
// list; issue mining never blocks the pipeline that produced the input.
func (a *Analyzer) FindCommonIssues(ctx context.Context, evals []*evaluator.Evaluation) []Insight {
	stats := CriterionStats(evals)
	if len(stats) == 0 {
		return nil
	}

	var b strings.Builder
	writeStats(&b, stats)
	b.WriteString("\nIdentifica los problemas recurrentes del curso. ")
	writeInsightContract(&b, 5)

	return a.insights(ctx, "common-issues", b.String(), InsightCommonIssue)
}

// AnalyzeTrends asks the model to comment on grade movement across the
// given evaluations (one subject's history, or a whole cohort over
// time). Backend or parse failure yields an empty list.
func (a *Analyzer) AnalyzeTrends(ctx context.Context, evals []*evaluator.Evaluation) []Insight {
	if len(evals) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Evaluaciones en orden cronológico:\n")
	for i, ev := range evals {
		fmt.Fprintf(&b, "- %d. %s: nota %.1f (%.0f%%), estado %s\n",
			i+1, ev.SubjectName, ev.Grade, ev.Percent, ev.Status)
	}
	if stats := CriterionStats(evals); len(stats) > 0 {
		b.WriteString("\n")
		writeStats(&b, stats)
	}
	b.WriteString("\nDescribe las tendencias y qué debería priorizarse. ")
	writeInsightContract(&b, 4)

	return a.insights(ctx, "trend-analysis", b.String(), InsightTrend)
}

func writeStats(b *strings.Builder, stats []CriterionStat) {
	b.WriteString("Estadísticas por criterio (logro promedio sobre 100):\n")
	for _, s := range stats {
		fmt.Fprintf(b, "- %s: promedio %.1f, mínimo %d, máximo %d, n=%d\n",
			s.Name, s.Mean, s.Min, s.Max, s.Count)
	}
}

func writeInsightContract(b *strings.Builder, max int) {
	fmt.Fprintf(b, "Responde con un arreglo JSON de máximo %d objetos con los campos ", max)
	b.WriteString(`"title" (string), "description" (string), "criteria" (lista de strings) `)
	b.WriteString(`y "severity" ("low", "medium" o "high"). Sin texto adicional.`)
}

func (a *Analyzer) insights(ctx context.Context, purpose, prompt, insightType string) []Insight {
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:    analysisSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 1000,
	})
	if err != nil {
		a.log.Warn("analysis call failed", zap.String("purpose", purpose), zap.Error(err))
		return nil
	}

	out, err := decodeInsights(string(resp.Content), insightType)
	if err != nil {
		a.log.Warn("analysis response unusable", zap.String("purpose", purpose), zap.Error(err))
		return nil
	}
	return out
}

// decodeInsights slices the array payload out of free-form output and
// decodes it. Accepts either objects or plain strings; models fall back
// to bare string lists often enough that rejecting them would throw
// away usable findings.
func decodeInsights(raw string, insightType string) ([]Insight, error) {
	payload, err := extractArraySlice(raw)
	if err != nil {
		return nil, err
	}

	var insights []Insight
	if err := json.Unmarshal(payload, &insights); err == nil {
		out := insights[:0]
		for _, in := range insights {
			if in.Title == "" {
				continue
			}
			if in.Type == "" {
				in.Type = insightType
			}
			out = append(out, in)
		}
		return out, nil
	}

	var titles []string
	if err := json.Unmarshal(payload, &titles); err != nil {
		return nil, fmt.Errorf("decode insight payload: %w", err)
	}
	out := make([]Insight, 0, len(titles))
	for _, title := range titles {
		if title == "" {
			continue
		}
		out = append(out, Insight{Type: insightType, Title: title})
	}
	return out, nil
}

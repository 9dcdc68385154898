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

// Score bands mapping criterion achievement to recommendation priority.
// Criteria at or above the strong band get no recommendation.
const (
	recommendCutoff = 80
	mediumBand      = 65
	highBand        = 50
)

// Learning-path shape: at most this many slots per priority, one week
// per slot, higher priorities scheduled first.
const (
	maxHighSlots   = 2
	maxMediumSlots = 2
	maxLowSlots    = 1
)

// Grade averages that decide the learning-path level.
const (
	advancedGrade     = 6.0
	intermediateGrade = 4.0
)

// Recommender produces per-subject improvement advice: a deterministic
// core driven by criterion scores, optionally enriched with model
// commentary.
type Recommender struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewRecommender wires a recommendation agent. A nil logger disables logging.
func NewRecommender(provider llm.Provider, log *zap.Logger) *Recommender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recommender{provider: provider, log: log}
}

// Recommend derives recommendations from one evaluation, weakest
// criterion first. Purely deterministic.
func Recommend(ev *evaluator.Evaluation) []Recommendation {
	results := make([]evaluator.CriterionResult, len(ev.Results))
	copy(results, ev.Results)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })

	var recs []Recommendation
	for _, res := range results {
		if res.Score >= recommendCutoff {
			break
		}
		prio := priorityFor(res.Score)
		recs = append(recs, Recommendation{
			Criterion: res.Criterion,
			Priority:  prio,
			Title:     fmt.Sprintf("Reforzar %s", res.Criterion),
			Description: fmt.Sprintf("Logro actual %d%%: %s",
				res.Score, firstSuggestion(res)),
			Steps:      stepsFor(res),
			Resources:  resourcesFor(res.Criterion),
			Effort:     effortFor(prio),
			Difficulty: difficultyFor(res.Score),
		})
	}
	return recs
}

func priorityFor(score int) Priority {
	switch {
	case score < highBand:
		return PriorityHigh
	case score < mediumBand:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func firstSuggestion(res evaluator.CriterionResult) string {
	if len(res.Suggestions) > 0 {
		return res.Suggestions[0]
	}
	return "revisar los niveles de logro descritos en la rúbrica"
}

// stepsFor turns the criterion's suggestions into an ordered plan,
// always ending with a verification step.
func stepsFor(res evaluator.CriterionResult) []string {
	steps := append([]string{}, res.Suggestions...)
	if len(steps) == 0 {
		steps = append(steps, "Revisar los niveles de logro del criterio en la rúbrica")
	}
	return append(steps, "Verificar el resultado contra el nivel de logro superior")
}

func effortFor(prio Priority) string {
	switch prio {
	case PriorityHigh:
		return "6-8 horas"
	case PriorityMedium:
		return "3-5 horas"
	default:
		return "1-2 horas"
	}
}

func difficultyFor(score int) string {
	if score < highBand {
		return "alta"
	}
	return "media"
}

// BuildLearningPath turns a subject's chronological evaluation history
// into a weekly plan: up to two high-priority slots, two medium, one
// low, in that order, one week each, over the latest evaluation's weak
// criteria. The level follows the mean final grade of the whole
// history, and picks the path's objectives and general resources.
func BuildLearningPath(history []*evaluator.Evaluation) LearningPath {
	if len(history) == 0 {
		return LearningPath{Level: "beginner", GeneralResources: generalResources["beginner"]}
	}
	latest := history[len(history)-1]
	level := levelForHistory(history)

	path := LearningPath{
		SubjectName:      latest.SubjectName,
		Level:            level,
		Objectives:       objectivesFor(level, latest),
		GeneralResources: generalResources[level],
	}

	recs := Recommend(latest)
	quota := map[Priority]int{
		PriorityHigh:   maxHighSlots,
		PriorityMedium: maxMediumSlots,
		PriorityLow:    maxLowSlots,
	}

	week := 1
	for _, prio := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		for _, rec := range recs {
			if rec.Priority != prio || quota[prio] == 0 {
				continue
			}
			path.Weeks = append(path.Weeks, WeekPlan{
				Week:      week,
				Criterion: rec.Criterion,
				Priority:  prio,
			})
			week++
			quota[prio]--
		}
	}
	return path
}

// levelForHistory averages the final grades of the history.
func levelForHistory(history []*evaluator.Evaluation) string {
	sum := 0.0
	for _, ev := range history {
		sum += ev.Grade
	}
	avg := sum / float64(len(history))

	switch {
	case avg >= advancedGrade:
		return "advanced"
	case avg >= intermediateGrade:
		return "intermediate"
	default:
		return "beginner"
	}
}

// baseObjectives holds the level-appropriate course objectives; weak
// criteria of the latest evaluation add one targeted objective on top.
var baseObjectives = map[string][]string{
	"beginner": {
		"Completar la configuración básica del proyecto",
		"Implementar el análisis exploratorio de datos",
		"Crear documentación básica",
	},
	"intermediate": {
		"Optimizar la arquitectura del proyecto",
		"Implementar pipelines robustos",
		"Mejorar la calidad del código",
	},
	"advanced": {
		"Adoptar buenas prácticas avanzadas",
		"Optimizar el rendimiento del sistema",
		"Completar la documentación técnica",
	},
}

var generalResources = map[string][]string{
	"beginner": {
		"Python básico: https://docs.python.org/3/tutorial/",
		"Pandas tutorial: https://pandas.pydata.org/docs/getting_started/intro_tutorials/",
		"Kedro getting started: https://docs.kedro.org/en/stable/get_started/",
	},
	"intermediate": {
		"Scikit-learn user guide: https://scikit-learn.org/stable/user_guide.html",
		"Kedro avanzado: https://docs.kedro.org/en/stable/",
		"Patrones de Machine Learning: https://scikit-learn.org/stable/modules/classes.html",
	},
	"advanced": {
		"Buenas prácticas de MLOps: https://ml-ops.org/",
		"Despliegue con Kedro: https://docs.kedro.org/en/stable/deployment/",
		"Técnicas avanzadas: https://scikit-learn.org/stable/modules/ensemble.html",
	},
}

func objectivesFor(level string, latest *evaluator.Evaluation) []string {
	objectives := append([]string{}, baseObjectives[level]...)

	var weak []string
	for _, res := range latest.Results {
		if res.Score < weakScore && len(weak) < 3 {
			weak = append(weak, res.Criterion)
		}
	}
	if len(weak) > 0 {
		objectives = append(objectives, fmt.Sprintf("Mejorar: %s", strings.Join(weak, ", ")))
	}
	return objectives
}

// weakScore matches the aggregation's weak-area threshold.
const weakScore = 60

// Personalize enriches the deterministic recommendations with
// backend-generated steps: one call covering every weak criterion, the
// returned steps replacing the stored-suggestion plan per criterion.
// Backend or parse failure keeps the deterministic steps.
func (r *Recommender) Personalize(ctx context.Context, ev *evaluator.Evaluation) []Recommendation {
	recs := Recommend(ev)
	if len(recs) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Estudiante: %s. Nota final: %.1f. Criterios a reforzar:\n", ev.SubjectName, ev.Grade)
	for _, rec := range recs {
		fmt.Fprintf(&b, "- %s (prioridad %s): %s\n", rec.Criterion, rec.Priority, rec.Description)
	}
	b.WriteString("\nPara cada criterio entrega pasos concretos y accionables en español.\n")
	b.WriteString(`Responde con un arreglo JSON de objetos {"criterion": string, "steps": [string]}, `)
	b.WriteString("un objeto por criterio, máximo 5 pasos cada uno.")

	ctx = llm.WithPurpose(ctx, "personalized-advice")
	resp, err := r.provider.Generate(ctx, llm.Request{
		System: "Eres un mentor de Machine Learning que crea planes de mejora específicos " +
			"y accionables. Respondes únicamente con el arreglo JSON solicitado.",
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		MaxTokens: 1200,
	})
	if err != nil {
		r.log.Warn("personalize call failed, keeping deterministic steps", zap.Error(err))
		return recs
	}

	steps, err := decodeSteps(string(resp.Content))
	if err != nil {
		r.log.Warn("personalize response unusable, keeping deterministic steps", zap.Error(err))
		return recs
	}
	for i := range recs {
		if s, ok := steps[recs[i].Criterion]; ok && len(s) > 0 {
			recs[i].Steps = s
		}
	}
	return recs
}

func decodeSteps(raw string) (map[string][]string, error) {
	payload, err := extractArraySlice(raw)
	if err != nil {
		return nil, err
	}

	var items []struct {
		Criterion string   `json:"criterion"`
		Steps     []string `json:"steps"`
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode steps payload: %w", err)
	}

	steps := make(map[string][]string, len(items))
	for _, item := range items {
		if item.Criterion != "" {
			steps[item.Criterion] = item.Steps
		}
	}
	return steps, nil
}

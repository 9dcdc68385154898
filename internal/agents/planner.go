package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vmonsalve/rubrica/internal/evidence"
	"github.com/vmonsalve/rubrica/internal/llm"
	"github.com/vmonsalve/rubrica/internal/rubric"
)

const planningSystemPrompt = "Eres un experto en diseño de evaluaciones " +
	"educativas para proyectos de Machine Learning. Respondes únicamente " +
	"con el JSON solicitado, en español."

// EvaluationPlan structures how one criterion should be assessed before
// any grading happens: what to look for, in what order, and how the
// scoring bands apply to this specific repository.
type EvaluationPlan struct {
	Criterion        string            `json:"criterion"`
	Objectives       []string          `json:"objectives"`
	Strategies       []string          `json:"strategies"`
	RequiredEvidence []string          `json:"required_evidence"`
	Steps            []string          `json:"steps"`
	ScoringBands     map[string]string `json:"scoring_bands"`
	EstimatedMinutes int               `json:"estimated_minutes"`
}

// Planner drafts per-criterion evaluation plans and orders them. Plans
// are advisory; a dead backend degrades every call to a deterministic
// plan derived from the rubric itself.
type Planner struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewPlanner wires a planning agent. A nil logger disables logging.
func NewPlanner(provider llm.Provider, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{provider: provider, log: log}
}

// Plan drafts the evaluation plan for one criterion against the given
// repository snapshot. Backend or parse failure yields the rubric-derived
// fallback plan, never an error.
func (p *Planner) Plan(ctx context.Context, c rubric.Criterion, snap *evidence.Snapshot) EvaluationPlan {
	ctx = llm.WithPurpose(ctx, "evaluation-plan")

	resp, err := p.provider.Generate(ctx, llm.Request{
		System:    planningSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: buildPlanningPrompt(c, snap)}},
		MaxTokens: 1200,
	})
	if err != nil {
		p.log.Warn("planning call failed, using rubric-derived plan",
			zap.String("criterion", c.Name), zap.Error(err))
		return fallbackPlan(c)
	}

	plan, err := decodePlan(string(resp.Content), c.Name)
	if err != nil {
		p.log.Warn("planning response unusable, using rubric-derived plan",
			zap.String("criterion", c.Name), zap.Error(err))
		return fallbackPlan(c)
	}
	return plan
}

// PlanAll drafts a plan for every rubric criterion, keyed by name.
func (p *Planner) PlanAll(ctx context.Context, r *rubric.Rubric, snap *evidence.Snapshot) map[string]EvaluationPlan {
	plans := make(map[string]EvaluationPlan, r.Len())
	for _, c := range r.Criteria() {
		plans[c.Name] = p.Plan(ctx, c, snap)
	}
	return plans
}

// OptimizeSequence asks the model for the most efficient evaluation
// order over the given plans. The answer must be a permutation of the
// rubric's criteria; anything else — a missing or duplicated criterion,
// a parse failure, a dead backend — falls back to rubric order.
func (p *Planner) OptimizeSequence(ctx context.Context, r *rubric.Rubric, plans map[string]EvaluationPlan) []string {
	rubricOrder := make([]string, 0, r.Len())
	for _, c := range r.Criteria() {
		rubricOrder = append(rubricOrder, c.Name)
	}
	if len(plans) == 0 {
		return rubricOrder
	}

	ctx = llm.WithPurpose(ctx, "sequence-optimization")

	resp, err := p.provider.Generate(ctx, llm.Request{
		System:    planningSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: buildSequencePrompt(plans)}},
		MaxTokens: 600,
	})
	if err != nil {
		p.log.Warn("sequence call failed, keeping rubric order", zap.Error(err))
		return rubricOrder
	}

	sequence, err := decodeSequence(string(resp.Content))
	if err != nil || !samePermutation(sequence, rubricOrder) {
		p.log.Warn("sequence response unusable, keeping rubric order", zap.Error(err))
		return rubricOrder
	}
	return sequence
}

func buildPlanningPrompt(c rubric.Criterion, snap *evidence.Snapshot) string {
	var b strings.Builder

	b.WriteString("Diseña un plan de evaluación para el siguiente criterio.\n\n")
	fmt.Fprintf(&b, "CRITERIO: %s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "DESCRIPCIÓN: %s\n", c.Description)
	}
	fmt.Fprintf(&b, "PESO: %.0f%% de la nota final\n\n", c.Weight*100)

	b.WriteString("NIVELES DE LOGRO:\n")
	for _, pct := range sortedLevels(c) {
		fmt.Fprintf(&b, "- %d%%: %s\n", pct, c.Levels[pct])
	}

	b.WriteString("\nEVIDENCIA DISPONIBLE:\n")
	writePlanningEvidence(&b, snap)

	b.WriteString("\nDefine objetivos medibles, estrategias de revisión, la evidencia ")
	b.WriteString("que debe examinarse, pasos ordenados y bandas de puntuación.\n")
	b.WriteString(`Responde con un objeto JSON con los campos "objectives" (lista de strings), `)
	b.WriteString(`"strategies" (lista de strings), "required_evidence" (lista de strings), `)
	b.WriteString(`"steps" (lista de strings), "scoring_bands" (objeto de rango a descripción) `)
	b.WriteString(`y "estimated_minutes" (entero). Sin texto adicional.`)

	return b.String()
}

// writePlanningEvidence summarizes the snapshot in counts; the plan
// needs the shape of the repository, not its file list.
func writePlanningEvidence(b *strings.Builder, snap *evidence.Snapshot) {
	if snap == nil {
		b.WriteString("Sin evidencia específica: planificar una evaluación general.\n")
		return
	}
	fmt.Fprintf(b, "Directorios: %d\n", len(snap.Directories))
	fmt.Fprintf(b, "Archivos: %d\n", len(snap.Files))
	fmt.Fprintf(b, "README presente: %v\n", snap.ReadmePresent)
	fmt.Fprintf(b, "requirements.txt presente: %v\n", snap.RequirementsPresent)
}

func buildSequencePrompt(plans map[string]EvaluationPlan) string {
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Determina el orden de evaluación más eficiente para estos planes:\n\n")
	for _, name := range names {
		plan := plans[name]
		fmt.Fprintf(&b, "- %s: %d minutos estimados, %d pasos, evidencia: %s\n",
			name, plan.EstimatedMinutes, len(plan.Steps),
			strings.Join(plan.RequiredEvidence, ", "))
	}
	b.WriteString("\nConsidera dependencias entre criterios y el costo de cada revisión. ")
	b.WriteString("Todos los criterios deben aparecer exactamente una vez.\n")
	b.WriteString(`Responde con un objeto JSON {"sequence": [nombres de criterio en orden]}. `)
	b.WriteString("Sin texto adicional.")

	return b.String()
}

func decodePlan(raw string, criterion string) (EvaluationPlan, error) {
	payload, err := ExtractJSONObject(raw)
	if err != nil {
		return EvaluationPlan{}, err
	}

	var plan EvaluationPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return EvaluationPlan{}, fmt.Errorf("decode plan payload: %w", err)
	}
	if len(plan.Steps) == 0 {
		return EvaluationPlan{}, fmt.Errorf("%w: plan carries no steps", ErrNoJSONPayload)
	}

	plan.Criterion = criterion
	if plan.EstimatedMinutes <= 0 {
		plan.EstimatedMinutes = 10
	}
	return plan, nil
}

func decodeSequence(raw string) ([]string, error) {
	payload, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var out struct {
		Sequence []string `json:"sequence"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode sequence payload: %w", err)
	}
	return out.Sequence, nil
}

func samePermutation(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(want))
	for _, name := range want {
		seen[name] = true
	}
	for _, name := range got {
		if !seen[name] {
			return false
		}
		delete(seen, name)
	}
	return len(seen) == 0
}

// fallbackPlan derives a plan from the rubric alone: the level
// descriptors become the scoring bands and the generic review steps
// stand in for model-drafted ones.
func fallbackPlan(c rubric.Criterion) EvaluationPlan {
	bands := make(map[string]string, len(c.Levels))
	for pct, desc := range c.Levels {
		bands[fmt.Sprintf("%d%%", pct)] = desc
	}

	return EvaluationPlan{
		Criterion:        c.Name,
		Objectives:       []string{fmt.Sprintf("Verificar el cumplimiento de %s", c.Name)},
		Strategies:       []string{"Analizar la evidencia disponible contra los niveles de logro"},
		RequiredEvidence: append([]string{}, c.EvidenceHints...),
		Steps: []string{
			"Revisar la estructura y los archivos relevantes",
			"Contrastar la evidencia con los niveles de logro",
			"Determinar la puntuación",
		},
		ScoringBands:     bands,
		EstimatedMinutes: 10,
	}
}

func sortedLevels(c rubric.Criterion) []int {
	levels := make([]int, 0, len(c.Levels))
	for pct := range c.Levels {
		levels = append(levels, pct)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	return levels
}

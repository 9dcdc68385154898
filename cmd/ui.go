package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vmonsalve/rubrica/internal/agents"
	"github.com/vmonsalve/rubrica/internal/batch"
	"github.com/vmonsalve/rubrica/internal/evaluator"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func statusStyle(status evaluator.Status) lipgloss.Style {
	switch status {
	case evaluator.StatusApproved:
		return passStyle
	case evaluator.StatusFailed:
		return failStyle
	default:
		return warnStyle
	}
}

func renderEvaluation(ev *evaluator.Evaluation) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Evaluación de %s", ev.SubjectName)))
	if ev.Partner != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (con %s)", ev.Partner)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(ev.Repository))
	b.WriteString("\n\n")

	for _, res := range ev.Results {
		fmt.Fprintf(&b, "  %-55s %3d%%  nota %.1f\n", res.Criterion, res.Score, res.Grade)
	}
	for _, adj := range ev.Adjustments {
		fmt.Fprintf(&b, "  %s\n", warnStyle.Render(fmt.Sprintf("%-55s %+.0f pts", adj.Name, adj.Delta)))
	}

	b.WriteString("\n")
	line := fmt.Sprintf("Nota final: %.1f (%.0f%%) — %s", ev.Grade, ev.Percent, ev.Status)
	b.WriteString(statusStyle(ev.Status).Render(line))
	b.WriteString("\n\n")
	b.WriteString(ev.Summary)
	b.WriteString("\n")

	return b.String()
}

func renderBatchResult(res *batch.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Resultados del lote"))
	b.WriteString("\n\n")

	for _, ev := range res.Evaluations {
		status := statusStyle(ev.Status).Render(string(ev.Status))
		fmt.Fprintf(&b, "  %-30s nota %.1f  %s\n", ev.SubjectName, ev.Grade, status)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(&b, "  %-30s %s\n", f.Subject.Name, failStyle.Render("FALLO: "+f.Err.Error()))
	}

	st := res.Stats
	b.WriteString("\n")
	fmt.Fprintf(&b, "Evaluados: %d  Fallidos: %d\n", st.Evaluated, st.Failed)
	if st.Evaluated > 0 {
		fmt.Fprintf(&b, "Nota promedio: %.2f  (mín %.1f, máx %.1f)\n", st.MeanGrade, st.MinGrade, st.MaxGrade)
		fmt.Fprintf(&b, "Tasa de aprobación: %.0f%%\n", st.PassRate*100)
	}
	return b.String()
}

func renderAlerts(alerts []agents.Alert) string {
	if len(alerts) == 0 {
		return passStyle.Render("Sin alertas.") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Alertas"))
	b.WriteString("\n\n")
	for _, a := range alerts {
		style := warnStyle
		if a.Severity == agents.SeverityCritical || a.Severity == agents.SeverityHigh {
			style = failStyle
		}
		fmt.Fprintf(&b, "  %s %-25s %-14s %s\n",
			style.Render(fmt.Sprintf("[%s]", a.Severity)), a.SubjectName, a.Type, a.Message)
		for _, e := range a.Evidence {
			fmt.Fprintf(&b, "      %s\n", dimStyle.Render(e))
		}
		for _, r := range a.Recommendations {
			fmt.Fprintf(&b, "      - %s\n", r)
		}
	}
	return b.String()
}

func renderLearningPath(path agents.LearningPath) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Plan de mejora (nivel %s)", path.Level)))
	b.WriteString("\n\n")
	b.WriteString(renderList("Objetivos", path.Objectives))
	b.WriteString("\n")

	if len(path.Weeks) == 0 {
		b.WriteString("Sin criterios a reforzar.\n")
	}
	for _, w := range path.Weeks {
		fmt.Fprintf(&b, "  Semana %d: %s %s\n", w.Week, w.Criterion,
			dimStyle.Render(fmt.Sprintf("(prioridad %s)", w.Priority)))
	}

	if len(path.GeneralResources) > 0 {
		b.WriteString("\n")
		b.WriteString(renderList("Recursos generales", path.GeneralResources))
	}
	return b.String()
}

func renderPlans(sequence []string, plans map[string]agents.EvaluationPlan) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Plan de evaluación"))
	b.WriteString("\n\n")

	total := 0
	for i, name := range sequence {
		plan, ok := plans[name]
		if !ok {
			continue
		}
		total += plan.EstimatedMinutes

		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, plan.Criterion,
			dimStyle.Render(fmt.Sprintf("(~%d min)", plan.EstimatedMinutes)))
		for _, step := range plan.Steps {
			fmt.Fprintf(&b, "     - %s\n", step)
		}
		if len(plan.RequiredEvidence) > 0 {
			fmt.Fprintf(&b, "     %s\n",
				dimStyle.Render("Evidencia: "+strings.Join(plan.RequiredEvidence, ", ")))
		}
	}

	fmt.Fprintf(&b, "\nTiempo estimado total: %d min\n", total)
	return b.String()
}

func renderList(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	return b.String()
}

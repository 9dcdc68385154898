package agents

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vmonsalve/rubrica/internal/evaluator"
)

// Trend and alert thresholds over the grade scale.
const (
	trendDelta          = 0.2 // grade movement below this is stable
	criticalGrade       = 2.0
	riskGrade           = 3.0
	sharpDropDelta      = 1.0
	stagnationWindow    = 3
	stagnationSpread    = 0.2
	plagiarismCandidate = 0.5
	plagiarismAlert     = 0.8
)

// Progress summarizes a subject's trajectory. History must be in
// chronological order; the trend compares latest against earliest.
func Progress(history []*evaluator.Evaluation) (SubjectProgress, bool) {
	if len(history) == 0 {
		return SubjectProgress{}, false
	}

	first := history[0]
	latest := history[len(history)-1]
	delta := latest.Grade - first.Grade

	trend := TrendStable
	switch {
	case delta > trendDelta:
		trend = TrendImproving
	case delta < -trendDelta:
		trend = TrendWorsening
	}

	sum := 0.0
	for _, ev := range history {
		sum += ev.Grade
	}

	return SubjectProgress{
		SubjectID:       latest.SubjectID,
		SubjectName:     latest.SubjectName,
		Evaluations:     len(history),
		FirstGrade:      first.Grade,
		LatestGrade:     latest.Grade,
		AverageGrade:    sum / float64(len(history)),
		Delta:           delta,
		Trend:           trend,
		StrongCriteria:  latest.Strengths,
		WeakCriteria:    latest.WeakAreas,
		LastEvaluatedAt: latest.CreatedAt,
	}, true
}

// GenerateAlerts inspects each subject's chronological history and
// raises academic-risk and progress alerts. The rules are independent;
// several may fire for one subject. Results come back sorted by
// severity, highest first, then by subject name for determinism.
func GenerateAlerts(histories map[string][]*evaluator.Evaluation) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	names := make([]string, 0, len(histories))
	for name := range histories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		history := histories[name]
		if len(history) == 0 {
			continue
		}
		latest := history[len(history)-1]

		alert := func(typ string, sev Severity, title, msg string, evidence, recs []string) {
			alerts = append(alerts, Alert{
				SubjectID:       latest.SubjectID,
				SubjectName:     latest.SubjectName,
				Type:            typ,
				Severity:        sev,
				Title:           title,
				Message:         msg,
				Evidence:        evidence,
				Recommendations: recs,
				CreatedAt:       now,
			})
		}

		switch {
		case latest.Grade < criticalGrade:
			alert(AlertAcademicRisk, SeverityCritical, "Riesgo académico crítico",
				fmt.Sprintf("Nota %.1f muy por debajo del mínimo aprobatorio", latest.Grade),
				[]string{fmt.Sprintf("Nota actual: %.1f/7.0", latest.Grade)},
				[]string{
					"Reunión urgente con el estudiante",
					"Revisar dificultades específicas",
					"Considerar apoyo académico adicional",
				})
		case latest.Grade < riskGrade:
			alert(AlertAcademicRisk, SeverityHigh, "Riesgo académico",
				fmt.Sprintf("Nota %.1f en zona de riesgo académico", latest.Grade),
				[]string{fmt.Sprintf("Nota actual: %.1f/7.0", latest.Grade)},
				[]string{
					"Seguimiento personalizado",
					"Identificar áreas de mejora específicas",
					"Proporcionar recursos adicionales",
				})
		}

		if len(history) >= 2 {
			prev := history[len(history)-2]
			if prev.Grade-latest.Grade > sharpDropDelta {
				alert(AlertProgress, SeverityHigh, "Deterioro rápido",
					fmt.Sprintf("Caída de %.1f a %.1f respecto de la evaluación anterior",
						prev.Grade, latest.Grade),
					[]string{
						fmt.Sprintf("Nota anterior: %.1f/7.0", prev.Grade),
						fmt.Sprintf("Nota actual: %.1f/7.0", latest.Grade),
						fmt.Sprintf("Diferencia: -%.1f", prev.Grade-latest.Grade),
					},
					[]string{
						"Investigar causas de la caída",
						"Revisar carga de trabajo",
						"Ofrecer apoyo adicional",
					})
			}
		}

		if len(history) >= stagnationWindow {
			window := history[len(history)-stagnationWindow:]
			lo, hi := window[0].Grade, window[0].Grade
			grades := make([]string, 0, stagnationWindow)
			for _, ev := range window {
				if ev.Grade < lo {
					lo = ev.Grade
				}
				if ev.Grade > hi {
					hi = ev.Grade
				}
				grades = append(grades, fmt.Sprintf("%.1f", ev.Grade))
			}
			if hi-lo < stagnationSpread {
				alert(AlertProgress, SeverityMedium, "Estancamiento",
					fmt.Sprintf("Sin variación de nota en las últimas %d evaluaciones",
						stagnationWindow),
					[]string{
						fmt.Sprintf("Notas recientes: %s", strings.Join(grades, ", ")),
						fmt.Sprintf("Variación: %.1f", hi-lo),
					},
					[]string{
						"Identificar barreras al aprendizaje",
						"Ajustar la estrategia de enseñanza",
						"Proponer desafíos adicionales",
					})
			}
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity.rank() != alerts[j].Severity.rank() {
			return alerts[i].Severity.rank() > alerts[j].Severity.rank()
		}
		return alerts[i].SubjectName < alerts[j].SubjectName
	})
	return alerts
}

// FindPlagiarismCandidates compares the latest evaluation of every
// subject pair, criterion by criterion: each shared criterion's
// feedback texts are compared as word sets independently, so one
// near-identical criterion flags the pair even when the rest diverge.
// This looks only at feedback wording, not repository contents, so it
// flags candidates for human review rather than proving anything.
func FindPlagiarismCandidates(latest map[string]*evaluator.Evaluation) ([]PlagiarismCandidate, []Alert) {
	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)

	var candidates []PlagiarismCandidate
	var alerts []Alert
	now := time.Now().UTC()

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := latest[names[i]], latest[names[j]]

			byName := map[string]string{}
			for _, res := range a.Results {
				byName[res.Criterion] = res.Feedback
			}

			for _, res := range b.Results {
				fa, ok := byName[res.Criterion]
				if !ok {
					continue
				}
				sim := wordSetSimilarity(fa, res.Feedback)
				if sim <= plagiarismCandidate {
					continue
				}

				candidates = append(candidates, PlagiarismCandidate{
					SubjectA:   names[i],
					SubjectB:   names[j],
					Criterion:  res.Criterion,
					Similarity: sim,
				})
				if sim > plagiarismAlert {
					alerts = append(alerts, Alert{
						SubjectID:   a.SubjectID,
						SubjectName: a.SubjectName,
						Type:        AlertPlagiarism,
						Severity:    SeverityHigh,
						Title:       "Posible similitud entre proyectos",
						Message: fmt.Sprintf("Retroalimentación casi idéntica con %s en el criterio %q",
							b.SubjectName, res.Criterion),
						Evidence: []string{
							fmt.Sprintf("Criterio: %s", res.Criterion),
							fmt.Sprintf("Similitud: %.2f", sim),
							fmt.Sprintf("Estudiantes: %s, %s", a.SubjectName, b.SubjectName),
						},
						Recommendations: []string{
							"Revisar manualmente ambos proyectos",
							"Verificar la originalidad del trabajo",
							"Aplicar las políticas de integridad académica",
						},
						CreatedAt: now,
					})
				}
			}
		}
	}
	return candidates, alerts
}

// wordSetSimilarity is |A∩B| / max(|A|,|B|) over lowercase word sets.
// Identical texts score 1.0, disjoint texts 0.0.
func wordSetSimilarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	common := 0
	for w := range wa {
		if wb[w] {
			common++
		}
	}
	larger := len(wa)
	if len(wb) > larger {
		larger = len(wb)
	}
	return float64(common) / float64(larger)
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[strings.Trim(w, ".,;:()¡!¿?\"")] = true
	}
	delete(set, "")
	return set
}

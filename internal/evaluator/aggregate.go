package evaluator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vmonsalve/rubrica/internal/rubric"
)

// Score bands for the qualitative split in the summary.
const (
	strengthThreshold = 80
	weaknessThreshold = 60
)

// Aggregate folds per-criterion results and adjustments into a final
// Evaluation for the subject. The weighted percentage is
// sum(score*weight) plus the adjustment deltas, clamped to [0,100];
// the grade follows the stepped conversion.
func Aggregate(r *rubric.Rubric, subject Subject, results []CriterionResult, adjustments []Adjustment) *Evaluation {
	weighted := 0.0
	for _, res := range results {
		if c, ok := r.Criterion(res.Criterion); ok {
			weighted += float64(res.Score) * c.Weight
		}
	}
	for _, a := range adjustments {
		weighted += a.Delta
	}
	percent := math.Min(100, math.Max(0, weighted))
	grade := rubric.GradeFromPercent(percent)

	status := StatusFailed
	if grade >= rubric.PassingGrade {
		status = StatusApproved
	}

	var strengths, weak []string
	for _, res := range results {
		switch {
		case res.Score >= strengthThreshold:
			strengths = append(strengths, res.Criterion)
		case res.Score < weaknessThreshold:
			weak = append(weak, res.Criterion)
		}
	}

	return &Evaluation{
		ID:          uuid.NewString(),
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Partner:     subject.Partner,
		Repository:  subject.Repository,
		CreatedAt:   time.Now().UTC(),
		Results:     results,
		Percent:     percent,
		Grade:       grade,
		Status:      status,
		Adjustments: adjustments,
		Strengths:   strengths,
		WeakAreas:   weak,
		Summary:     buildSummary(grade, percent, status, strengths, weak),
	}
}

// ErrorEvaluation builds the synthetic record for a subject whose
// repository could not be accessed: grade 1.0, percentage 0, status
// ERROR, no per-criterion results.
func ErrorEvaluation(subject Subject, cause error) *Evaluation {
	return &Evaluation{
		ID:          uuid.NewString(),
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Partner:     subject.Partner,
		Repository:  subject.Repository,
		CreatedAt:   time.Now().UTC(),
		Results:     []CriterionResult{},
		Percent:     0,
		Grade:       1.0,
		Status:      StatusError,
		Summary:     fmt.Sprintf("No fue posible acceder al repositorio: %v", cause),
	}
}

func buildSummary(grade, percent float64, status Status, strengths, weak []string) string {
	level := "Insuficiente"
	switch {
	case grade >= 6.0:
		level = "Excelente"
	case grade >= 5.0:
		level = "Bueno"
	case grade >= rubric.PassingGrade:
		level = "Suficiente"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Nota final %.1f (%.0f%% de logro). Desempeño: %s. Estado: %s.",
		grade, percent, level, status)
	if len(strengths) > 0 {
		fmt.Fprintf(&b, " Fortalezas: %s.", strings.Join(strengths, ", "))
	}
	if len(weak) > 0 {
		fmt.Fprintf(&b, " Áreas a mejorar: %s.", strings.Join(weak, ", "))
	}
	return b.String()
}

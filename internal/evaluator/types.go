package evaluator

import (
	"time"
)

// Status is the pass/fail outcome of one evaluation.
type Status string

const (
	// StatusApproved means the final grade reached the passing grade.
	StatusApproved Status = "APROBADO"
	// StatusFailed means the final grade fell below the passing grade.
	StatusFailed Status = "REPROBADO"
	// StatusError marks a synthetic evaluation for a subject whose
	// repository could not be accessed at all.
	StatusError Status = "ERROR"
)

// Subject identifies the entity being graded: a student (or pair) and
// their repository.
type Subject struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Partner    string `json:"partner,omitempty" yaml:"partner,omitempty"`
	Repository string `json:"repository" yaml:"repository"`
}

// CriterionResult is the outcome for one (subject, criterion) pair.
// Created exactly once, never mutated.
type CriterionResult struct {
	Criterion   string   `json:"criterion"`
	Score       int      `json:"score"` // 0-100
	Grade       float64  `json:"grade"` // 1.0-7.0
	Feedback    string   `json:"feedback"`
	Evidence    []string `json:"evidence"`
	Suggestions []string `json:"suggestions"`
}

// Adjustment is a named additive percentage-point delta applied to the
// weighted percentage before clamping: bonuses positive, penalties
// negative.
type Adjustment struct {
	Name  string  `json:"name"`
	Delta float64 `json:"delta"`
}

// Evaluation is the complete grading record for one subject. Immutable
// once built by the aggregator; serializes to a flat structure with no
// cycles.
type Evaluation struct {
	ID          string            `json:"id"`
	SubjectID   string            `json:"subject_id"`
	SubjectName string            `json:"subject_name"`
	Partner     string            `json:"partner,omitempty"`
	Repository  string            `json:"repository"`
	CreatedAt   time.Time         `json:"created_at"`
	Results     []CriterionResult `json:"results"`
	Percent     float64           `json:"percent"`
	Grade       float64           `json:"grade"`
	Status      Status            `json:"status"`
	Adjustments []Adjustment      `json:"adjustments,omitempty"`
	Strengths   []string          `json:"strengths,omitempty"`
	WeakAreas   []string          `json:"weak_areas,omitempty"`
	Summary     string            `json:"summary"`
	Duration    time.Duration     `json:"duration"`
}

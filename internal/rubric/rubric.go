// Package rubric defines the weighted grading rubric model and the
// percentage-to-grade conversion used across the evaluator and agents.
package rubric

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// weightTolerance is how far the criterion weight sum may deviate from 1.0.
const weightTolerance = 0.02

// ErrInvalidRubric reports a rubric definition that cannot be graded
// against: a weight outside [0,1] or a weight sum away from 1.0.
var ErrInvalidRubric = errors.New("invalid rubric")

// Criterion is one weighted grading criterion. Immutable once its Rubric
// is constructed.
type Criterion struct {
	// Name is unique within a rubric.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Weight is the criterion's share of the final percentage, 0.0-1.0.
	Weight float64 `yaml:"weight"`

	// Levels maps achievement percentage (0,20,40,60,80,100) to the
	// descriptor text for that level.
	Levels map[int]string `yaml:"levels"`

	// EvidenceHints lists repository paths worth inspecting for this
	// criterion. Advisory only; forwarded to the prompt.
	EvidenceHints []string `yaml:"evidence_hints,omitempty"`
}

// Rubric is an ordered, read-only set of criteria. Order is significant
// for deterministic prompt numbering but not for scoring.
type Rubric struct {
	Name        string
	Description string

	criteria []Criterion
}

// Definition is the external rubric definition format.
type Definition struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Criteria    []Criterion `yaml:"criteria"`
}

// New builds a Rubric from a definition, validating every weight and the
// weight sum. Fails with ErrInvalidRubric on any violation; a rubric that
// fails here must abort before any evaluation starts.
func New(def Definition) (*Rubric, error) {
	if len(def.Criteria) == 0 {
		return nil, fmt.Errorf("%w: no criteria defined", ErrInvalidRubric)
	}

	seen := make(map[string]bool, len(def.Criteria))
	sum := 0.0
	for _, c := range def.Criteria {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: criterion with empty name", ErrInvalidRubric)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate criterion %q", ErrInvalidRubric, c.Name)
		}
		seen[c.Name] = true

		if c.Weight < 0 || c.Weight > 1 {
			return nil, fmt.Errorf("%w: criterion %q weight %.3f outside [0,1]",
				ErrInvalidRubric, c.Name, c.Weight)
		}
		sum += c.Weight
	}

	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %.3f, expected 1.0 ±%.2f",
			ErrInvalidRubric, sum, weightTolerance)
	}

	criteria := make([]Criterion, len(def.Criteria))
	copy(criteria, def.Criteria)

	return &Rubric{
		Name:        def.Name,
		Description: def.Description,
		criteria:    criteria,
	}, nil
}

// LoadFile reads a YAML rubric definition and builds a Rubric from it.
func LoadFile(path string) (*Rubric, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse rubric file: %w", err)
	}

	return New(def)
}

// Criteria returns the criteria in definition order. The returned slice
// is a copy; the rubric stays read-only.
func (r *Rubric) Criteria() []Criterion {
	out := make([]Criterion, len(r.criteria))
	copy(out, r.criteria)
	return out
}

// Len returns the number of criteria.
func (r *Rubric) Len() int {
	return len(r.criteria)
}

// Criterion returns the named criterion, if present.
func (r *Rubric) Criterion(name string) (Criterion, bool) {
	for _, c := range r.criteria {
		if c.Name == name {
			return c, true
		}
	}
	return Criterion{}, false
}

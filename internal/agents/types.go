// Package agents layers analysis, recommendation and monitoring over
// accumulated evaluations. The agents mix deterministic statistics with
// optional LLM commentary; a dead or misbehaving backend degrades every
// agent to its deterministic core.
package agents

import "time"

// Severity ranks an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// rank orders severities for sorting, highest first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Priority ranks a recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Trend classifies grade movement across a subject's history.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// Insight types.
const (
	InsightTrend          = "trend"
	InsightCommonIssue    = "common_issue"
	InsightRecommendation = "recommendation"
)

// Insight is a derived observation over a collection of evaluations.
// Ephemeral: insights are reported, never fed back into evaluations.
type Insight struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Criteria    []string `json:"criteria,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// Alert types.
const (
	AlertAcademicRisk = "academic_risk"
	AlertProgress     = "progress"
	AlertPlagiarism   = "plagiarism"
)

// Alert flags a subject needing attention. Evidence lists the facts the
// rule fired on; Recommendations list the suggested follow-up actions.
type Alert struct {
	SubjectID       string    `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	Type            string    `json:"type"`
	Severity        Severity  `json:"severity"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Evidence        []string  `json:"evidence"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubjectProgress summarizes one subject's grade trajectory. Recomputed
// on demand from the evaluation history, never persisted.
type SubjectProgress struct {
	SubjectID       string    `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	Evaluations     int       `json:"evaluations"`
	FirstGrade      float64   `json:"first_grade"`
	LatestGrade     float64   `json:"latest_grade"`
	AverageGrade    float64   `json:"average_grade"`
	Delta           float64   `json:"delta"`
	Trend           Trend     `json:"trend"`
	StrongCriteria  []string  `json:"strong_criteria,omitempty"`
	WeakCriteria    []string  `json:"weak_criteria,omitempty"`
	LastEvaluatedAt time.Time `json:"last_evaluated_at"`
}

// CriterionStat aggregates one criterion's scores across evaluations.
type CriterionStat struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
}

// Recommendation is targeted improvement advice for one criterion.
type Recommendation struct {
	Criterion   string   `json:"criterion"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Resources   []string `json:"resources"`
	Effort      string   `json:"effort"`
	Difficulty  string   `json:"difficulty"`
}

// WeekPlan is one slot of a learning path.
type WeekPlan struct {
	Week      int      `json:"week"`
	Criterion string   `json:"criterion"`
	Priority  Priority `json:"priority"`
}

// LearningPath sequences improvement work over consecutive weeks, with
// level-appropriate objectives and general study resources.
type LearningPath struct {
	SubjectName      string     `json:"subject_name"`
	Level            string     `json:"level"` // beginner, intermediate, advanced
	Objectives       []string   `json:"objectives"`
	Weeks            []WeekPlan `json:"weeks"`
	GeneralResources []string   `json:"general_resources"`
}

// PlagiarismCandidate is a subject pair whose feedback text for one
// criterion is suspiciously similar.
type PlagiarismCandidate struct {
	SubjectA   string  `json:"subject_a"`
	SubjectB   string  `json:"subject_b"`
	Criterion  string  `json:"criterion"`
	Similarity float64 `json:"similarity"`
}

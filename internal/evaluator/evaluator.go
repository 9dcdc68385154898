// Package evaluator grades one repository against a weighted rubric:
// one LLM call per criterion, tolerant response parsing with a
// deterministic fallback, and aggregation into a final graded record.
package evaluator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vmonsalve/rubrica/internal/evidence"
	"github.com/vmonsalve/rubrica/internal/llm"
	"github.com/vmonsalve/rubrica/internal/rubric"
)

// Options tune the per-criterion generation calls.
type Options struct {
	// MaxTokens per criterion response. Default: 1500.
	MaxTokens int

	// Temperature for generation. Default: 0 (deterministic).
	Temperature float64

	// SkipAdjustments disables the snapshot bonus/penalty rules.
	SkipAdjustments bool

	// Advanced runs each criterion through the plan-reason-evaluate-
	// review chain instead of a single call. Slower and costlier; the
	// reasoning and self-review land in the logs.
	Advanced bool
}

func (o Options) withDefaults() Options {
	if o.MaxTokens == 0 {
		o.MaxTokens = 1500
	}
	return o
}

// Service runs complete evaluations. Safe for concurrent use when the
// underlying Provider and Fetcher are.
type Service struct {
	provider llm.Provider
	rubric   *rubric.Rubric
	fetcher  evidence.Fetcher
	opts     Options
	log      *zap.Logger
}

// NewService wires an evaluation service. A nil logger disables logging.
func NewService(provider llm.Provider, r *rubric.Rubric, fetcher evidence.Fetcher, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		provider: provider,
		rubric:   r,
		fetcher:  fetcher,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// Evaluate grades one subject. Repository access failure yields a
// synthetic ERROR evaluation rather than an error: a batch run must
// account for every subject. The returned error is reserved for
// context cancellation.
func (s *Service) Evaluate(ctx context.Context, subject Subject) (*Evaluation, error) {
	started := time.Now()

	snap, err := s.fetcher.Fetch(ctx, subject.Repository)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.log.Warn("repository inaccessible",
			zap.String("subject", subject.Name),
			zap.String("repository", subject.Repository),
			zap.Error(err))
		ev := ErrorEvaluation(subject, err)
		ev.Duration = time.Since(started)
		return ev, nil
	}

	results := make([]CriterionResult, 0, s.rubric.Len())
	for _, c := range s.rubric.Criteria() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.opts.Advanced {
			adv := s.EvaluateCriterionAdvanced(ctx, c, snap)
			s.log.Debug("criterion self-review",
				zap.String("criterion", c.Name),
				zap.Float64("confidence", adv.Confidence),
				zap.Strings("checks", adv.Checks))
			results = append(results, adv.CriterionResult)
			continue
		}
		results = append(results, s.evaluateCriterion(ctx, c, snap))
	}

	var adjustments []Adjustment
	if !s.opts.SkipAdjustments {
		adjustments = ComputeAdjustments(snap)
	}

	ev := Aggregate(s.rubric, subject, results, adjustments)
	ev.Duration = time.Since(started)

	s.log.Info("subject evaluated",
		zap.String("subject", subject.Name),
		zap.Float64("grade", ev.Grade),
		zap.String("status", string(ev.Status)),
		zap.Duration("duration", ev.Duration))
	return ev, nil
}

// evaluateCriterion makes one generation call and parses whatever comes
// back. A failed call degrades to the parser's fallback on empty text;
// the criterion is never skipped.
func (s *Service) evaluateCriterion(ctx context.Context, c rubric.Criterion, snap *evidence.Snapshot) CriterionResult {
	ctx = llm.WithPurpose(ctx, "criterion-eval")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildCriterionPrompt(c, snap)},
		},
		Schema:      criterionResultSchema(),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.log.Warn("criterion call failed, using fallback",
			zap.String("criterion", c.Name),
			zap.Error(err))
		return ParseCriterionResponse("", c.Name)
	}

	return ParseCriterionResponse(string(resp.Content), c.Name)
}

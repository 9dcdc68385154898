// Package batch runs evaluations for a roster of subjects with bounded
// concurrency. Every subject is accounted for exactly once: it ends up
// either in the evaluation list or in the failure list, never both and
// never neither.
package batch

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vmonsalve/rubrica/internal/evaluator"
)

// Evaluator grades a single subject. Satisfied by *evaluator.Service.
type Evaluator interface {
	Evaluate(ctx context.Context, subject evaluator.Subject) (*evaluator.Evaluation, error)
}

// Failure records a subject whose evaluation did not produce a record
// at all (panic or unexpected defect). Repository-access problems are
// not failures; they yield synthetic ERROR evaluations instead.
type Failure struct {
	Subject evaluator.Subject
	Err     error
}

// Result is the outcome of one batch run. Evaluations follow roster
// order regardless of concurrency.
type Result struct {
	Evaluations []*evaluator.Evaluation
	Failures    []Failure
	Stats       Stats
}

// Stats summarizes the completed evaluations of a run.
type Stats struct {
	Evaluated int
	Failed    int
	MeanGrade float64
	MinGrade  float64
	MaxGrade  float64
	PassRate  float64
}

// Runner executes batch runs over an Evaluator.
type Runner struct {
	eval Evaluator
	log  *zap.Logger
}

// NewRunner wires a batch runner. A nil logger disables logging.
func NewRunner(eval Evaluator, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{eval: eval, log: log}
}

type outcome struct {
	idx  int
	subj evaluator.Subject
	ev   *evaluator.Evaluation
	err  error
}

// Run evaluates every subject. Concurrency 1 (or less) processes the
// roster strictly sequentially in input order; higher values bound the
// number of in-flight evaluations. One subject's failure never stops
// the others; only context cancellation aborts the run early.
func (r *Runner) Run(ctx context.Context, subjects []evaluator.Subject, concurrency int) (*Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	var outcomes []outcome
	if concurrency == 1 {
		for i, s := range subjects {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ev, err := r.runOne(ctx, s)
			outcomes = append(outcomes, outcome{idx: i, subj: s, ev: ev, err: err})
		}
	} else {
		outcomes = r.runConcurrent(ctx, subjects, concurrency)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for _, o := range outcomes {
		if o.err != nil {
			r.log.Error("subject evaluation failed",
				zap.String("subject", o.subj.Name),
				zap.Error(o.err))
			res.Failures = append(res.Failures, Failure{Subject: o.subj, Err: o.err})
			continue
		}
		res.Evaluations = append(res.Evaluations, o.ev)
	}
	res.Stats = computeStats(res.Evaluations, len(res.Failures))

	r.log.Info("batch run complete",
		zap.Int("subjects", len(subjects)),
		zap.Int("evaluated", res.Stats.Evaluated),
		zap.Int("failed", res.Stats.Failed))
	return res, nil
}

func (r *Runner) runConcurrent(ctx context.Context, subjects []evaluator.Subject, concurrency int) []outcome {
	done := make(chan outcome)

	go func() {
		var g errgroup.Group
		g.SetLimit(concurrency)
		for i, s := range subjects {
			g.Go(func() error {
				ev, err := r.runOne(ctx, s)
				done <- outcome{idx: i, subj: s, ev: ev, err: err}
				return nil
			})
		}
		g.Wait()
		close(done)
	}()

	outcomes := make([]outcome, 0, len(subjects))
	for o := range done {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].idx < outcomes[j].idx })
	return outcomes
}

// runOne isolates one subject's evaluation: a panic inside the pipeline
// becomes that subject's failure instead of killing the run.
func (r *Runner) runOne(ctx context.Context, s evaluator.Subject) (ev *evaluator.Evaluation, err error) {
	defer func() {
		if p := recover(); p != nil {
			ev = nil
			err = fmt.Errorf("evaluation panicked: %v", p)
		}
	}()
	return r.eval.Evaluate(ctx, s)
}

func computeStats(evals []*evaluator.Evaluation, failed int) Stats {
	st := Stats{Evaluated: len(evals), Failed: failed}
	if len(evals) == 0 {
		return st
	}

	sum := 0.0
	st.MinGrade = evals[0].Grade
	st.MaxGrade = evals[0].Grade
	passed := 0
	for _, ev := range evals {
		sum += ev.Grade
		if ev.Grade < st.MinGrade {
			st.MinGrade = ev.Grade
		}
		if ev.Grade > st.MaxGrade {
			st.MaxGrade = ev.Grade
		}
		if ev.Status == evaluator.StatusApproved {
			passed++
		}
	}
	st.MeanGrade = sum / float64(len(evals))
	st.PassRate = float64(passed) / float64(len(evals))
	return st
}

// Package run drives the evaluation of templates.
//
// Templates are evaluated in dependency order, either sequentially or with
// bounded concurrency. A template is frozen as soon as its evaluation
// returns, which resolves the pending edges of its consumers. Edges that are
// still pending once every template has been evaluated are a configuration
// error and fail the run.
package run

import (
	"context"
	"sort"

	"github.com/segmentio/ksuid"
	"github.com/weft/weft/graph"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// An EvalFunc evaluates a single template. The function is expected to
// declare the template's resources and dependencies against the manager it
// was created with.
type EvalFunc func(ctx context.Context, templateID string) error

// A Runner evaluates templates.
type Runner struct {
	Logger *zap.Logger

	// Concurrency sets the maximum number of templates evaluated in
	// parallel. Zero or one evaluates sequentially in topological order.
	Concurrency int
}

// Run evaluates the given templates against the manager.
//
// Each template is evaluated once and frozen when its evaluation returns.
// Structural errors (cycles, unresolved outputs) abort the run. After all
// templates have been evaluated, edges that never resolved are reported as
// one UnresolvedOutputError per missing output.
func (r *Runner) Run(ctx context.Context, m *graph.Manager, templates []string, eval EvalFunc) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("run_id", ksuid.New().String()),
	)

	order, err := m.TopologicalOrder(templates)
	if err != nil {
		return err
	}
	logger.Info("Run", zap.Int("templates", len(order)))

	if r.Concurrency > 1 {
		err = r.parallel(ctx, logger, m, order, eval)
	} else {
		err = r.sequential(ctx, logger, m, order, eval)
	}
	if err != nil {
		return err
	}

	return pendingErr(m)
}

func (r *Runner) sequential(ctx context.Context, logger *zap.Logger, m *graph.Manager, order []string, eval EvalFunc) error {
	for _, id := range order {
		if err := evalOne(ctx, logger, m, id, eval); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) parallel(ctx context.Context, logger *zap.Logger, m *graph.Manager, order []string, eval EvalFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, r.Concurrency)
	for _, id := range order {
		id := id
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()
			return evalOne(ctx, logger, m, id, eval)
		})
	}
	return g.Wait()
}

func evalOne(ctx context.Context, logger *zap.Logger, m *graph.Manager, id string, eval EvalFunc) error {
	logger.Info("Evaluate", zap.String("template", id))
	if err := eval(ctx, id); err != nil {
		logger.Error("Evaluate failed", zap.String("template", id), zap.Error(err))
		return err
	}
	if err := m.Freeze(id); err != nil {
		logger.Error("Freeze failed", zap.String("template", id), zap.Error(err))
		return err
	}
	return nil
}

// pendingErr reports edges that are still pending at the end of a run. Their
// producers were never frozen within the run, so nothing will ever resolve
// them.
func pendingErr(m *graph.Manager) error {
	pending := m.Unresolved()
	if len(pending) == 0 {
		return nil
	}

	type key struct{ producer, output string }
	consumers := make(map[key][]string)
	keys := make([]key, 0, len(pending))
	for _, e := range pending {
		k := key{producer: e.Producer, output: e.Output}
		if _, ok := consumers[k]; !ok {
			keys = append(keys, k)
		}
		consumers[k] = append(consumers[k], e.Consumer)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].producer != keys[j].producer {
			return keys[i].producer < keys[j].producer
		}
		return keys[i].output < keys[j].output
	})

	var err error
	for _, k := range keys {
		cc := consumers[k]
		sort.Strings(cc)
		err = multierr.Append(err, graph.UnresolvedOutputError{
			Producer:  k.producer,
			Output:    k.output,
			Consumers: cc,
		})
	}
	return err
}

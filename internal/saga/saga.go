// Package saga runs a sequence of steps with compensation instead of a
// distributed transaction: when a step fails, the compensations of every
// previously successful step run in reverse order.
package saga

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is a single unit of work. Compensate undoes Execute's effects; a
// nil-op Compensate is valid for best-effort or irreversible steps.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger.With(slog.String("component", "saga"))}
}

// Run executes steps in order. On failure it compensates the completed
// steps LIFO and returns the failing step's error; compensation errors are
// logged but never mask it.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	var done []Step

	for _, step := range steps {
		r.logger.Debug("executing step", slog.String("step", step.Name))
		if err := step.Execute(ctx); err != nil {
			r.logger.Error("step failed, starting rollback",
				slog.String("step", step.Name), slog.Any("error", err))
			r.rollback(ctx, done)
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
		done = append(done, step)
	}

	return nil
}

func (r *Runner) rollback(ctx context.Context, steps []Step) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if step.Compensate == nil {
			continue
		}
		r.logger.Debug("compensating step", slog.String("step", step.Name))
		if err := step.Compensate(ctx); err != nil {
			r.logger.Error("failed to compensate step",
				slog.String("step", step.Name), slog.Any("error", err))
		}
	}
}

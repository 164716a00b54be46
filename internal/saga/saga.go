// internal/saga/saga.go
package saga

import (
	"context"
	"fmt"

	"bgde_trainer/internal/middleware"
)

// Step is one unit of a multi-part update. Apply performs the effect;
// Rollback undoes it and must tolerate being called after a partial apply
// of later steps failed.
type Step struct {
	Name     string
	Apply    func(ctx context.Context) error
	Rollback func(ctx context.Context)
}

// Run applies the steps in order. When a step fails, the already applied
// steps are rolled back in reverse order and the step's error is returned
// wrapped with its name. Rollback funcs may be nil for read-only steps.
func Run(ctx context.Context, steps []Step) error {
	logger := middleware.GetLogger(ctx)

	for i, step := range steps {
		if err := step.Apply(ctx); err != nil {
			logger.Warn("Update step failed, rolling back",
				"step", step.Name,
				"applied_steps", i,
				"error", err,
			)
			for j := i - 1; j >= 0; j-- {
				if steps[j].Rollback != nil {
					steps[j].Rollback(ctx)
				}
			}
			return fmt.Errorf("saga: step %s: %w", step.Name, err)
		}
	}
	return nil
}

// Package filtering holds the steps a fresh search result passes through
// before it is scored and stored.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/headhunter"
)

// Filter represents a single step applied to scraped listings.
type Filter interface {
	Name() string
	Apply(ctx context.Context, l *headhunter.Listings) (*headhunter.Listings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

func newStep(initial, left int) Step {
	return Step{Initial: initial, Dropped: initial - left, Left: left}
}

// Run executes the supplied filters sequentially. The input is never modified.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, l *headhunter.Listings) (*headhunter.Listings, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	current := &headhunter.Listings{}
	if l != nil {
		current.Items = append(current.Items, l.Items...)
	}

	for _, step := range steps {
		next, info, err := step.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		current = next
	}

	return current, nil
}

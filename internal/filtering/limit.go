package filtering

import (
	"context"

	"github.com/spigell/job-helper/internal/headhunter"
)

type limitFilter struct {
	max int
}

// NewLimit keeps at most n listings in scrape order.
func NewLimit(n int) Filter {
	return &limitFilter{max: n}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Apply(_ context.Context, l *headhunter.Listings) (*headhunter.Listings, Step, error) {
	initial := l.Len()
	next := &headhunter.Listings{Items: l.Head(f.max)}

	return next, newStep(initial, next.Len()), nil
}

package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/job-helper/internal/headhunter"
)

// StoredChecker reports whether a listing was already saved for a profile.
type StoredChecker interface {
	HasVacancy(ctx context.Context, profileID uint, externalID string) (bool, error)
}

type storedFilter struct {
	checker   StoredChecker
	profileID uint
}

// NewStored drops listings that are already stored for the profile.
func NewStored(checker StoredChecker, profileID uint) Filter {
	return &storedFilter{checker: checker, profileID: profileID}
}

func (f *storedFilter) Name() string { return "stored" }

func (f *storedFilter) Apply(ctx context.Context, l *headhunter.Listings) (*headhunter.Listings, Step, error) {
	initial := l.Len()
	if f.checker == nil {
		return l, Step{}, fmt.Errorf("stored checker is required")
	}

	next := &headhunter.Listings{}
	for _, listing := range l.Items {
		exists, err := f.checker.HasVacancy(ctx, f.profileID, listing.ID)
		if err != nil {
			return l, Step{}, fmt.Errorf("check listing %s: %w", listing.ID, err)
		}
		if exists {
			continue
		}
		next.Items = append(next.Items, listing)
	}

	return next, newStep(initial, next.Len()), nil
}

// Package search runs one vacancy search for a stored profile.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/filtering"
	"github.com/spigell/job-helper/internal/headhunter"
	"github.com/spigell/job-helper/internal/logger"
	"github.com/spigell/job-helper/internal/profile"
	"github.com/spigell/job-helper/internal/storage"
)

const (
	// SaveLimit is how many scraped listings are considered for storing.
	SaveLimit = 10
	// DigestSize is how many listings are shown to the user.
	DigestSize = 5
)

var ErrNoProfile = errors.New("profile not found")

type Scraper interface {
	Search(ctx context.Context, roles, cities []string, minSalary int) *headhunter.Listings
}

type Store interface {
	GetProfile(ctx context.Context, userID int64) (*profile.Profile, error)
	HasVacancy(ctx context.Context, profileID uint, externalID string) (bool, error)
	CreateVacancies(ctx context.Context, vacancies []*storage.Vacancy) (int64, error)
}

type ScoreFunc func(l *headhunter.Listing, p *profile.Profile) int

type Deps struct {
	Scraper Scraper
	Store   Store
	Score   ScoreFunc
	Logger  *zap.Logger
}

type Handler struct {
	deps Deps
}

// Result holds every scraped listing in scrape order and how many were stored.
type Result struct {
	Profile  *profile.Profile
	Listings *headhunter.Listings
	Saved    int
}

func (r *Result) Found() int {
	return r.Listings.Len()
}

func New(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Handler{deps: deps}
}

// LoadProfile returns ErrNoProfile when the user has not been onboarded.
func (h *Handler) LoadProfile(ctx context.Context, userID int64) (*profile.Profile, error) {
	p, err := h.deps.Store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// Run scrapes listings for the profile of userID and stores the new ones.
func (h *Handler) Run(ctx context.Context, userID int64) (*Result, error) {
	p, err := h.LoadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	log := h.deps.Logger.With(
		zap.String(logger.FieldSearchID, uuid.NewString()),
		zap.Int64(logger.FieldUserID, userID),
	)
	log.Info("search started",
		zap.Strings("roles", p.Roles),
		zap.Strings("cities", p.Cities),
		zap.Int("salary_min", p.SalaryMin),
	)

	found := h.deps.Scraper.Search(ctx, p.Roles, p.Cities, p.SalaryMin)
	result := &Result{Profile: p, Listings: found}
	if found.Len() == 0 {
		log.Info("nothing found")
		return result, nil
	}

	steps := []filtering.Filter{
		filtering.NewLimit(SaveLimit),
		filtering.NewStored(h.deps.Store, p.ID),
	}
	fresh, err := filtering.Run(ctx, log, steps, found)
	if err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}

	vacancies := make([]*storage.Vacancy, 0, fresh.Len())
	for _, l := range fresh.Items {
		vacancies = append(vacancies, storage.NewVacancy(p.ID, l, h.deps.Score(l, p)))
	}

	saved, err := h.deps.Store.CreateVacancies(ctx, vacancies)
	if err != nil {
		return nil, fmt.Errorf("save listings: %w", err)
	}
	result.Saved = int(saved)

	log.Info("search finished",
		zap.Int("found", found.Len()),
		zap.Int("saved", result.Saved),
	)

	return result, nil
}

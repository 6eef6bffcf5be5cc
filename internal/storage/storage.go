// Package storage persists profiles and vacancies through gorm.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spigell/job-helper/internal/profile"
)

const (
	DefaultDatabaseURL = "job_helper.db"
	sqlitePrefix       = "sqlite://"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrProfileExists = errors.New("profile already exists")
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to the database behind url and migrates the schema.
// postgres:// and postgresql:// urls go to PostgreSQL, anything else is a SQLite file.
func Open(ctx context.Context, url string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(dialectorFor(url), &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&User{}, &Vacancy{}, &Interview{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func dialectorFor(url string) gorm.Dialector {
	url = strings.TrimSpace(url)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url)
	case url == "":
		return sqlite.Open(DefaultDatabaseURL)
	default:
		return sqlite.Open(strings.TrimPrefix(url, sqlitePrefix))
	}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetProfile returns the profile of a Telegram user or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, userID int64) (*profile.Profile, error) {
	var user User
	err := s.db.WithContext(ctx).Where("tg_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return user.Profile(), nil
}

// CreateProfile inserts the profile in a single write and fills in its ID.
func (s *Store) CreateProfile(ctx context.Context, p *profile.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}

	user := newUser(p)
	err := s.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	p.ID = user.ID
	return nil
}

// HasVacancy reports whether the listing is already stored for the profile.
func (s *Store) HasVacancy(ctx context.Context, profileID uint, externalID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Vacancy{}).
		Where("user_id = ? AND hh_vacancy_id = ?", profileID, externalID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check vacancy: %w", err)
	}

	return count > 0, nil
}

// CreateVacancies inserts all rows in one statement. Rows already stored for
// the same profile are skipped; the number of inserted rows is returned.
func (s *Store) CreateVacancies(ctx context.Context, vacancies []*Vacancy) (int64, error) {
	if len(vacancies) == 0 {
		return 0, nil
	}

	now := s.now().UTC()
	for _, v := range vacancies {
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "hh_vacancy_id"}},
			DoNothing: true,
		}).
		Create(&vacancies)
	if res.Error != nil {
		return 0, fmt.Errorf("create vacancies: %w", res.Error)
	}

	return res.RowsAffected, nil
}

func (s *Store) CountVacancies(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Vacancy{}).Where("user_id = ?", profileID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count vacancies: %w", err)
	}

	return count, nil
}

func (s *Store) GetVacancy(ctx context.Context, profileID uint, externalID string) (*Vacancy, error) {
	var vacancy Vacancy
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND hh_vacancy_id = ?", profileID, externalID).
		First(&vacancy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vacancy: %w", err)
	}

	return &vacancy, nil
}

func (s *Store) SaveCoverLetter(ctx context.Context, vacancyID uint, letter string) error {
	return s.updateVacancy(ctx, vacancyID, map[string]any{"cover_letter": letter})
}

// MarkResponded moves the vacancy to the responded status.
func (s *Store) MarkResponded(ctx context.Context, vacancyID uint) error {
	return s.updateVacancy(ctx, vacancyID, map[string]any{
		"status":       StatusResponded,
		"responded_at": s.now().UTC(),
	})
}

func (s *Store) updateVacancy(ctx context.Context, vacancyID uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&Vacancy{}).Where("id = ?", vacancyID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update vacancy: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// isUniqueViolation covers drivers that do not translate constraint errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

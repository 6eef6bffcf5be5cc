package storage

import (
	"time"

	"github.com/spigell/job-helper/internal/headhunter"
	"github.com/spigell/job-helper/internal/profile"
)

type VacancyStatus string

const (
	StatusNew       VacancyStatus = "new"
	StatusResponded VacancyStatus = "responded"
	StatusRejected  VacancyStatus = "rejected"
)

// User is a stored profile, one per Telegram user.
type User struct {
	ID                    uint   `gorm:"primaryKey"`
	TgID                  int64  `gorm:"uniqueIndex;not null"`
	FullName              string `gorm:"not null"`
	ExperienceYears       int    `gorm:"not null"`
	CurrentGrade          string `gorm:"not null"`
	SalaryMin             int    `gorm:"not null"`
	SalaryMax             int    `gorm:"not null"`
	PreferredRoles        string `gorm:"not null"`
	PreferredCities       string `gorm:"not null"`
	PreferredTechnologies string `gorm:"not null"`
	CreatedAt             time.Time

	Vacancies  []Vacancy   `gorm:"constraint:OnDelete:CASCADE"`
	Interviews []Interview `gorm:"constraint:OnDelete:CASCADE"`
}

type Vacancy struct {
	ID             uint          `gorm:"primaryKey"`
	UserID         uint          `gorm:"not null;uniqueIndex:ux_vacancies_user_hh_id,priority:1"`
	HHVacancyID    string        `gorm:"column:hh_vacancy_id;not null;uniqueIndex:ux_vacancies_user_hh_id,priority:2"`
	Title          string        `gorm:"not null"`
	Company        string        `gorm:"not null"`
	SalaryFrom     *int
	SalaryTo       *int
	Description    string        `gorm:"type:text;not null"`
	URL            string        `gorm:"not null"`
	RelevanceScore int           `gorm:"not null;default:0"`
	Status         VacancyStatus `gorm:"not null;default:new"`
	RespondedAt    *time.Time
	CoverLetter    *string `gorm:"type:text"`
	CreatedAt      time.Time
}

// Interview is kept for schema completeness; nothing reads or writes it yet.
type Interview struct {
	ID                 uint   `gorm:"primaryKey"`
	UserID             uint   `gorm:"not null"`
	Company            string `gorm:"not null"`
	Position           string `gorm:"not null"`
	InterviewDate      *time.Time
	InterviewType      string  `gorm:"not null;default:phone"`
	Checklist          *string `gorm:"type:text"`
	InterviewQuestions *string `gorm:"type:text"`
	Status             string  `gorm:"not null;default:scheduled"`
	CreatedAt          time.Time
}

func (User) TableName() string      { return "users" }
func (Vacancy) TableName() string   { return "vacancies" }
func (Interview) TableName() string { return "interviews" }

func newUser(p *profile.Profile) *User {
	return &User{
		TgID:                  p.UserID,
		FullName:              p.Name,
		ExperienceYears:       p.Experience,
		CurrentGrade:          string(p.Grade),
		SalaryMin:             p.SalaryMin,
		SalaryMax:             p.SalaryMax,
		PreferredRoles:        profile.JoinList(p.Roles),
		PreferredCities:       profile.JoinList(p.Cities),
		PreferredTechnologies: profile.JoinList(p.Technologies),
		CreatedAt:             p.CreatedAt,
	}
}

// Profile converts the row back to the domain type.
func (u *User) Profile() *profile.Profile {
	return &profile.Profile{
		ID:           u.ID,
		UserID:       u.TgID,
		Name:         u.FullName,
		Experience:   u.ExperienceYears,
		Grade:        profile.Grade(u.CurrentGrade),
		SalaryMin:    u.SalaryMin,
		SalaryMax:    u.SalaryMax,
		Roles:        profile.SplitList(u.PreferredRoles),
		Cities:       profile.SplitList(u.PreferredCities),
		Technologies: profile.SplitList(u.PreferredTechnologies),
		CreatedAt:    u.CreatedAt,
	}
}

// NewVacancy builds a row for a freshly scraped listing.
func NewVacancy(profileID uint, l *headhunter.Listing, score int) *Vacancy {
	return &Vacancy{
		UserID:         profileID,
		HHVacancyID:    l.ID,
		Title:          l.Title,
		Company:        l.Company,
		SalaryFrom:     l.SalaryFrom,
		SalaryTo:       l.SalaryTo,
		Description:    l.Description,
		URL:            l.URL,
		RelevanceScore: score,
		Status:         StatusNew,
	}
}

// Listing converts the row back to the scraped form.
func (v *Vacancy) Listing() *headhunter.Listing {
	return &headhunter.Listing{
		ID:          v.HHVacancyID,
		Title:       v.Title,
		Company:     v.Company,
		SalaryFrom:  v.SalaryFrom,
		SalaryTo:    v.SalaryTo,
		Description: v.Description,
		URL:         v.URL,
	}
}

// Package onboarding drives the seven step conversation that collects a profile.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/logger"
	"github.com/spigell/job-helper/internal/profile"
)

const (
	PromptName         = "🚀 What is your name?"
	PromptExperience   = "How many years of experience do you have? (a number)"
	PromptGrade        = "Your grade: <b>%s</b>? (junior/middle/senior)"
	PromptSalary       = "Minimum salary? (a number, for example: 100000)"
	PromptRoles        = "Which roles? (comma separated)\nExample: Backend, DevOps"
	PromptCities       = "Which cities? (comma separated)\nExample: Москва, Санкт-Петербург, Remote"
	PromptTechnologies = "Which technologies? (comma separated)\nExample: Python, Docker, SQL"
	MessageCreated     = "✅ Profile created! 🎉"

	errNumber = "❌ Please send a number!"
	errGrade  = "❌ Choose one of: junior, middle, senior"
	errName   = "❌ Please send your name."
)

const (
	keyName         = "name"
	keyExperience   = "experience"
	keyGrade        = "grade"
	keySalaryMin    = "salary_min"
	keySalaryMax    = "salary_max"
	keyRoles        = "roles"
	keyCities       = "cities"
	keyTechnologies = "technologies"
)

var ErrNoSession = errors.New("no onboarding in progress")

// Reply is what the user should see after a message. Keyboard rows are
// optional; Done is set once the profile is stored.
type Reply struct {
	Text     string
	Keyboard [][]string
	Done     bool
}

type ProfileSaver interface {
	CreateProfile(ctx context.Context, p *profile.Profile) error
}

// transition consumes one answer. Invalid input leaves s.State untouched.
type transition func(s *Session, input string) Reply

var transitions = map[State]transition{
	StateAwaitingName:         onName,
	StateAwaitingExperience:   onExperience,
	StateAwaitingGrade:        onGrade,
	StateAwaitingSalary:       onSalary,
	StateAwaitingRoles:        onRoles,
	StateAwaitingCities:       onCities,
	StateAwaitingTechnologies: onTechnologies,
}

type Flow struct {
	store  StateStore
	saver  ProfileSaver
	logger *zap.Logger
}

func New(store StateStore, saver ProfileSaver, l *zap.Logger) *Flow {
	if l == nil {
		l = zap.NewNop()
	}
	return &Flow{store: store, saver: saver, logger: l}
}

// Start begins a new onboarding, dropping any previous progress.
func (f *Flow) Start(ctx context.Context, userID int64) (Reply, error) {
	if err := f.store.Put(ctx, userID, newSession()); err != nil {
		return Reply{}, fmt.Errorf("start onboarding: %w", err)
	}

	f.logger.Info("onboarding started", logger.ChatFields(userID, 0)...)
	return Reply{Text: PromptName}, nil
}

func (f *Flow) Active(ctx context.Context, userID int64) (bool, error) {
	s, err := f.store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return s != nil, nil
}

func (f *Flow) Cancel(ctx context.Context, userID int64) error {
	return f.store.Delete(ctx, userID)
}

// Handle feeds one answer into the conversation of userID.
func (f *Flow) Handle(ctx context.Context, userID int64, input string) (Reply, error) {
	s, err := f.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if s == nil {
		return Reply{}, ErrNoSession
	}

	step, ok := transitions[s.State]
	if !ok {
		return Reply{}, fmt.Errorf("unexpected onboarding state %q", s.State)
	}

	reply := step(s, input)
	if s.State != StateComplete {
		if err := f.store.Put(ctx, userID, s); err != nil {
			return Reply{}, fmt.Errorf("save onboarding state: %w", err)
		}
		return reply, nil
	}

	// The stored session still points at the last question, so a failed
	// insert can be retried by resending the answer.
	p, err := f.complete(ctx, userID, s)
	if err != nil {
		return Reply{}, err
	}

	if err := f.store.Delete(ctx, userID); err != nil {
		f.logger.Warn("dropping onboarding state failed", zap.Int64(logger.FieldUserID, userID), zap.Error(err))
	}

	f.logger.Info("profile created",
		zap.Int64(logger.FieldUserID, userID),
		zap.Uint("profile_id", p.ID),
		zap.String("grade", string(p.Grade)),
	)

	return Reply{Text: MessageCreated, Done: true}, nil
}

func (f *Flow) complete(ctx context.Context, userID int64, s *Session) (*profile.Profile, error) {
	d, err := decodeDraft(s.Data)
	if err != nil {
		return nil, err
	}

	grade, err := profile.ParseGrade(d.Grade)
	if err != nil {
		return nil, fmt.Errorf("decode onboarding data: %w", err)
	}

	p := &profile.Profile{
		UserID:       userID,
		Name:         d.Name,
		Experience:   d.Experience,
		Grade:        grade,
		SalaryMin:    d.SalaryMin,
		SalaryMax:    d.SalaryMax,
		Roles:        d.Roles,
		Cities:       d.Cities,
		Technologies: d.Technologies,
	}

	if err := f.saver.CreateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	return p, nil
}

type draft struct {
	Name         string   `mapstructure:"name"`
	Experience   int      `mapstructure:"experience"`
	Grade        string   `mapstructure:"grade"`
	SalaryMin    int      `mapstructure:"salary_min"`
	SalaryMax    int      `mapstructure:"salary_max"`
	Roles        []string `mapstructure:"roles"`
	Cities       []string `mapstructure:"cities"`
	Technologies []string `mapstructure:"technologies"`
}

// decodeDraft reads the collected answers. Numbers that went through JSON
// arrive as json.Number and weak typing covers the rest.
func decodeDraft(data map[string]any) (*draft, error) {
	var d draft
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &d,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode onboarding data: %w", err)
	}

	return &d, nil
}

func onName(s *Session, input string) Reply {
	name := strings.TrimSpace(input)
	if name == "" {
		return Reply{Text: errName}
	}

	s.Data[keyName] = name
	s.State = StateAwaitingExperience
	return Reply{Text: PromptExperience}
}

func onExperience(s *Session, input string) Reply {
	years, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || years < 0 {
		return Reply{Text: errNumber}
	}

	s.Data[keyExperience] = years
	s.State = StateAwaitingGrade

	suggested := profile.SuggestGrade(years)
	return Reply{
		Text:     fmt.Sprintf(PromptGrade, suggested),
		Keyboard: gradeKeyboard(suggested),
	}
}

// gradeKeyboard offers the suggested grade first.
func gradeKeyboard(suggested profile.Grade) [][]string {
	row := []string{string(suggested)}
	for _, g := range profile.Grades {
		if g != suggested {
			row = append(row, string(g))
		}
	}
	return [][]string{row}
}

func onGrade(s *Session, input string) Reply {
	grade, err := profile.ParseGrade(input)
	if err != nil {
		return Reply{Text: errGrade}
	}

	s.Data[keyGrade] = string(grade)
	s.State = StateAwaitingSalary
	return Reply{Text: PromptSalary}
}

func onSalary(s *Session, input string) Reply {
	salary, err := strconv.Atoi(stripSpaces(input))
	if err != nil || salary < 0 || salary > profile.SalaryCeiling {
		return Reply{Text: errNumber}
	}

	s.Data[keySalaryMin] = salary
	s.Data[keySalaryMax] = profile.MaxSalaryFor(salary)
	s.State = StateAwaitingRoles
	return Reply{Text: PromptRoles}
}

func onRoles(s *Session, input string) Reply {
	s.Data[keyRoles] = profile.SplitInput(input)
	s.State = StateAwaitingCities
	return Reply{Text: PromptCities}
}

func onCities(s *Session, input string) Reply {
	s.Data[keyCities] = profile.SplitInput(input)
	s.State = StateAwaitingTechnologies
	return Reply{Text: PromptTechnologies}
}

func onTechnologies(s *Session, input string) Reply {
	s.Data[keyTechnologies] = profile.SplitInput(input)
	s.State = StateComplete
	return Reply{}
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

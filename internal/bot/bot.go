// Package bot routes Telegram messages to onboarding, search and the letter drafter.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/headhunter"
	"github.com/spigell/job-helper/internal/logger"
	"github.com/spigell/job-helper/internal/onboarding"
	"github.com/spigell/job-helper/internal/profile"
	"github.com/spigell/job-helper/internal/search"
	"github.com/spigell/job-helper/internal/storage"
)

// Incoming is a text message from a user.
type Incoming struct {
	UpdateID int64
	ChatID   int64
	UserID   int64
	Text     string
}

// Messenger delivers HTML formatted replies. A nil keyboard leaves the
// current one in place.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, keyboard [][]string) error
}

type Store interface {
	CountVacancies(ctx context.Context, profileID uint) (int64, error)
	GetVacancy(ctx context.Context, profileID uint, externalID string) (*storage.Vacancy, error)
	SaveCoverLetter(ctx context.Context, vacancyID uint, letter string) error
	MarkResponded(ctx context.Context, vacancyID uint) error
}

type Drafter interface {
	Draft(ctx context.Context, listing *headhunter.Listing, p *profile.Profile) string
}

type Deps struct {
	Messenger  Messenger
	Onboarding *onboarding.Flow
	Search     *search.Handler
	Store      Store
	Drafter    Drafter
	Logger     *zap.Logger
}

type Bot struct {
	Deps
}

func New(deps Deps) *Bot {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Bot{Deps: deps}
}

// Handle answers one message. Failures are logged and answered with an
// apology, the returned error is for the caller's log only.
func (b *Bot) Handle(ctx context.Context, msg Incoming) error {
	err := b.route(ctx, msg)
	if err == nil {
		return nil
	}

	fields := append(logger.ChatFields(msg.UserID, msg.ChatID), zap.Error(err))
	b.Logger.Error("handling message failed", fields...)

	if sendErr := b.Messenger.Send(ctx, msg.ChatID, textFailure, MainKeyboard); sendErr != nil {
		b.Logger.Warn("sending apology failed", zap.Error(sendErr))
	}
	return err
}

func (b *Bot) route(ctx context.Context, msg Incoming) error {
	text := strings.TrimSpace(msg.Text)
	command, arg := splitCommand(text)

	if command == CommandStart {
		return b.start(ctx, msg)
	}

	active, err := b.Onboarding.Active(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("check onboarding: %w", err)
	}
	if active {
		return b.onboard(ctx, msg, text)
	}

	switch {
	case text == ButtonSearch || command == CommandSearch:
		return b.search(ctx, msg)
	case text == ButtonProfile || command == CommandProfile:
		return b.profile(ctx, msg)
	case text == ButtonStats || command == CommandStats:
		return b.stats(ctx, msg)
	case text == ButtonHelp || command == CommandHelp:
		return b.reply(ctx, msg, textHelp, MainKeyboard)
	case command == CommandLetter:
		return b.letter(ctx, msg, arg)
	case command == CommandApplied:
		return b.applied(ctx, msg, arg)
	default:
		return b.reply(ctx, msg, textUnknown, MainKeyboard)
	}
}

// splitCommand returns the lowercased command without a @botname suffix and its argument.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	command, arg, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return strings.ToLower(command), strings.TrimSpace(arg)
}

func (b *Bot) reply(ctx context.Context, msg Incoming, text string, keyboard [][]string) error {
	if err := b.Messenger.Send(ctx, msg.ChatID, text, keyboard); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) start(ctx context.Context, msg Incoming) error {
	p, err := b.Search.LoadProfile(ctx, msg.UserID)
	switch {
	case err == nil:
		if err := b.Onboarding.Cancel(ctx, msg.UserID); err != nil {
			return err
		}
		return b.reply(ctx, msg, fmt.Sprintf(textGreeting, html.EscapeString(p.Name)), MainKeyboard)
	case !errors.Is(err, search.ErrNoProfile):
		return err
	}

	r, err := b.Onboarding.Start(ctx, msg.UserID)
	if err != nil {
		return err
	}
	return b.reply(ctx, msg, r.Text, r.Keyboard)
}

func (b *Bot) onboard(ctx context.Context, msg Incoming, text string) error {
	r, err := b.Onboarding.Handle(ctx, msg.UserID, text)
	if errors.Is(err, storage.ErrProfileExists) {
		if err := b.Onboarding.Cancel(ctx, msg.UserID); err != nil {
			return err
		}
		return b.reply(ctx, msg, textProfileExists, MainKeyboard)
	}
	if err != nil {
		return err
	}

	keyboard := r.Keyboard
	if r.Done {
		keyboard = MainKeyboard
	}
	return b.reply(ctx, msg, r.Text, keyboard)
}

func (b *Bot) search(ctx context.Context, msg Incoming) error {
	if _, err := b.Search.LoadProfile(ctx, msg.UserID); err != nil {
		if errors.Is(err, search.ErrNoProfile) {
			return b.reply(ctx, msg, textNoProfile, nil)
		}
		return err
	}

	if err := b.reply(ctx, msg, textSearching, nil); err != nil {
		return err
	}

	res, err := b.Search.Run(ctx, msg.UserID)
	if err != nil {
		return err
	}

	return b.reply(ctx, msg, search.RenderDigest(res), MainKeyboard)
}

func (b *Bot) profile(ctx context.Context, msg Incoming) error {
	p, err := b.Search.LoadProfile(ctx, msg.UserID)
	if errors.Is(err, search.ErrNoProfile) {
		return b.reply(ctx, msg, textNoProfile, nil)
	}
	if err != nil {
		return err
	}

	return b.reply(ctx, msg, RenderProfile(p), MainKeyboard)
}

// RenderProfile formats the profile card.
func RenderProfile(p *profile.Profile) string {
	return fmt.Sprintf(textProfile,
		html.EscapeString(p.Name),
		p.Experience,
		p.Grade,
		humanize.Comma(int64(p.SalaryMin)),
		humanize.Comma(int64(p.SalaryMax)),
		html.EscapeString(profile.JoinList(p.Roles)),
		html.EscapeString(profile.JoinList(p.Cities)),
		html.EscapeString(profile.JoinList(p.Technologies)),
	)
}

func (b *Bot) stats(ctx context.Context, msg Incoming) error {
	p, err := b.Search.LoadProfile(ctx, msg.UserID)
	if errors.Is(err, search.ErrNoProfile) {
		return b.reply(ctx, msg, textNoProfile, nil)
	}
	if err != nil {
		return err
	}

	total, err := b.Store.CountVacancies(ctx, p.ID)
	if err != nil {
		return err
	}

	return b.reply(ctx, msg, fmt.Sprintf(textStats, total), MainKeyboard)
}

// vacancy resolves the stored vacancy named in a command argument. A nil
// vacancy with a nil error means the user has already been answered.
func (b *Bot) vacancy(ctx context.Context, msg Incoming, id, usage string) (*profile.Profile, *storage.Vacancy, error) {
	if id == "" {
		return nil, nil, b.reply(ctx, msg, usage, nil)
	}

	p, err := b.Search.LoadProfile(ctx, msg.UserID)
	if errors.Is(err, search.ErrNoProfile) {
		return nil, nil, b.reply(ctx, msg, textNoProfile, nil)
	}
	if err != nil {
		return nil, nil, err
	}

	v, err := b.Store.GetVacancy(ctx, p.ID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, b.reply(ctx, msg, fmt.Sprintf(textNoVacancy, html.EscapeString(id)), nil)
	}
	if err != nil {
		return nil, nil, err
	}

	return p, v, nil
}

func (b *Bot) letter(ctx context.Context, msg Incoming, id string) error {
	p, v, err := b.vacancy(ctx, msg, id, textLetterUsage)
	if err != nil || v == nil {
		return err
	}

	letter := b.Drafter.Draft(ctx, v.Listing(), p)
	if err := b.Store.SaveCoverLetter(ctx, v.ID, letter); err != nil {
		return err
	}

	return b.reply(ctx, msg, fmt.Sprintf(textLetterHeader, html.EscapeString(v.Title), html.EscapeString(letter)), nil)
}

func (b *Bot) applied(ctx context.Context, msg Incoming, id string) error {
	_, v, err := b.vacancy(ctx, msg, id, textAppliedUsage)
	if err != nil || v == nil {
		return err
	}

	if err := b.Store.MarkResponded(ctx, v.ID); err != nil {
		return err
	}

	return b.reply(ctx, msg, fmt.Sprintf(textApplied, html.EscapeString(v.Title)), nil)
}

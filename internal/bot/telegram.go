package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bot-api/telegram"
)

const (
	parseModeHTML      = "HTML"
	updatesBatch       = 100
	defaultPollTimeout = 30 * time.Second
)

// Telegram talks to the Bot API with long polling.
type Telegram struct {
	api     *telegram.API
	timeout int
}

func NewTelegram(token string, pollTimeout time.Duration) *Telegram {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &Telegram{
		api:     telegram.New(token),
		timeout: int(pollTimeout / time.Second),
	}
}

func (t *Telegram) Updates(ctx context.Context, offset int64) ([]Incoming, error) {
	updates, err := t.api.GetUpdates(ctx, telegram.UpdateCfg{
		Offset:  offset,
		Limit:   updatesBatch,
		Timeout: t.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}

	result := make([]Incoming, 0, len(updates))
	for _, u := range updates {
		in := Incoming{UpdateID: u.UpdateID}
		if m := u.Message; m != nil {
			in.ChatID = m.Chat.ID
			in.Text = m.Text
			if m.From != nil {
				in.UserID = m.From.ID
			}
		}
		result = append(result, in)
	}

	return result, nil
}

func (t *Telegram) Send(ctx context.Context, chatID int64, text string, keyboard [][]string) error {
	cfg := telegram.NewMessage(chatID, text)
	cfg.ParseMode = parseModeHTML
	if len(keyboard) > 0 {
		cfg.ReplyMarkup = replyKeyboard(keyboard)
	}

	if _, err := t.api.SendMessage(ctx, cfg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func replyKeyboard(rows [][]string) *telegram.ReplyKeyboardMarkup {
	markup := &telegram.ReplyKeyboardMarkup{ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]telegram.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, telegram.KeyboardButton{Text: label})
		}
		markup.Keyboard = append(markup.Keyboard, buttons)
	}
	return markup
}

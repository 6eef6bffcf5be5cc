package ai

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/headhunter"
	"github.com/spigell/job-helper/internal/profile"
	"github.com/spigell/job-helper/internal/utils"
)

const (
	FallbackLetter  = "Thank you for the interesting opportunity!"
	DefaultLanguage = "Russian"

	defaultMaxLogLength = 200
)

//go:embed letter_prompt.md
var letterTemplate string

type LetterDrafter struct {
	generator Generator
	language  string
	logger    *zap.Logger
	maxLogLen int
}

func NewLetterDrafter(generator Generator, language string, logger *zap.Logger) *LetterDrafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if language = strings.TrimSpace(language); language == "" {
		language = DefaultLanguage
	}

	return &LetterDrafter{
		generator: generator,
		language:  language,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// Draft never fails: any generation problem yields FallbackLetter.
func (d *LetterDrafter) Draft(ctx context.Context, listing *headhunter.Listing, p *profile.Profile) string {
	if d == nil || d.generator == nil || listing == nil || p == nil {
		return FallbackLetter
	}

	prompt := d.buildPrompt(listing, p)
	d.logger.Debug("letter request",
		zap.String("vacancy_id", listing.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, d.maxLogLen)),
	)

	letter, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		d.logger.Warn("letter generation failed, using fallback",
			zap.String("vacancy_id", listing.ID),
			zap.Error(err),
		)
		return FallbackLetter
	}

	letter = strings.TrimSpace(letter)
	if letter == "" {
		d.logger.Warn("letter generation returned nothing, using fallback", zap.String("vacancy_id", listing.ID))
		return FallbackLetter
	}

	d.logger.Debug("letter response",
		zap.String("vacancy_id", listing.ID),
		zap.String("response_preview", utils.TruncateForLog(letter, d.maxLogLen)),
	)

	return letter
}

func (d *LetterDrafter) buildPrompt(listing *headhunter.Listing, p *profile.Profile) string {
	return strings.NewReplacer(
		"{{LANGUAGE}}", d.language,
		"{{TITLE}}", listing.Title,
		"{{COMPANY}}", listing.Company,
		"{{EXPERIENCE}}", strconv.Itoa(p.Experience),
		"{{GRADE}}", string(p.Grade),
	).Replace(letterTemplate)
}

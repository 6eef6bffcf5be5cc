package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/ai"
	"github.com/spigell/job-helper/internal/ai/claude"
	"github.com/spigell/job-helper/internal/ai/gemini"
	"github.com/spigell/job-helper/internal/headhunter"
	"github.com/spigell/job-helper/internal/logger"
	"github.com/spigell/job-helper/internal/onboarding"
	"github.com/spigell/job-helper/internal/scoring"
	"github.com/spigell/job-helper/internal/search"
	"github.com/spigell/job-helper/internal/secrets"
	"github.com/spigell/job-helper/internal/storage"
)

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

func newScraper(config *ScraperConfig, l *zap.Logger) *headhunter.Client {
	opts := headhunter.Options{}
	if config != nil {
		opts.SiteURL = config.SiteURL
		opts.UserAgent = config.UserAgent
		opts.Timeout = config.Timeout
		opts.Interval = config.Interval
	}
	return headhunter.New(l.Named("scraper"), opts)
}

func newSearchHandler(config *Config, store *storage.Store, l *zap.Logger) *search.Handler {
	return search.New(search.Deps{
		Scraper: newScraper(config.Scraper, l),
		Store:   store,
		Score:   scoring.Score,
		Logger:  l.Named("search"),
	})
}

// newStateStore keeps onboarding sessions in Redis when it is configured
// and in memory otherwise.
func newStateStore(ctx context.Context, config *Config, l *zap.Logger) (onboarding.StateStore, func(), error) {
	if strings.TrimSpace(config.RedisURL) == "" {
		l.Info("keeping onboarding sessions in memory")
		return onboarding.NewMemoryStore(), func() {}, nil
	}

	store, err := onboarding.NewRedisStore(ctx, config.RedisURL, onboarding.DefaultSessionTTL)
	if err != nil {
		return nil, nil, err
	}

	l.Info("keeping onboarding sessions in redis")
	return store, func() { _ = store.Close() }, nil
}

func newGenerator(ctx context.Context, config *AIConfig, l *zap.Logger) (ai.Generator, *zap.Logger, error) {
	provider := config.Provider

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
		Hint:  "set AI_API_KEY or ai.api-key-file",
	})
	if err != nil {
		return nil, nil, err
	}

	switch provider {
	case ai.ProviderGemini:
		g, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
			Model:       config.Model,
			MaxTokens:   config.MaxTokens,
			MaxAttempts: config.MaxAttempts,
		}, l)
		if err != nil {
			return nil, nil, err
		}
		return g, logger.WithAIFields(l, provider, g.Model()), nil
	case ai.ProviderClaude:
		g, err := claude.NewGenerator(apiKey, config.Model, config.MaxTokens)
		if err != nil {
			return nil, nil, err
		}
		return g, logger.WithAIFields(l, provider, g.Model()), nil
	default:
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}

func newDrafter(ctx context.Context, config *AIConfig, l *zap.Logger) (*ai.LetterDrafter, error) {
	generator, genLogger, err := newGenerator(ctx, config, l.Named("ai"))
	if err != nil {
		return nil, fmt.Errorf("building ai generator: %w", err)
	}

	genLogger.Info("letter drafting enabled")
	return ai.NewLetterDrafter(generator, config.Language, genLogger), nil
}

package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-helper/internal/ai"
	"github.com/spigell/job-helper/internal/bot"
	"github.com/spigell/job-helper/internal/storage"
)

const (
	app = "job-helper"
)

type Config struct {
	BotToken     string         `mapstructure:"bot-token" validate:"required_without=BotTokenFile"`
	BotTokenFile string         `mapstructure:"bot-token-file"`
	DatabaseURL  string         `mapstructure:"database-url" validate:"required"`
	RedisURL     string         `mapstructure:"redis-url" validate:"omitempty,url"`
	Workers      int            `mapstructure:"workers" validate:"min=1"`
	PollTimeout  time.Duration  `mapstructure:"poll-timeout"`
	Scraper      *ScraperConfig `mapstructure:"scraper" validate:"required"`
	AI           *AIConfig      `mapstructure:"ai" validate:"required"`
}

type ScraperConfig struct {
	SiteURL   string        `mapstructure:"site-url" validate:"omitempty,url"`
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Interval  time.Duration `mapstructure:"interval"`
}

type AIConfig struct {
	Provider    string `mapstructure:"provider" validate:"oneof=gemini claude"`
	APIKey      string `mapstructure:"api-key" validate:"required_without=APIKeyFile"`
	APIKeyFile  string `mapstructure:"api-key-file"`
	Model       string `mapstructure:"model"`
	MaxTokens   int    `mapstructure:"max-tokens" validate:"min=1"`
	MaxAttempts int    `mapstructure:"max-attempts" validate:"min=1"`
	Language    string `mapstructure:"language"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-helper is a Telegram bot that finds hh.ru vacancies matching your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-helper.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("database-url", "", "database url, postgres://... or a SQLite file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))

	envs := map[string]string{
		"bot-token":       "BOT_TOKEN",
		"bot-token-file":  "BOT_TOKEN_FILE",
		"database-url":    "DATABASE_URL",
		"redis-url":       "REDIS_URL",
		"ai.provider":     "AI_PROVIDER",
		"ai.api-key":      "AI_API_KEY",
		"ai.api-key-file": "AI_API_KEY_FILE",
		"ai.model":        "AI_MODEL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("database-url", storage.DefaultDatabaseURL)
	viper.SetDefault("workers", bot.DefaultWorkers)
	viper.SetDefault("poll-timeout", "30s")
	viper.SetDefault("scraper.timeout", "10s")
	viper.SetDefault("scraper.interval", "1s")
	viper.SetDefault("ai.provider", ai.ProviderGemini)
	viper.SetDefault("ai.max-tokens", ai.DefaultMaxTokens)
	viper.SetDefault("ai.max-attempts", 1)
	viper.SetDefault("ai.language", ai.DefaultLanguage)
}

func initConfig() {
	// .env is optional, real environment variables win.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Only an explicitly requested file is mandatory.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// getConfig decodes and validates the config. except names fields the
// calling command does not need, for example "BotToken".
func getConfig(except ...string) (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := validateConfig(config, except...); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig normalizes the provider name before checking it, so
// AI_PROVIDER=Gemini is accepted.
func validateConfig(config *Config, except ...string) error {
	if config.AI != nil {
		config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(config)
	if len(except) > 0 {
		err = validate.StructExcept(config, except...)
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

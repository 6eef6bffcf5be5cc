package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/bot"
	"github.com/spigell/job-helper/internal/onboarding"
	"github.com/spigell/job-helper/internal/secrets"
	"github.com/spigell/job-helper/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Telegram bot",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the main command for the bot.
func run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-helper", zap.String("version", version))

	token, err := secrets.Load(secrets.Source{
		Name:  "bot token",
		Value: config.BotToken,
		File:  config.BotTokenFile,
		Hint:  "set BOT_TOKEN or bot-token-file",
	})
	if err != nil {
		logger.Fatal("loading bot token", zap.Error(err))
	}

	store, err := storage.Open(ctx, config.DatabaseURL, logger.Named("storage"))
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err))
	}
	defer store.Close()

	states, closeStates, err := newStateStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("connecting the onboarding state store", zap.Error(err))
	}
	defer closeStates()

	drafter, err := newDrafter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating the letter drafter", zap.Error(err))
	}

	telegram := bot.NewTelegram(token, config.PollTimeout)
	handler := bot.New(bot.Deps{
		Messenger:  telegram,
		Onboarding: onboarding.New(states, store, logger.Named("onboarding")),
		Search:     newSearchHandler(config, store, logger),
		Store:      store,
		Drafter:    drafter,
		Logger:     logger.Named("bot"),
	})

	logger.Info("polling for updates", zap.Int("workers", config.Workers))

	if err := bot.NewPoller(telegram, handler, config.Workers, logger.Named("poller")).Run(ctx); err != nil {
		logger.Error("polling stopped", zap.Error(err))
	}

	logger.Info("bye")
}

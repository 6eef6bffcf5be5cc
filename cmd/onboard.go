package cmd

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/bot"
	"github.com/spigell/job-helper/internal/onboarding"
	"github.com/spigell/job-helper/internal/search"
	"github.com/spigell/job-helper/internal/storage"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Create a profile from the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		userID, _ := cmd.Flags().GetInt64("user-id")
		onboard(userID)
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)

	onboardCmd.Flags().Int64P("user-id", "u", 0, "Telegram user id the profile belongs to")
	onboardCmd.MarkFlagRequired("user-id")
}

func onboard(userID int64) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig("BotToken", "AI")
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := storage.Open(ctx, config.DatabaseURL, logger.Named("storage"))
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err))
	}
	defer store.Close()

	handler := newSearchHandler(config, store, logger)
	p, err := handler.LoadProfile(ctx, userID)
	if err == nil {
		fmt.Println(plainText(bot.RenderProfile(p)))
		return
	}
	if !errors.Is(err, search.ErrNoProfile) {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	flow := onboarding.New(onboarding.NewMemoryStore(), store, logger.Named("onboarding"))
	reply, err := flow.Start(ctx, userID)
	if err != nil {
		logger.Fatal("starting onboarding", zap.Error(err))
	}

	for !reply.Done {
		answer, err := ask(reply)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		reply, err = flow.Handle(ctx, userID, answer)
		if errors.Is(err, storage.ErrProfileExists) {
			logger.Info("exiting", zap.String("reason", "profile already exists"))
			return
		}
		if err != nil {
			logger.Fatal("handling the answer", zap.Error(err))
		}
	}

	fmt.Println(plainText(reply.Text))
}

// ask shows the question and reads the answer, as a list when the reply
// offers buttons.
func ask(reply onboarding.Reply) (string, error) {
	label := plainText(reply.Text)

	if len(reply.Keyboard) > 0 {
		var items []string
		for _, row := range reply.Keyboard {
			items = append(items, row...)
		}

		sel := promptui.Select{Label: label, Items: items}
		_, answer, err := sel.Run()
		return answer, err
	}

	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}

var tagStripper = strings.NewReplacer("<b>", "", "</b>", "")

func plainText(s string) string {
	return html.UnescapeString(tagStripper.Replace(s))
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-helper/internal/search"
	"github.com/spigell/job-helper/internal/storage"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one vacancy search for a stored profile and print the digest",
	Run: func(cmd *cobra.Command, _ []string) {
		userID, _ := cmd.Flags().GetInt64("user-id")
		runSearch(userID)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int64P("user-id", "u", 0, "Telegram user id of the profile")
	searchCmd.MarkFlagRequired("user-id")
}

func runSearch(userID int64) {
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

	res, err := newSearchHandler(config, store, logger).Run(ctx, userID)
	if errors.Is(err, search.ErrNoProfile) {
		logger.Info("exiting", zap.String("reason", "no profile, run the onboard command first"))
		return
	}
	if err != nil {
		logger.Fatal("searching", zap.Error(err))
	}

	if res.Found() == 0 {
		fmt.Println(plainText(search.NothingFound))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tSALARY\tURL")
	for _, l := range res.Listings.Head(search.DigestSize) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.Company, search.SalaryText(l), l.URL)
	}
	w.Flush()

	fmt.Printf("\nfound %d, saved %d new\n", res.Found(), res.Saved)
}

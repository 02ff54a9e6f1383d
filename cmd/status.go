package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yigal/bookmarkable/internal/core"
)

// statusCmd prints the save state of a URL.
var statusCmd = &cobra.Command{
	Use:   "status <url>",
	Short: "Print the save state of a URL",
	Long: `Print the save state of a URL: unsaved, saved, or saved_pending_sync.
Archived bookmarks read as unsaved; the URL can be captured again.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStatus(args[0]); err != nil {
			log.Fatal().Err(err).Msg("status failed")
		}
	},
}

func runStatus(url string) error {
	cfg := loadConfig()
	database, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	status, _, err := core.StatusFor(database, url)
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

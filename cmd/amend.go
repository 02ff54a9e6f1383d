package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yigal/bookmarkable/internal/core"
)

// amendCmd replaces the note on a saved bookmark.
var amendCmd = &cobra.Command{
	Use:   "amend <url>",
	Short: "Replace the note on a saved bookmark",
	Long: `Replace the note on a saved bookmark. Amending is idempotent: setting
the same note twice leaves one pending upload, not two.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAmend(cmd, args[0]); err != nil {
			log.Fatal().Err(err).Msg("amend failed")
		}
	},
}

func runAmend(cmd *cobra.Command, url string) error {
	note, err := cmd.Flags().GetString("note")
	if err != nil {
		return fmt.Errorf("failed to read --note: %w", err)
	}

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

	b, err := core.AmendNote(database, url, note)
	if err != nil {
		return err
	}
	fmt.Printf("Note updated for %s\n", b.URL)
	return nil
}

func init() {
	rootCmd.AddCommand(amendCmd)

	amendCmd.Flags().String("note", "", "The note text to set")
	_ = amendCmd.MarkFlagRequired("note")
}

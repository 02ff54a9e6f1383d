package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yigal/bookmarkable/internal/core/db"
)

// listCmd prints stored bookmarks with their sync state.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored bookmarks",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runList(cmd); err != nil {
			log.Fatal().Err(err).Msg("list failed")
		}
	},
}

func runList(cmd *cobra.Command) error {
	pending, err := cmd.Flags().GetBool("pending")
	if err != nil {
		return fmt.Errorf("failed to read --pending: %w", err)
	}
	archived, err := cmd.Flags().GetBool("archived")
	if err != nil {
		return fmt.Errorf("failed to read --archived: %w", err)
	}
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return fmt.Errorf("failed to read --tag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to read --limit: %w", err)
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

	var bookmarks []db.Bookmark
	if pending {
		// Everything the next push will send, archived records included.
		bookmarks, err = database.ListPendingUpload()
	} else {
		bookmarks, err = database.ListBookmarks(db.ListOptions{
			Tag:             tag,
			IncludeArchived: archived,
			Limit:           limit,
		})
	}
	if err != nil {
		return err
	}

	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tTITLE\tSTATE\tTAGS")
	for _, b := range bookmarks {
		state := string(b.SyncState)
		if b.Archived {
			state += " (archived)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.URL, b.Title, state, strings.Join(b.Tags, ","))
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("pending", false, "Only bookmarks waiting for upload")
	listCmd.Flags().Bool("archived", false, "Include archived bookmarks")
	listCmd.Flags().String("tag", "", "Only bookmarks carrying this tag")
	listCmd.Flags().Int("limit", 0, "Limit the number of bookmarks listed (0 = all)")
}

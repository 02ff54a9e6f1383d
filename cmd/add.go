package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yigal/bookmarkable/internal/core"
)

// addCmd captures a URL from the terminal.
var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Capture a URL into the local store",
	Long: `Capture a URL into the local store. The capture succeeds whether or
not the bookmark service is reachable; the record is picked up by the
next sync cycle.

By default the page is fetched once to prefill title, description, and
image. Pass --fetch=false to capture without touching the network, or
--render to fetch through headless Chrome for pages that only build
their content with JavaScript.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAdd(cmd, args[0]); err != nil {
			log.Fatal().Err(err).Msg("add failed")
		}
	},
}

func runAdd(cmd *cobra.Command, url string) error {
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return fmt.Errorf("failed to read --title: %w", err)
	}
	note, err := cmd.Flags().GetString("note")
	if err != nil {
		return fmt.Errorf("failed to read --note: %w", err)
	}
	tags, err := cmd.Flags().GetStringArray("tag")
	if err != nil {
		return fmt.Errorf("failed to read --tag: %w", err)
	}
	fetch, err := cmd.Flags().GetBool("fetch")
	if err != nil {
		return fmt.Errorf("failed to read --fetch: %w", err)
	}
	render, err := cmd.Flags().GetBool("render")
	if err != nil {
		return fmt.Errorf("failed to read --render: %w", err)
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

	in := core.CaptureInput{URL: url, Title: title, Note: note, Tags: tags}

	if fetch || render {
		meta, err := fetchPageMetadata(cmd.Context(), url, cfg, render)
		if err != nil {
			// Metadata is a nicety; the capture itself must not depend on
			// the page being reachable.
			log.Warn().Err(err).Str("url", url).Msg("metadata fetch failed, capturing bare URL")
		} else {
			if in.Title == "" {
				in.Title = meta.Title
			}
			in.Description = meta.Description
			in.ImageURL = meta.ImageURL
			if len(in.Tags) == 0 {
				in.Tags = meta.Tags
			}
		}
	}

	res, err := core.Capture(database, in)
	if err != nil {
		return err
	}

	switch {
	case res.Created:
		fmt.Printf("Saved %s\n", res.Bookmark.URL)
	case res.Restored && res.Amended:
		fmt.Printf("Restored from archive with new note: %s\n", res.Bookmark.URL)
	case res.Restored:
		fmt.Printf("Restored from archive: %s\n", res.Bookmark.URL)
	case res.Amended:
		fmt.Printf("Already saved, note updated: %s\n", res.Bookmark.URL)
	default:
		fmt.Printf("Already saved: %s\n", res.Bookmark.URL)
	}
	return nil
}

func fetchPageMetadata(ctx context.Context, url string, cfg Config, render bool) (core.Metadata, error) {
	if render {
		return core.RenderMetadata(ctx, url, core.RenderOptions{
			ChromePath: cfg.ChromePath,
			Headless:   true,
		})
	}
	return core.FetchMetadata(ctx, url, core.FetchOptions{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
	})
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("title", "", "Title for the bookmark (overrides fetched metadata)")
	addCmd.Flags().String("note", "", "Note to attach; amends the note when the URL is already saved")
	addCmd.Flags().StringArray("tag", nil, "Tag to attach (repeatable)")
	addCmd.Flags().Bool("fetch", true, "Fetch the page once to prefill metadata")
	addCmd.Flags().Bool("render", false, "Fetch through headless Chrome (for script-heavy pages)")
}

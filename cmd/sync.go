package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Yigal/bookmarkable/internal/core/remote"
	"github.com/Yigal/bookmarkable/internal/core/sync"
)

// syncCmd runs exactly one sync cycle in the foreground.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle and exit",
	Long: `Run one push-then-pull cycle against the bookmark service, print the
result, and exit. Exits non-zero when the cycle fails outright; records
that fail individually stay pending and are retried on the next cycle.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSync(cmd.Context()); err != nil {
			log.Fatal().Err(err).Msg("sync failed")
		}
	},
}

func runSync(ctx context.Context) error {
	cfg := loadConfig()
	if cfg.RemoteURL == "" {
		return fmt.Errorf("remote.url is not configured (flag --remote-url, env BOOKMARKABLE_REMOTE_URL, or the config file)")
	}

	database, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.RemoteURL,
		Token:   cfg.RemoteToken,
		Timeout: cfg.SyncRequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to configure remote client: %w", err)
	}

	coordinator := sync.NewCoordinator(database, client, sync.Options{Interval: cfg.SyncInterval})
	res := coordinator.RunOnce(ctx)
	if res == nil {
		return fmt.Errorf("sync cycle did not run")
	}

	fmt.Printf("%s: %s (%.1fs)\n", res.Outcome, res.Message, res.FinishedAt.Sub(res.StartedAt).Seconds())
	if res.Outcome == sync.OutcomeFailure {
		return fmt.Errorf("sync cycle failed: %s", res.Message)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

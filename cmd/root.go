package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Yigal/bookmarkable/internal/core/db"
	"github.com/Yigal/bookmarkable/internal/core/remote"
	"github.com/Yigal/bookmarkable/internal/core/sync"
	"github.com/Yigal/bookmarkable/internal/core/web"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bookmarkable",
	Short: "Offline-first bookmark capture with background sync",
	Long: `bookmarkable saves bookmarks into a local SQLite store and keeps that
store reconciled with a remote bookmark service in the background.

Captures always succeed locally, network or not. The sync coordinator
pushes pending records and pulls the remote snapshot on an interval,
after local changes, and on demand. Run without a subcommand it starts
the daemon: the local capture API plus the sync loop.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDaemon(cmd.Context()); err != nil {
			log.Fatal().Err(err).Msg("daemon exited")
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); SIGINT and SIGTERM cancel the
// command context so the daemon and one-shot sync shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.bookmarkable.yaml)")
	rootCmd.PersistentFlags().StringP("db", "d", defaultDBPath, "path to the SQLite store")

	rootCmd.Flags().String("listen", defaultListen, "host:port for the local capture API")
	rootCmd.Flags().String("remote-url", "", "base URL of the bookmark service")
	rootCmd.Flags().String("remote-token", "", "bearer token for the bookmark service")
	rootCmd.Flags().Duration("sync-interval", sync.DefaultInterval, "gap between automatic sync cycles")

	mustBindFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	mustBindFlag("listen", rootCmd.Flags().Lookup("listen"))
	mustBindFlag("remote.url", rootCmd.Flags().Lookup("remote-url"))
	mustBindFlag("remote.token", rootCmd.Flags().Lookup("remote-token"))
	mustBindFlag("sync.interval", rootCmd.Flags().Lookup("sync-interval"))
}

func mustBindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind %s flag: %v", key, err))
	}
}

// initConfig reads the config file and environment variables. Resolution
// order: flags, then BOOKMARKABLE_* environment (with .env files loaded
// first), then the config file, then defaults.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bookmarkable")
	}

	// .env files load first so AutomaticEnv sees their values.
	_ = godotenv.Load()

	viper.SetEnvPrefix("bookmarkable")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setConfigDefaults()

	readErr := viper.ReadInConfig()
	setupLogging(loadConfig())
	if readErr == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("loaded config file")
	}
}

// runDaemon opens the store, starts the sync run loop, and serves the local
// API until ctx is canceled.
func runDaemon(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

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

	// Local mutations wake the coordinator. SyncNow never blocks, so capture
	// paths stay off the network.
	wake := func(db.Event) error {
		coordinator.SyncNow()
		return nil
	}
	database.RegisterEventListener(db.OnBookmarkCreatedEvent, wake)
	database.RegisterEventListener(db.OnBookmarkUpdatedEvent, wake)
	database.RegisterEventListener(db.OnNoteAmendedEvent, wake)
	database.RegisterEventListener(db.OnBookmarkArchivedEvent, wake)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("sync loop stopped")
		}
	}()

	err = web.StartServer(ctx, cfg.Listen, database, coordinator)
	cancel()
	<-runDone
	return err
}

// openStore opens and migrates the SQLite store.
func openStore(path string) (*db.DB, error) {
	database, err := db.NewSQLiteDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := database.Migrate(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return database, nil
}

package cmd

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Yigal/bookmarkable/internal/core"
	"github.com/Yigal/bookmarkable/internal/core/remote"
	"github.com/Yigal/bookmarkable/internal/core/sync"
)

const (
	defaultDBPath = "bookmarkable.db"
	defaultListen = "localhost:8080"
)

// Config carries everything the commands need, resolved from flags, the
// config file, and BOOKMARKABLE_* environment variables.
type Config struct {
	DBPath string
	Listen string

	RemoteURL   string
	RemoteToken string

	SyncInterval       time.Duration
	SyncRequestTimeout time.Duration

	FetchTimeout time.Duration
	UserAgent    string
	ChromePath   string

	LogLevel  string
	LogFormat string
	LogFile   string
}

func setConfigDefaults() {
	viper.SetDefault("db", defaultDBPath)
	viper.SetDefault("listen", defaultListen)
	viper.SetDefault("sync.interval", sync.DefaultInterval)
	viper.SetDefault("sync.request_timeout", remote.DefaultRequestTimeout)
	viper.SetDefault("fetch.timeout", core.DefaultFetchTimeout)
	viper.SetDefault("fetch.user_agent", core.UserAgent)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "auto")
}

// loadConfig materializes the resolved configuration.
func loadConfig() Config {
	return Config{
		DBPath:             viper.GetString("db"),
		Listen:             viper.GetString("listen"),
		RemoteURL:          viper.GetString("remote.url"),
		RemoteToken:        viper.GetString("remote.token"),
		SyncInterval:       viper.GetDuration("sync.interval"),
		SyncRequestTimeout: viper.GetDuration("sync.request_timeout"),
		FetchTimeout:       viper.GetDuration("fetch.timeout"),
		UserAgent:          viper.GetString("fetch.user_agent"),
		ChromePath:         viper.GetString("fetch.chrome_path"),
		LogLevel:           viper.GetString("log.level"),
		LogFormat:          viper.GetString("log.format"),
		LogFile:            viper.GetString("log.file"),
	}
}

// setupLogging configures the global zerolog logger: level, console or JSON
// output, and optional rotated file logging.
func setupLogging(cfg Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}
	}

	format := strings.ToLower(cfg.LogFormat)
	if format == "" || format == "auto" {
		if cfg.LogFile == "" && isTerminal(os.Stderr) {
			format = "console"
		} else {
			format = "json"
		}
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/beeperdesk/beeper"
	"github.com/s0up4200/beeperdesk/config"
)

var (
	cfgFile  string
	logLevel string
	jsonOut  bool

	cfg    *config.Config
	logger zerolog.Logger

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "beeperdesk",
	Short: "Command-line client for the Beeper Desktop API",
	Long: `beeperdesk talks to the local API served by Beeper Desktop. It can list
accounts, search and manage chats, search and send messages, and archive
whole conversations to disk.

The access token is read from beeper.access_token in the config file or
from the BEEPER_ACCESS_TOKEN environment variable.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// SetVersion records build information for the version and update commands
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON instead of tables")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger = setupLogger(cfg.Logging)

	return nil
}

// newClient creates a Beeper client from the loaded configuration. modify,
// if given, adjusts the client configuration first.
func newClient(modify ...func(*beeper.Config)) (*beeper.Client, error) {
	clientCfg := cfg.ClientConfig()
	for _, fn := range modify {
		fn(&clientCfg)
	}

	client, err := beeper.NewClient(clientCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Beeper client: %w", err)
	}
	return client, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// errorHint suggests a fix for the failures users most often hit
func errorHint(err error) string {
	switch {
	case errors.Is(err, beeper.ErrConfig):
		return "Hint: set beeper.access_token in the config file or export " + beeper.EnvAccessToken + "."
	case errors.Is(err, beeper.ErrAuthentication):
		return "Hint: the access token was rejected. Create a new one in Beeper Desktop settings."
	case errors.Is(err, beeper.ErrTransport):
		return "Hint: is Beeper Desktop running with the API enabled at " + cfgBaseURL() + "?"
	}
	return ""
}

func cfgBaseURL() string {
	if cfg != nil && cfg.Beeper.BaseURL != "" {
		return cfg.Beeper.BaseURL
	}
	return beeper.DefaultBaseURL
}

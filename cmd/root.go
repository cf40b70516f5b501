package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxsort/internal/config"
	"github.com/teemow/inboxsort/internal/logging"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	version = v
}

// rootOptions holds the persistent flags and the configuration loaded
// before any subcommand runs.
type rootOptions struct {
	envFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
}

// newRootCmd builds the command tree. Tests build a fresh tree per case.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "inboxsort",
		Short: "Classifies recent Gmail messages with a language model",
		Long: `inboxsort fetches the sender and snippet of your most recent Gmail
messages and asks a chat-completion model to sort them into Important,
Promotions, Social, Marketing, Spam or General.

It can run as:
  - An HTTP API for the web dashboard (default)
  - An MCP (Model Context Protocol) server for AI assistants
  - One-shot fetch and classify commands`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "inboxsort version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error. Can also use LOG_LEVEL env var.")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json. Can also use LOG_FORMAT env var.")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newFetchCmd(opts))
	rootCmd.AddCommand(newClassifyCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd(opts))

	return rootCmd
}

// setup loads the configuration and installs the process-wide logger.
// Log flags override the environment only when set explicitly.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	return nil
}

// Execute is the main entry point for the CLI application
func Execute() {
	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

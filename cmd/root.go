package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/boxmcp/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	debug      bool
	logFormat  string
	configPath string
	account    string
}

var rootOpts rootOptions

// rootCmd represents the base command for the boxmcp application
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boxmcp",
		Short: "Manage Box tasks and collections",
		Long: `boxmcp manages tasks, task assignments and collections in Box.

It can run as:
  - A CLI for one-off task and collection operations
  - An MCP (Model Context Protocol) server for AI assistants`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.NewLogger(os.Stderr, rootOpts.logFormat, rootOpts.debug))
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&rootOpts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&rootOpts.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	flags.StringVar(&rootOpts.configPath, "config", "", "Path to the accounts file (default: $XDG_CONFIG_HOME/boxmcp/config.yaml)")
	flags.StringVar(&rootOpts.account, "account", "", "Account to use for CLI operations (default: default)")

	return cmd
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "boxmcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newCollectionsCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

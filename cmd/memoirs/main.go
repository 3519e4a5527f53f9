package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/config"
	pkgdb "github.com/unowned-ai/memoirs/pkg/db"
	"github.com/unowned-ai/memoirs/pkg/version"
)

// Global flags. Each one overrides its MEMOIRS_* environment variable when set.
var (
	dbPath    string
	dbDriver  string
	walMode   bool
	syncMode  string
	mediaDir  string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "memoirs",
	Short: "A local-first journal of memoirs with text, photos, video and audio.",
	Long: `memoirs keeps diary entries with rich-text content and attached media in a
local SQLite database, and serves them to a terminal browser, an HTTP API and
MCP-capable AI agents.

Settings come from MEMOIRS_* environment variables (see 'memoirs env');
command-line flags override them.`,
	Version:       fmt.Sprintf("v%s", version.Version),
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for memoirs.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(memoirs completion bash)

  Bash (persist):
    $ memoirs completion bash > /etc/bash_completion.d/memoirs

  Zsh:
    $ memoirs completion zsh > "${fpath[1]}/_memoirs"

  Fish:
    $ memoirs completion fish | source
    $ memoirs completion fish > ~/.config/fish/completions/memoirs.fish

  PowerShell:
    PS> memoirs completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of memoirs",
	Long:  `All software has versions. This is memoirs's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Version)
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the MEMOIRS_* environment variables and their defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Usage()
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the memoirs database",
	Long:  `Provides commands for managing the memoirs SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the database schema to the latest version for the memoirs component",
	Long: `Connects to the SQLite database (--db, MEMOIRS_DB_PATH or the default location)
and applies any necessary schema migrations to bring the memoirs component up to
the current application schema version. If the database does not exist or is
uninitialized for this component, it will be created and initialized with the
latest schema.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		conn, path, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		fmt.Fprintf(cmd.ErrOrStderr(), "Upgrading memoirs component in database at: %s (driver: %s, WAL: %t, Sync: %s)\n",
			path, cfg.DBDriver, cfg.WAL, cfg.Sync)
		return pkgdb.UpgradeDB(conn, path, pkgdb.TargetSchemaVersion, log)
	},
}

func initCmd() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", "", "Path to the database file (default: OS-specific data directory)")
	flags.StringVar(&dbDriver, "driver", pkgdb.DriverCGO, "SQLite driver: sqlite3 (cgo) or sqlite (pure Go)")
	flags.BoolVar(&walMode, "wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode")
	flags.StringVar(&syncMode, "sync", "NORMAL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	flags.StringVar(&mediaDir, "media-dir", "", "Directory holding imported media files (default: <data dir>/media)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "console", "Log format (json or console)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initMemoirsCmd()
	initMediaCmd()
	initLayoutCmd()
	initSearchCmd()
	initExportCmd()
	initServeCmd()

	rootCmd.AddCommand(completionCmd, versionCmd, envCmd, dbCmd, memoirsCmd, mediaCmd, layoutCmd, searchCmd, exportCmd, mcpCmd, serveCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the memoirs MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes memoirs, their media
and the grid layout resolver as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\memoirs\memoirs.db
- macOS: ~/Library/Application Support/memoirs/memoirs.db
- Linux: ~/.local/share/memoirs/memoirs.db

Example:

  memoirs mcp
  memoirs mcp --db memoirs.db --log-format json 2> server.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		srv := mcp.NewMemoirsMCPServer(a.svc, a.db, a.log)
		defer srv.Close()
		srv.RegisterAll()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Memoirs MCP server started. DB: %s (WAL: %t, Sync: %s)\n", a.dbPath, a.cfg.WAL, a.cfg.Sync)
		fmt.Fprintln(os.Stderr, "Available tools: "+strings.Join(mcp.ToolNames, ", "))
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}

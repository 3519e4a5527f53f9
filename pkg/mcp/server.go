package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
	"github.com/unowned-ai/memoirs/pkg/version"
)

// ToolNames lists every tool RegisterAll installs, in registration order.
var ToolNames = []string{
	"ping",
	"list_memoirs",
	"get_memoir",
	"create_memoir",
	"update_memoir",
	"delete_memoir",
	"remove_media",
	"attach_media",
	"toggle_bookmark",
	"search_memoirs",
	"resolve_layout",
}

type MemoirsMCPServer struct {
	mcpServer *server.MCPServer
	svc       *memoirs.Service
	db        *sql.DB
	logger    zerolog.Logger
}

// NewMemoirsMCPServer wraps svc in an MCP server. db is only used to
// checkpoint and close the database on Close; it may be nil.
func NewMemoirsMCPServer(svc *memoirs.Service, db *sql.DB, logger zerolog.Logger) *MemoirsMCPServer {
	s := server.NewMCPServer(
		"Memoirs MCP Server",
		version.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	return &MemoirsMCPServer{
		mcpServer: s,
		svc:       svc,
		db:        db,
		logger:    logger.With().Str("component", "mcp").Logger(),
	}
}

// RegisterAll installs every memoir tool.
func (s *MemoirsMCPServer) RegisterAll() {
	RegisterPingTool(s.mcpServer)
	RegisterListMemoirsTool(s.mcpServer, s.svc)
	RegisterGetMemoirTool(s.mcpServer, s.svc)
	RegisterCreateMemoirTool(s.mcpServer, s.svc)
	RegisterUpdateMemoirTool(s.mcpServer, s.svc)
	RegisterDeleteMemoirTool(s.mcpServer, s.svc)
	RegisterRemoveMediaTool(s.mcpServer, s.svc)
	RegisterAttachMediaTool(s.mcpServer, s.svc)
	RegisterToggleBookmarkTool(s.mcpServer, s.svc)
	RegisterSearchMemoirsTool(s.mcpServer, s.svc)
	RegisterResolveLayoutTool(s.mcpServer, s.svc)
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *MemoirsMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *MemoirsMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close waits for pending writes, then checkpoints and closes the database.
func (s *MemoirsMCPServer) Close() error {
	s.svc.Wait()
	if s.db == nil {
		return nil
	}
	// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		s.logger.Warn().Err(err).Msg("WAL checkpoint failed during close")
	}
	return s.db.Close()
}

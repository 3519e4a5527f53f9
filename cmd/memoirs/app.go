package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/config"
	pkgdb "github.com/unowned-ai/memoirs/pkg/db"
	"github.com/unowned-ai/memoirs/pkg/logger"
	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
	"github.com/unowned-ai/memoirs/pkg/utils"
)

// app is everything a command needs to work with memoirs.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	db     *sql.DB
	dbPath string
	files  *media.FileStore
	svc    *memoirs.Service
}

// loadConfig reads MEMOIRS_* variables and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("driver") {
		cfg.DBDriver = dbDriver
	}
	if flags.Changed("wal") {
		cfg.WAL = walMode
	}
	if flags.Changed("sync") {
		cfg.Sync = syncMode
	}
	if flags.Changed("media-dir") {
		cfg.MediaDir = mediaDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New("memoirs", cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

func openDatabase(cfg *config.Config) (*sql.DB, string, error) {
	path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, "", errors.Wrap(err, "resolve database path")
	}
	conn, err := pkgdb.Open(path, pkgdb.Options{Driver: cfg.DBDriver, WAL: cfg.WAL, Sync: cfg.Sync})
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to connect to database '%s'", path)
	}
	return conn, path, nil
}

// openApp connects to the database, brings its schema up to date and loads
// every memoir into the store.
func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	conn, path, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := pkgdb.UpgradeDB(conn, path, pkgdb.TargetSchemaVersion, log); err != nil {
		conn.Close()
		return nil, err
	}

	dir, err := utils.ResolveAndEnsureMediaDir(cfg.MediaDir)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "resolve media directory")
	}
	files := media.NewFileStore(dir, log)

	svc := memoirs.NewService(memoirs.NewStore(), memoirs.NewSQLiteRepository(conn), files, log,
		memoirs.WithAttachmentLimit(cfg.MaxAttachments))
	if err := svc.Init(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Debug().Str("db", path).Str("media_dir", dir).Int("memoirs", svc.Store().Len()).Msg("memoirs loaded")
	return &app{cfg: cfg, log: log, db: conn, dbPath: path, files: files, svc: svc}, nil
}

// Close waits for background writes and closes the database.
func (a *app) Close() error {
	a.svc.Wait()
	return a.db.Close()
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}

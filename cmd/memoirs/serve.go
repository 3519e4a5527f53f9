package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memoirs HTTP API",
	Long: `Starts a JSON REST API over the memoir store on --addr (or MEMOIRS_HTTP_ADDR).

Routes:

  GET    /health
  GET    /memoirs?q=&category=&from=&to=
  POST   /memoirs
  GET    /memoirs/{id}
  PATCH  /memoirs/{id}
  DELETE /memoirs/{id}
  POST   /memoirs/{id}/bookmark
  POST   /memoirs/{id}/media
  DELETE /memoirs/{id}/media/{mediaID}
  GET    /memoirs/{id}/layout?mode=&expanded=&width=&gap=`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create cancellable root context bound to SIGINT/SIGTERM
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(a.svc, a.db, a.log),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("addr", addr).Str("db", a.dbPath).Int("memoirs", a.svc.Store().Len()).Msg("HTTP API listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		// Graceful shutdown on context cancel or server error
		select {
		case <-ctx.Done():
			a.log.Info().Msg("Shutting down server")
			ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctxShutdown); err != nil {
				a.log.Error().Stack().Err(err).Msg("Server forced to shutdown")
				return err
			}
			a.log.Info().Msg("Server exited")
			return nil
		case err, ok := <-errCh:
			if !ok {
				return nil
			}
			a.log.Error().Stack().Err(err).Msg("HTTP server failed")
			return err
		}
	},
}

func initServeCmd() {
	serveCmd.Flags().String("addr", "", "Listen address (default: MEMOIRS_HTTP_ADDR or 127.0.0.1:8787)")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"catalog-scraper/internal/api"
	"catalog-scraper/internal/app"
	"catalog-scraper/internal/fetcher"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape and catalog HTTP API",
		Long: `Serve exposes the scraper over HTTP and stores every scraped item.

Routes:
  POST /api/scrape/rozetka   {"url": "...", "pages_num": 2}
  POST /api/scrape/telemart  {"url": "...", "pages_num": 2}
  GET  /api/                 distinct item types
  GET  /api/all              all stored items
  GET  /api/items/{type}     stored items of one type

A storage driver other than "none" is required.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", "", "Listen address (default server.addr)")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log: %v\n", err)
		}
	}()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	repo, err := app.OpenRepository(cfg, logger)
	if err != nil {
		return err
	}
	if repo == nil {
		return errors.New("serve needs storage.driver to be mssql, postgres or sqlite")
	}
	defer closeRepository(repo, logger)

	svc, err := app.NewService(cfg, fetcher.New(cfg, logger), repo, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(svc, svc, logger).Handler(),
		ReadHeaderTimeout: cfg.GetReadTimeout(),
	}

	ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening", "addr", server.Addr, "engine", cfg.HTTP.Engine)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()

		logger.Info("Shutting down server", "timeout", cfg.GetShutdownTimeout().String())
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

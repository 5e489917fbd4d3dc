package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/matt-steen/todo-relay/pkg/config"
	"github.com/matt-steen/todo-relay/pkg/db"
	"github.com/matt-steen/todo-relay/pkg/server"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}

			return runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dirPerms := 0o755
	if err := os.MkdirAll(filepath.Dir(cfg.Server.DBFile), fs.FileMode(dirPerms)); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	database, err := db.NewDatabase(ctx, cfg.Server.DBFile)
	if err != nil {
		return err
	}
	defer database.Close()

	srv := server.NewServer(database, todo.ClientConfig{HideTeamSidebar: cfg.Server.HideTeamSidebar})

	loader.Watch(func(c *config.Config) {
		srv.SetClientConfig(todo.ClientConfig{HideTeamSidebar: c.Server.HideTeamSidebar})
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("db", cfg.Server.DBFile).Msg("starting server...")
		fmt.Printf("listening on %s\n", cfg.Server.Addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error serving http: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		log.Info().Msg("shutting down server")

		srv.Hub().Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

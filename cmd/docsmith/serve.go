package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/orchestrator"
	"github.com/docsmith/docsmith/internal/server"
	"github.com/docsmith/docsmith/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the docstring pipeline over HTTP",
	Long:  `Start an HTTP server exposing POST /generate: JSON {code, style, overwrite} in, rewritten source out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		process := func(ctx context.Context, source string, style types.Style, overwrite bool) (*orchestrator.FileResult, error) {
			return newOrchestrator(client, cfg, style, overwrite).ProcessSource(ctx, source)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           server.NewHandler(process),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s Listening on %s\n", green("✓"), addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

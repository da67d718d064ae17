package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/sharehub"
	"github.com/eringen/sharehub/media"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := siteConfigFromEnv()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			var opts []sharehub.Option
			uploader, err := uploaderFromEnv()
			if err != nil {
				return err
			}
			if s3u, ok := uploader.(*media.S3Uploader); ok {
				if err := s3u.EnsureBucket(cmd.Context()); err != nil {
					return err
				}
				opts = append(opts, sharehub.WithUploader(s3u))
			}

			return serve(cmd.Context(), sharehub.New(cfg, opts...))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides ADDR)")
	return cmd
}

// serve runs app until ctx is cancelled or SIGINT/SIGTERM arrives.
func serve(ctx context.Context, app *sharehub.App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Init(ctx); err != nil {
		return err
	}
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("sharehub listening on %s", app.Config.Addr)
		errCh <- app.Echo.Start(app.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joestump/title-optimizer/internal/build"
	"github.com/joestump/title-optimizer/internal/config"
	"github.com/joestump/title-optimizer/internal/handler"
	"github.com/joestump/title-optimizer/internal/llm"
	"github.com/joestump/title-optimizer/internal/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(log)

			router := handler.NewRouter(handler.Deps{
				Completer:   llm.New(cfg),
				Logger:      log,
				CORSOrigins: cfg.HTTP.CORSOrigins,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("title optimizer listening",
					slog.String("addr", cfg.HTTP.Addr),
					slog.String("model", cfg.LLM.Model),
					slog.String("version", build.Version),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
)

type Config struct {
	Addr string `yaml:"addr"`
	Root string `yaml:"root"`
}

// Run serves cfg.Root until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if _, err := os.Stat(cfg.Root); err != nil {
		return fmt.Errorf("mirror root: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: NewHandler(cfg.Root),
	}

	go func() {
		<-ctx.Done()
		slog.InfoContext(ctx, "shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	slog.Info("serving mirror", slog.String("addr", cfg.Addr), slog.String("root", cfg.Root))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

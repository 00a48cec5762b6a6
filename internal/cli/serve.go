package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nutrivision/config"
	"nutrivision/internal/app"
	"nutrivision/internal/server"
	"nutrivision/pkg/logger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringP("port", "p", "", "Listen port (default: $SERVER_PORT or 8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateGPT(); err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}

	// a server always logs
	l := logger.New()
	if verbose || cfg.Log.Development {
		l = logger.NewDevelopment()
	}
	defer l.Sync()

	a, err := app.New(cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, server.NewServer(cfg.Server.Port, a.Tracker, l), l)
}

func serve(ctx context.Context, cfg *config.Config, srv *server.Server, l *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the A/B testing API",
	Long: `Start the HTTP API serving variant assignments, event tracking and the
admin endpoints.

Examples:
  formab serve              # Start on FORMAB_HTTP_PORT (default 8080)
  formab serve --port 3000  # Start on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on (overrides FORMAB_HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Close(closeCtx)
	}()

	port := app.Config.HTTP.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	if len(app.Config.HTTP.AdminTokens) == 0 {
		app.Logger.Warn("no admin tokens configured, admin endpoints will reject every request")
	}

	server := web.NewServer(web.Config{
		Port:            port,
		ShutdownTimeout: app.Config.HTTP.ShutdownTimeout,
		AdminTokens:     app.Config.HTTP.AdminTokens,
	}, app.Service, app.Logger)

	err = server.Start(ctx)
	app.Logger.Info("server stopped", zap.Error(err))
	return err
}

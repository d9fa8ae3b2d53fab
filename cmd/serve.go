package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/green-analyzer/internal/config"
	"github.com/ziadkadry99/green-analyzer/internal/live"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/report"
	"github.com/ziadkadry99/green-analyzer/internal/server"
	"github.com/ziadkadry99/green-analyzer/internal/wizard"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the analysis wizard",
	Long:  `Starts the wizard HTTP API with the state websocket, printable reports and shared report links.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctrl, err := newController(cfg, s)
		if err != nil {
			return err
		}
		if err := ctrl.Boot(ctx); err != nil {
			return fmt.Errorf("starting session: %w", err)
		}

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowAll:       serveAllowAll,
		}, s.db, logger)

		if err := registerAllRoutes(srv, cfg, ctrl, s.projects); err != nil {
			return err
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := ctrl.Close(shutdownCtx); err != nil {
				logger.Error("flushing session failed", "error", err)
			}
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "green-analyzer %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", s.db.Path())
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s / %s)\n", cfg.Provider, cfg.Model, cfg.ProModel)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// registerAllRoutes wires up the feature routes.
func registerAllRoutes(srv *server.Server, cfg *config.Config, ctrl *wizard.Controller, store *projects.Store) error {
	r := srv.Router()

	// Wizard session
	wizard.RegisterRoutes(r, ctrl, cfg.ShareBase())

	// Saved projects
	projects.RegisterRoutes(r, store)

	// Reports
	rr, err := report.New()
	if err != nil {
		return err
	}
	report.RegisterRoutes(r, rr, ctrl, logger)

	// State stream
	live.NewHub(ctrl, logger, nil).RegisterRoutes(r)
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all", false, "Allow every CORS origin (development)")
	rootCmd.AddCommand(serveCmd)
}

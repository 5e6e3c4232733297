package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"uikb/internal/api"
	"uikb/internal/mcp"
	"uikb/internal/streaming"
	"uikb/internal/version"
)

var (
	servePort     int
	serveHost     string
	serveEndpoint string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP HTTP server",
	Long: `Start the uikb MCP server. Clients initialize a session with a POST to the
endpoint, then use the Mcp-Session-Id header on every following request.
GET on the endpoint opens the session's event stream; DELETE ends the session.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 3000)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config, 127.0.0.1)")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "MCP endpoint path (default from config, /mcp)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Server.Endpoint = serveEndpoint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, cfg)

	cat := newCatalog(cfg, logger)
	sessions := mcp.NewSessionStore(mcp.SessionStoreOptions{
		Stream: streaming.Config{
			HeartbeatPeriod: time.Duration(cfg.Server.HeartbeatSeconds) * time.Second,
		},
		Logger: logger,
	})
	server, err := api.NewServer(cfg, mcp.NewServer(version.Version, cat, logger), sessions, logger)
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "uikb MCP server listening on http://%s%s\n", server.Addr(), cfg.Server.Endpoint)
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}

		logger.Info("Server stopped gracefully")
	}

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/lexan/internal/rpc"
	"github.com/msto63/lexan/internal/server"
	coregrpc "github.com/msto63/lexan/pkg/core/grpc"
	"github.com/msto63/lexan/pkg/core/health"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/msto63/lexan/pkg/core/version"
	"github.com/spf13/cobra"
)

var (
	serveHost     string
	servePort     int
	serveGRPCPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP, WebSocket and gRPC server",
	Long: `Starts the lexan server.

Endpoints:
  POST /api/v1/tokenize   - tokenize {"source": "..."}
  POST /api/v1/parse      - parse {"source": "..."}
  GET  /api/v1/ws         - WebSocket for interactive analysis
  GET  /health            - health report

The gRPC service lexan.v1.Analyzer is started when grpc.enabled is set in
the configuration or --grpc-port is given.

Examples:
  lexan serve
  lexan serve --port 8081 --grpc-port 9091`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from config)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC port; enables the gRPC service")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New("lexan-serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newAnalyzer()
	defer a.Close()

	cfg := *appConfig
	if serveHost != "" {
		cfg.Server.Host = serveHost
		cfg.GRPC.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveGRPCPort != 0 {
		cfg.GRPC.Port = serveGRPCPort
		cfg.GRPC.Enabled = true
	}

	httpCfg := server.DefaultConfig()
	httpCfg.Host = cfg.Server.Host
	httpCfg.HTTPPort = cfg.Server.Port
	httpCfg.ReadTimeout = cfg.Server.ReadTimeout.Duration
	httpCfg.WriteTimeout = cfg.Server.WriteTimeout.Duration
	httpCfg.MaxRequestSize = cfg.Server.MaxRequestSize
	httpCfg.Version = version.Server
	httpCfg.CORS = server.CORSConfig{
		Enabled:        cfg.Server.CORS.Enabled,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
	}

	httpServer, err := server.New(httpCfg, a)
	if err != nil {
		return fmt.Errorf("create HTTP server: %w", err)
	}
	httpServer.HealthRegistry().Register(
		health.TCPCheck("http-listener", dialAddress(cfg.GetServiceAddress("http")), 2*time.Second))

	var grpcServer *coregrpc.Server
	if cfg.GRPC.Enabled {
		grpcCfg := coregrpc.DefaultServerConfig()
		grpcCfg.Host = cfg.GRPC.Host
		grpcCfg.Port = cfg.GRPC.Port

		grpcServer = coregrpc.NewServer(grpcCfg)
		rpc.Register(grpcServer.GRPCServer(), a)
		grpcServer.SetServing(rpc.ServiceName, true)

		if err := grpcServer.StartAsync(); err != nil {
			return fmt.Errorf("start gRPC server: %w", err)
		}

		httpServer.HealthRegistry().Register(
			health.GRPCCheck("grpc", dialAddress(cfg.GetServiceAddress("grpc")), 2*time.Second))
	}

	if err := httpServer.StartAsync(); err != nil {
		if grpcServer != nil {
			grpcServer.Stop()
		}
		return fmt.Errorf("start HTTP server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "lexan %s listening on http://%s\n", version.Platform, httpServer.Address())
	if grpcServer != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "gRPC service %s on %s\n", rpc.ServiceName, grpcServer.Address())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.StopWithTimeout(shutdownCtx)
	}
	return httpServer.Stop(shutdownCtx)
}

// dialAddress turns a listen address into one that health checks can
// connect to
func dialAddress(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"awsdocs/awsd"
	"awsdocs/configuration"
	"awsdocs/errors"
	"awsdocs/logger"
	"awsdocs/server"
	"awsdocs/session"
)

const (
	packageName = "main"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "awsdocs",
		Short:         "awsdocs serves simplified documents of AWS inventory over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [service...]",
		Short: "Run the configured services, or only the named ones",
		Long: "Run the services declared in the services file (all five on their default ports when the file is absent).\n" +
			"Known services: ec2, network, s3, security-groups, auth.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, args)
		},
	}
}

func serve(ctx context.Context, names []string) error {
	// Initialize logger
	if err := logger.Initialize("info"); err != nil {
		return errors.New(errors.ErrConfigParse, "Failed to initialize logger",
			map[string]interface{}{
				"operation": "logger_init",
			}, err)
	}
	defer logger.Sync()

	// Load configuration
	config, err := configuration.Initialize()
	if err != nil {
		zap.L().Error("Failed to load configuration",
			zap.String("package", packageName),
			zap.String("operation", "config_load"),
			zap.Error(err),
		)
		return err
	}
	if err := logger.Initialize(config.LogLevel); err != nil {
		return errors.New(errors.ErrConfigInvalid, "invalid LOG_LEVEL",
			map[string]interface{}{
				"config_key": "LOG_LEVEL",
				"value":      config.LogLevel,
			}, err)
	}

	log := logger.For(packageName)
	log.Info("Application starting",
		zap.String("operation", "startup"),
		zap.String("version", version),
		zap.String("default_region", config.DefaultRegion),
	)

	services, err := selectServices(config.Services, names)
	if err != nil {
		log.Error("Invalid service selection",
			zap.String("operation", "service_selection"),
			zap.Error(err),
		)
		return err
	}

	inventory := awsd.NewInventory(awsd.NewSDKFactory(config, zap.L()))
	sessions := session.NewManager(inventory, session.NewMemoryStore(), config.DefaultRegion, zap.L())
	srv := server.New(server.OptionsFromConfig(config), inventory, sessions, zap.L())

	servers := make([]*http.Server, 0, len(services))
	for _, svc := range services {
		httpServer, err := srv.HTTPServer(svc)
		if err != nil {
			return err
		}
		servers = append(servers, httpServer)
		log.Info("Service configured",
			zap.String("operation", "service_setup"),
			zap.String("service", svc.Name),
			zap.String("listen", svc.Listen),
		)
	}

	return runServers(ctx, servers, config.ShutdownTimeoutDuration(), log)
}

// selectServices restricts the configured services to names, keeping the
// configured order. No names selects everything.
func selectServices(configured []configuration.ServiceConfig, names []string) ([]configuration.ServiceConfig, error) {
	if len(configured) == 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "no services enabled", nil, nil)
	}
	if len(names) == 0 {
		return configured, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	selected := make([]configuration.ServiceConfig, 0, len(names))
	for _, svc := range configured {
		if wanted[svc.Name] {
			selected = append(selected, svc)
			delete(wanted, svc.Name)
		}
	}
	for _, name := range names {
		if !wanted[name] {
			continue
		}
		return nil, errors.New(errors.ErrConfigInvalid, "service is not configured",
			map[string]interface{}{
				"service": name,
			}, nil)
	}
	return selected, nil
}

// runServers serves until ctx is done or a listener fails, then shuts every
// server down within shutdownTimeout.
func runServers(ctx context.Context, servers []*http.Server, shutdownTimeout time.Duration, log *zap.Logger) error {
	errChan := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			log.Info("Listening",
				zap.String("operation", "listen"),
				zap.String("addr", s.Addr),
			)
			if err := s.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("listen on %s: %w", s.Addr, err)
			}
		}(s)
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Received signal, initiating shutdown",
			zap.String("operation", "shutdown"),
		)
	case runErr = <-errChan:
		log.Error("Server failed",
			zap.String("operation", "serve"),
			zap.Error(runErr),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Warn("Graceful shutdown failed",
				zap.String("operation", "shutdown"),
				zap.String("addr", s.Addr),
				zap.Error(err),
			)
		}
	}

	log.Info("Shutdown complete",
		zap.String("operation", "shutdown_complete"),
	)
	return runErr
}

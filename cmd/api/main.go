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

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/server"

	"github.com/go-extras/cobraflags"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	envFileFlag = "env-file"
	portFlag    = "port"
)

var serveFlags = map[string]cobraflags.Flag{
	envFileFlag: &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: "",
		Usage: "Additional env file loaded before the environment is read",
	},
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "Port to listen on, overrides SERVER_PORT",
	},
}

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 30 seconds to finish the requests it is handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// loadConfig reads the optional extra env file and then the regular
// configuration sources
func loadConfig(flags map[string]cobraflags.Flag) (*config.Config, error) {
	if envFile := flags[envFileFlag].GetString(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := config.Load()
	if port, ok := flags[portFlag]; ok && port.GetString() != "" {
		cfg.Server.Port = port.GetString()
	}
	return cfg, nil
}

func serve(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveFlags)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	dbService, err := database.New(cfg.Database, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	log.Info("Database health check", zap.Any("health", dbService.Health(ctx)))
	cancel()

	if err := database.RunMigrations(dbService.SQL(), log); err != nil {
		dbService.Close()
		return err
	}

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	srv := server.NewServer(cfg, log, dbService, redisClient)
	return listenAndServe(srv, log)
}

// listenAndServe runs srv until a shutdown signal arrives. When the listener
// fails instead, the server resources are released before returning.
func listenAndServe(srv *server.Server, log *zap.Logger) error {
	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("Error closing server resources", zap.Error(closeErr))
		}
		return fmt.Errorf("HTTP server error: %w", err)
	}

	<-done
	log.Info("Graceful shutdown complete")
	return nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront catalog and review API",
		Long: `Storefront serves the product catalog, category tree, product reviews and
user accounts over HTTP.

Running without a subcommand starts the server (same as "storefront serve").`,
		RunE:          serve,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobraflags.RegisterMap(rootCmd, serveFlags)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		RunE:  serve,
	}
	cobraflags.RegisterMap(serveCmd, serveFlags)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hongminglow/minibank/cmd/server/output"
	"github.com/hongminglow/minibank/internal/config"
	"github.com/hongminglow/minibank/internal/server"
	"github.com/hongminglow/minibank/internal/storage"
	"github.com/hongminglow/minibank/internal/storage/memory"
	"github.com/hongminglow/minibank/internal/storage/postgres"
)

var (
	portFlag    string
	storageFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&portFlag, "port", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&storageFlag, "storage", "", "Storage driver: postgres or memory (overrides STORAGE_DRIVER)")
	rootCmd.AddCommand(serveCmd)
	// bare invocation serves
	rootCmd.RunE = runServe
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	srv, err := server.New(cfg, store, log)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	output.Success("minibank listening on %s", srv.Addr())
	output.KeyValue("storage", cfg.StorageDriver)
	output.KeyValue("env", cfg.Env)
	log.WithFields(logrus.Fields{"addr": srv.Addr(), "storage": cfg.StorageDriver}).Info("server started")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		return err
	}
	return nil
}

func loadConfig() (config.Config, error) {
	// flags may supply what the environment lacks, so apply them before validating
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	if storageFlag != "" {
		cfg.StorageDriver = strings.ToLower(storageFlag)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return memory.NewStore(), nil
	}
	return postgres.NewStore(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
}

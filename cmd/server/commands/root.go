package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hongminglow/minibank/cmd/server/output"
	"github.com/hongminglow/minibank/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "minibank",
	Short: "Minimal banking REST API",
	Long: `minibank serves a small banking API: users, accounts and an atomic
deposit/withdrawal ledger with paginated transaction history.

Configuration comes from the environment (and a local .env file when present).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadLocalEnv()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		output.Warning("no .env file found; relying on existing environment")
	}
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if cfg.IsDevelopment() {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

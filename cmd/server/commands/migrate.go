package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hongminglow/minibank/cmd/server/output"
	"github.com/hongminglow/minibank/internal/storage/postgres"
)

var migrateDBURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	Long: `Connects to Postgres and creates the users, accounts and transactions
tables and their indexes if they do not exist yet. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := migrateDBURL
		if url == "" {
			url = strings.TrimSpace(os.Getenv("DATABASE_URL"))
		}
		if url == "" {
			return fmt.Errorf("database URL required: pass --db or set DATABASE_URL")
		}
		output.Info("applying schema")
		store, err := postgres.NewStore(cmd.Context(), url, 1)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store.Close()
		output.Success("schema is up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDBURL, "db", "", "Database connection URL (defaults to DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd)
}

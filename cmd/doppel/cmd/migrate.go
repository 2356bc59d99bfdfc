package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/doppelgang/doppel/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded schema migrations to the snapshot store",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "Show migration status without applying anything")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.StoreURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer database.Close()

	if status, _ := cmd.Flags().GetBool("status"); status {
		return printMigrationStatus(database)
	}

	log.Printf("Applying migrations to %s...", cfg.StoreURL)
	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Printf("Migrations applied")
	return nil
}

func printMigrationStatus(database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, s := range statuses {
		mark := "pending"
		if s.Applied {
			mark = "applied"
		}
		line := fmt.Sprintf("%s\t%s\t%s", mark, s.ID, s.Checksum[:12])
		if s.AppliedAt != nil {
			line += "\t" + s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Println(line)
	}
	return nil
}

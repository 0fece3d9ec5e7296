package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rentdesk/config"
	"rentdesk/database"
	"rentdesk/utils"
)

func setup() error {
	_ = godotenv.Load()
	if err := config.InitConfig(); err != nil {
		return err
	}
	return database.InitDB()
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			defer database.CloseDB()
			return database.RunMigrations()
		},
	}
}

func seedCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed default plans and the super admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			defer database.CloseDB()
			if err := database.RunMigrations(); err != nil {
				return err
			}
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			return database.SeedDefaults(email, hash)
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@rentdesk.local", "super admin email")
	cmd.Flags().StringVar(&password, "password", "changeme", "super admin password")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show row counts per table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			defer database.CloseDB()

			tables := []string{
				"plans", "organizations", "users", "units", "properties",
				"tenants", "contracts", "payments", "maintenance_requests",
				"notifications", "audits",
			}
			for _, table := range tables {
				if !database.DB.Migrator().HasTable(table) {
					fmt.Printf("%-22s (missing)\n", table)
					continue
				}
				var count int64
				if err := database.DB.Table(table).Where("deleted_at IS NULL").Count(&count).Error; err != nil {
					return err
				}
				fmt.Printf("%-22s %d\n", table, count)
			}
			return nil
		},
	}
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-subscriptions",
		Short: "Mark organizations with lapsed paid periods as past_due",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			defer database.CloseDB()
			n, err := database.ExpireLapsedSubscriptions(time.Now())
			if err != nil {
				return err
			}
			log.Printf("Marked %d organizations past_due", n)
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration and seed tool",
	}

	rootCmd.AddCommand(
		upCmd(),
		seedCmd(),
		statusCmd(),
		expireCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

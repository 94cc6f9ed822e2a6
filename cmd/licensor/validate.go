package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/airosofts/licensor/adapters/postgres"
	"github.com/airosofts/licensor/adapters/sqlite"
	"github.com/airosofts/licensor/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the licensor configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Plans and software entries are unique
  - Database is reachable (optional)

Examples:
  licensor validate
  licensor validate --config /etc/licensor/config.yaml --check-database`,
	RunE: runValidate,
}

var (
	validateCheckDatabase bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check that the database is reachable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	fmt.Printf("  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)
	fmt.Printf("  %s Payment provider: %s\n", checkMark, cfg.Payment.Provider)
	fmt.Printf("  %s Email provider: %s\n", checkMark, cfg.Email.Provider)
	fmt.Printf("  %s Plans configured: %d\n", checkMark, len(cfg.Plans))
	fmt.Printf("  %s Software configured: %d\n", checkMark, len(cfg.Software))

	if cfg.Auth.JWTSecret == "" {
		fmt.Printf("  %s auth.jwt_secret not set (tokens will not survive a restart)\n", warnMark)
	}
	if cfg.Payment.Provider == "stripe" && cfg.Payment.StripeWebhookSecret == "" {
		fmt.Printf("  %s payment.stripe_webhook_secret not set (webhooks will be rejected)\n", warnMark)
	}

	if validateCheckDatabase {
		if err := checkDatabase(cfg.Database); err != nil {
			fmt.Printf("  %s Database reachable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database reachable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

func checkDatabase(cfg config.DatabaseConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.Driver == "postgres" {
		db, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.DSN))
		if err != nil {
			return err
		}
		defer db.Close()
		return db.HealthCheck(ctx)
	}

	db, err := sqlite.Open(cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.HealthCheck(ctx)
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
	warnMark  = "\033[33m!\033[0m"
)

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/airosofts/licensor/bootstrap"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the licensor HTTP server.

The server will:
  - Load configuration from licensor.yaml (or --config)
  - Or load configuration from LICENSOR_* environment variables
  - Connect to the database and apply migrations
  - Sync the software catalog
  - Serve checkout, webhook, login and dashboard endpoints

Environment variables (for Docker deployments):
  LICENSOR_DATABASE_DRIVER        - sqlite or postgres
  LICENSOR_DATABASE_DSN           - Database path or URL (default: licensor.db)
  LICENSOR_SERVER_PORT            - Server port (default: 8080)
  LICENSOR_PAYMENT_PROVIDER       - stripe, dummy or none
  LICENSOR_STRIPE_SECRET_KEY      - Stripe API key
  LICENSOR_STRIPE_WEBHOOK_SECRET  - Stripe webhook signing secret
  LICENSOR_EMAIL_PROVIDER         - smtp, postmark, mock or none
  LICENSOR_JWT_SECRET             - Dashboard token signing secret
  LICENSOR_LOG_LEVEL              - Log level: debug, info, warn, error

Examples:
  licensor serve
  licensor serve --config /etc/licensor/config.yaml
  licensor serve --hot-reload=false

  # Docker (env vars only):
  LICENSOR_PAYMENT_PROVIDER=dummy licensor serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "reload plans and software when the config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(context.Background(), bootstrap.Options{
		ConfigPath: cfgFile,
		Watch:      hotReload,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}

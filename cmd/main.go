package main

import (
	"log"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// @title          estatehub API
// @version        1.0
// @description    Role-scoped property management: listings, delegation, KYC, tenant onboarding, leases, messaging and shortlists.
// @BasePath       /v1
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "estatehub",
		Short:         "Property management API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		workerCmd(&configPath),
		migrateCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("estatehub: %v", err)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/tourbook/tourbook/internal/interfaces/cli/config"
	"github.com/tourbook/tourbook/internal/interfaces/cli/migrate"
	"github.com/tourbook/tourbook/internal/interfaces/cli/server"
	"github.com/tourbook/tourbook/internal/interfaces/cli/token"
	"github.com/tourbook/tourbook/internal/shared/version"
)

//	@title						Tourbook Payments API
//	@version					1.0
//	@description				Card payment authorization for tour reservations.
//	@BasePath					/
//	@securityDefinitions.apikey	Bearer
//	@in							header
//	@name						Authorization

func main() {
	rootCmd := &cobra.Command{
		Use:     "tourbook",
		Short:   "Tourbook payment service",
		Long:    `Tourbook takes card payments for tour reservations through a Redsys-compatible gateway: preauthorize, confirm or cancel, and reconcile asynchronous notifications.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		configcmd.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

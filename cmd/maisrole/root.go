package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the maisrole CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maisrole",
		Short: "Maisrole accounts API",
		Long: `Maisrole serves the account API of the booking marketplace: user and
host registration, login, role-based authorization and reviews.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewWorkerCmd())

	return cmd
}

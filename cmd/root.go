package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the authcore CLI. All settings come
// from environment variables.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authcore",
		Short: "authcore - login, password reset and account state enforcement",
		Long: `authcore issues bearer tokens, runs the password reset workflow and
enforces account bans over gRPC and HTTP.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewCreateIdentityCmd())

	return cmd
}

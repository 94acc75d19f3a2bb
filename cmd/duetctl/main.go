package main

import (
	"os"

	"github.com/duetapp/duet/cmd/duetctl/cmd"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "duetctl",
		Short:        "Administration tools for duet",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.GoalCmd())
	rootCmd.AddCommand(cmd.PairingCmd())
	rootCmd.AddCommand(cmd.SyncCmd())
	rootCmd.AddCommand(cmd.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/duetapp/duet/internal/config"
	"github.com/duetapp/duet/internal/service"
	"github.com/spf13/cobra"
)

func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "API tokens",
	}

	cmd.AddCommand(tokenIssueCmd())
	return cmd
}

func tokenIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Sign a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			token, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry).GenerateJWT(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

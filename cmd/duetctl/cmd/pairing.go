package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/duetapp/duet/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func PairingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairing",
		Short: "Manage the pairing directory",
	}

	cmd.AddCommand(pairingCreateCmd())
	cmd.AddCommand(pairingEndCmd())
	cmd.AddCommand(pairingShowCmd())
	return cmd
}

func pairingCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <user-a> <user-b>",
		Short: "Pair two users who are both unpaired",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == args[1] {
				return errors.New("a user cannot be paired with themselves")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			for _, userID := range args {
				existing, err := a.Pairings.FindActivePairing(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("user %s already has active pairing %s", userID, existing.ID)
				}
			}

			pairing := &model.Pairing{
				ID:        uuid.New().String(),
				UserA:     args[0],
				UserB:     args[1],
				Status:    model.PairingStatusActive,
				CreatedAt: time.Now().UTC(),
			}
			if err := a.Pairings.Create(cmd.Context(), pairing); err != nil {
				return fmt.Errorf("failed to create pairing: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), pairing)
		},
	}
}

func pairingEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <pairing-id>",
		Short: "End a pairing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Pairings.End(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to end pairing: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pairing %s ended\n", args[0])
			return nil
		},
	}
}

func pairingShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's active pairing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			pairing, err := a.Pairings.FindActivePairing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if pairing == nil {
				return fmt.Errorf("user %s has no active pairing", args[0])
			}
			return printJSON(cmd.OutOrStdout(), pairing)
		},
	}
}

package cmd

import (
	"github.com/spf13/cobra"
)

func GoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Goal administration",
	}

	cmd.AddCommand(goalSetStatusCmd())
	return cmd
}

func goalSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <goal-id> <completed|failed>",
		Short: "Move an active goal to a terminal status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			goal, err := a.GoalService.SetStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), goal)
		},
	}
}

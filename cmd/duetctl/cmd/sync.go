package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/duetapp/duet/internal/model"
	"github.com/spf13/cobra"
)

func SyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "External metric reports",
	}

	cmd.AddCommand(syncApplyCmd())
	return cmd
}

func syncApplyCmd() *cobra.Command {
	var (
		userID  string
		date    string
		metrics map[string]string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a wearable report for one user and day",
		Example: `  duetctl sync apply --user alice --metric steps=8500 --metric heart_rate=74
  duetctl sync apply --user bob --date 2026-03-01 --metric active_minutes=45`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reported, err := parseMetrics(metrics)
			if err != nil {
				return err
			}
			if date == "" {
				date = time.Now().UTC().Format(model.SyncDateLayout)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.SyncService.ApplyExternalMetrics(cmd.Context(), userID, date, reported)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user the report belongs to")
	cmd.Flags().StringVar(&date, "date", "", "report day as YYYY-MM-DD (default today, UTC)")
	cmd.Flags().StringToStringVar(&metrics, "metric", nil, "metric=value running total, repeatable")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("metric")

	return cmd
}

func parseMetrics(raw map[string]string) (model.Metrics, error) {
	out := make(model.Metrics, len(raw))
	for key, value := range raw {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %q is not a number", key, value)
		}
		out[key] = v
	}
	return out, nil
}

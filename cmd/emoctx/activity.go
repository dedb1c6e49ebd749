package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/spf13/cobra"
)

var activityFlags struct {
	subject subjectFlags
	name    string
	at      string
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Record a completed wellbeing activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := activityFlags.subject.key()
		if err != nil {
			return err
		}
		at, err := parseAt(activityFlags.at)
		if err != nil {
			return err
		}

		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			id, err := a.activities.AddCompletion(ctx, core.ActivityCompletion{
				SubjectKey:  key,
				Activity:    activityFlags.name,
				CompletedAt: at,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "activity %d recorded\n", id)
			return nil
		})
	},
}

func init() {
	activityFlags.subject.bind(activityCmd)
	activityCmd.Flags().StringVarP(&activityFlags.name, "name", "n", "", "activity name, e.g. breathing")
	activityCmd.Flags().StringVar(&activityFlags.at, "at", "", "completion time, RFC3339 (default now)")
	_ = activityCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(activityCmd)
}

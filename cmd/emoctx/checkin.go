package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/pkg/log"
	"github.com/spf13/cobra"
)

var checkinFlags struct {
	subject subjectFlags
	rating  int
	at      string
}

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record a mood check-in",
	Long:  fmt.Sprintf("Records a mood rating from %d (lowest) to %d (highest).", core.MinRating, core.MaxRating),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := checkinFlags.subject.key()
		if err != nil {
			return err
		}
		at, err := parseAt(checkinFlags.at)
		if err != nil {
			return err
		}

		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			id, err := a.ratings.AddRating(ctx, core.RatingRecord{
				SubjectKey: key,
				Rating:     checkinFlags.rating,
				RecordedAt: at,
			})
			if err != nil {
				return err
			}
			log.FromCtx(ctx).Debug().Int64("id", id).Msg("check-in recorded")
			fmt.Fprintf(cmd.OutOrStdout(), "check-in %d recorded\n", id)
			return nil
		})
	},
}

func init() {
	checkinFlags.subject.bind(checkinCmd)
	checkinCmd.Flags().IntVarP(&checkinFlags.rating, "rating", "r", 0, "mood rating")
	checkinCmd.Flags().StringVar(&checkinFlags.at, "at", "", "time of the check-in, RFC3339 (default now)")
	_ = checkinCmd.MarkFlagRequired("rating")
	rootCmd.AddCommand(checkinCmd)
}

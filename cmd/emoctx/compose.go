package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/internal/service/emotion"
	"github.com/sandevgo/tuskheart/internal/service/ui"
	"github.com/spf13/cobra"
)

var composeFlags struct {
	subject subjectFlags
	crisis  bool
	plain   bool
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Print the emotional context for the next turn",
	Long: `Composes the emotional context exactly as a chat turn would receive it.
Prints "(no context)" when there is nothing worth saying.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			text, ok := a.composer().Compose(ctx, emotion.Request{
				Subject:      composeFlags.subject.subject(),
				IsCrisisMode: composeFlags.crisis,
				Trigger:      audit.TriggerManual,
			})

			out := cmd.OutOrStdout()
			switch {
			case !ok && composeFlags.plain:
				fmt.Fprintln(out, "(no context)")
			case !ok:
				fmt.Fprintln(out, ui.RenderEmpty())
			case composeFlags.plain:
				fmt.Fprint(out, text)
			default:
				fmt.Fprint(out, ui.RenderContext(text))
			}
			return nil
		})
	},
}

func init() {
	composeFlags.subject.bind(composeCmd)
	composeCmd.Flags().BoolVar(&composeFlags.crisis, "crisis", false, "compose as if crisis mode were active")
	composeCmd.Flags().BoolVar(&composeFlags.plain, "plain", false, "print without terminal styling")
	rootCmd.AddCommand(composeCmd)
}

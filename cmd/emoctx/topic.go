package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage remembered topics",
}

var topicAddFlags struct {
	subject subjectFlags
	kind    string
	content string
}

var topicAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Remember a topic the user brought up",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := topicAddFlags.subject.key()
		if err != nil {
			return err
		}
		kind := core.TopicKind(topicAddFlags.kind)
		if !kind.Valid() {
			return fmt.Errorf("unknown kind %q", topicAddFlags.kind)
		}

		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			id, err := a.topics.SaveTopic(ctx, core.MemoryTopic{
				SubjectKey: key,
				Kind:       kind,
				Content:    topicAddFlags.content,
				UpdatedAt:  time.Now(),
				Active:     true,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topic %d saved\n", id)
			return nil
		})
	},
}

var topicDeactivateID int64

var topicDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Stop following up on a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.topics.SetTopicActive(ctx, topicDeactivateID, false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topic %d deactivated\n", topicDeactivateID)
			return nil
		})
	},
}

func init() {
	topicAddFlags.subject.bind(topicAddCmd)
	topicAddCmd.Flags().StringVarP(&topicAddFlags.kind, "kind", "k", string(core.TopicThemes),
		"themes, goals, triggers, preferences or people")
	topicAddCmd.Flags().StringVarP(&topicAddFlags.content, "content", "c", "", "short description of the topic")
	_ = topicAddCmd.MarkFlagRequired("content")

	topicDeactivateCmd.Flags().Int64Var(&topicDeactivateID, "id", 0, "topic id")
	_ = topicDeactivateCmd.MarkFlagRequired("id")

	topicCmd.AddCommand(topicAddCmd, topicDeactivateCmd)
	rootCmd.AddCommand(topicCmd)
}

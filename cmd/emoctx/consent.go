package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/spf13/cobra"
)

var consentFlags struct {
	subject subjectFlags
	feature string
}

var consentCmd = &cobra.Command{
	Use:   "consent",
	Short: "Record a consent decision",
}

var consentGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant consent for a feature",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConsent(cmd, true)
	},
}

var consentRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke consent for a feature",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConsent(cmd, false)
	},
}

var consentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the recorded consent for a feature",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := consentFlags.subject.key()
		if err != nil {
			return err
		}
		feature := consentFlags.feature

		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			granted, found, err := a.consents.Consent(ctx, key, feature)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "consent for %s: %s\n", feature, consentState(granted, found))
			return nil
		})
	},
}

func consentState(granted, found bool) string {
	switch {
	case !found:
		return "not recorded"
	case granted:
		return "granted"
	default:
		return "revoked"
	}
}

func setConsent(cmd *cobra.Command, granted bool) error {
	key, err := consentFlags.subject.key()
	if err != nil {
		return err
	}
	feature := consentFlags.feature

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.consents.SetConsent(ctx, key, feature, granted); err != nil {
			return err
		}

		ctx = audit.WithTrigger(ctx, audit.TriggerUserAction)
		if granted {
			a.auditor.ConsentGranted(ctx, key, feature, audit.TriggerUserAction)
			fmt.Fprintf(cmd.OutOrStdout(), "consent for %s granted\n", feature)
		} else {
			a.auditor.ConsentRevoked(ctx, key, feature, audit.TriggerUserAction)
			fmt.Fprintf(cmd.OutOrStdout(), "consent for %s revoked\n", feature)
		}
		return nil
	})
}

func init() {
	for _, c := range []*cobra.Command{consentGrantCmd, consentRevokeCmd, consentShowCmd} {
		consentFlags.subject.bind(c)
		c.Flags().StringVarP(&consentFlags.feature, "feature", "f", "", "feature name, e.g. emotional_intelligence")
		_ = c.MarkFlagRequired("feature")
	}
	consentCmd.AddCommand(consentGrantCmd, consentRevokeCmd, consentShowCmd)
	rootCmd.AddCommand(consentCmd)
}

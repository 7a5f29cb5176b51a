package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kerhoff/weddingplanner/internal/auth"
	"github.com/Kerhoff/weddingplanner/internal/tier"
)

func newTokenCommand() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Ensure a user exists and print a signed session token for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			user, err := app.svc.EnsureUser(cmd.Context(), email, name)
			if err != nil {
				return err
			}

			token, expires, err := auth.NewTokenManager(app.cfg.JWTSecret, 0).Sign(user.ID, user.Email)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "user:    %s\nexpires: %s\ntoken:   %s\n",
				user.ID, expires.Format("2006-01-02 15:04 MST"), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name for a new user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSetTierCommand() *cobra.Command {
	var email, level string

	cmd := &cobra.Command{
		Use:   "set-tier",
		Short: "Change the subscription tier of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tier.Tier(strings.ToUpper(strings.TrimSpace(level)))
			if t != tier.Basic && t != tier.Premium {
				return fmt.Errorf("unknown tier %q, want %s or %s", level, tier.Basic, tier.Premium)
			}

			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.close()

			user, err := app.svc.SetSubscription(cmd.Context(), email, t)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Subscription)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user email (required)")
	cmd.Flags().StringVar(&level, "tier", "", "BASIC or PREMIUM (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}

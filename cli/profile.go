// ABOUTME: Profile CLI commands
// ABOUTME: Record who you are so drafts can speak in your voice
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/nudge/models"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your own profile",
	}
	cmd.AddCommand(newProfileSetCommand(a), newProfileShowCommand(a))
	return cmd
}

func newProfileSetCommand(a *app) *cobra.Command {
	var (
		name, demographics, background, goals, tone string
		summarize                                  bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tone != "" && !models.Tone(tone).Valid() {
				return fmt.Errorf("invalid --tone %q", tone)
			}

			asst, store, err := a.assistant()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			profile, err := store.GetUserProfile(ctx)
			if errors.Is(err, models.ErrNotFound) {
				profile = &models.UserProfile{}
			} else if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			changed := cmd.Flags().Changed
			if changed("name") {
				profile.Name = strings.TrimSpace(name)
			}
			if changed("demographics") {
				profile.Demographics = strings.TrimSpace(demographics)
			}
			if changed("background") {
				profile.BackgroundRaw = strings.TrimSpace(background)
				profile.BackgroundAISummary = profile.BackgroundRaw
			}
			if changed("goals") {
				profile.GoalsRaw = strings.TrimSpace(goals)
				profile.GoalsAISummary = profile.GoalsRaw
			}
			if changed("tone") {
				profile.Preferences.MessageTone = models.Tone(tone)
			}

			if summarize {
				if profile.BackgroundRaw == "" {
					return fmt.Errorf("--summarize needs a background")
				}
				summary, err := asst.SummarizeBackground(ctx, profile.BackgroundRaw)
				if err != nil {
					return fmt.Errorf("failed to summarize background: %w", err)
				}
				profile.BackgroundAISummary = summary
			}

			if err := store.SaveUserProfile(ctx, profile); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Profile saved: %s\n", profile.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Your name")
	cmd.Flags().StringVar(&demographics, "demographics", "", "Location, languages and similar")
	cmd.Flags().StringVar(&background, "background", "", "Your background, in your own words")
	cmd.Flags().StringVar(&goals, "goals", "", "What you are looking for")
	cmd.Flags().StringVar(&tone, "tone", "", "Default message tone: professional, casual or sincere")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Summarize the background via the chat proxy")
	return cmd
}

func newProfileShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			profile, err := store.GetUserProfile(cmd.Context())
			if errors.Is(err, models.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No profile yet. Run: nudge profile set --name ...")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:         %s\n", profile.Name)
			if profile.Demographics != "" {
				fmt.Fprintf(out, "Demographics: %s\n", profile.Demographics)
			}
			fmt.Fprintf(out, "Tone:         %s\n", profile.Tone())
			if profile.BackgroundAISummary != "" {
				fmt.Fprintf(out, "\n%s\n", profile.BackgroundAISummary)
			}
			if profile.GoalsAISummary != "" {
				fmt.Fprintf(out, "\nGoals: %s\n", profile.GoalsAISummary)
			}
			return nil
		},
	}
}

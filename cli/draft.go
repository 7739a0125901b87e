// ABOUTME: Drafting CLI commands
// ABOUTME: Prints compiled interaction contexts, drafts follow-ups and runs the summary prompts
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/nudge/models"
	"github.com/harperreed/nudge/tui"
)

func chatContextArgs(args []string, tone string) (models.ChatContext, error) {
	contactID, err := parseID("contact", args[0])
	if err != nil {
		return models.ChatContext{}, err
	}
	eventID, err := parseID("event", args[1])
	if err != nil {
		return models.ChatContext{}, err
	}
	if tone != "" && !models.Tone(tone).Valid() {
		return models.ChatContext{}, fmt.Errorf("invalid --tone %q", tone)
	}
	return models.OpenChat(&contactID, &eventID, models.Tone(tone)), nil
}

func newContextCommand(a *app) *cobra.Command {
	var tone string
	cmd := &cobra.Command{
		Use:   "context <contact-id> <event-id>",
		Short: "Print the scrubbed context block a draft would be built from",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := chatContextArgs(args, tone)
			if err != nil {
				return err
			}
			asst, _, err := a.assistant()
			if err != nil {
				return err
			}
			compiled, err := asst.CompileContext(cmd.Context(), cc)
			if err != nil {
				return fmt.Errorf("failed to compile context: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), compiled.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&tone, "tone", "", "Tone override: professional, casual or sincere")
	return cmd
}

func newDraftCommand(a *app) *cobra.Command {
	var tone, message string
	cmd := &cobra.Command{
		Use:   "draft <contact-id> <event-id>",
		Short: "Draft a follow-up message for one interaction",
		Long: `Draft a follow-up message for one interaction.

With --message the draft is printed once. Without it, a terminal opens the
interactive drafting window.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := chatContextArgs(args, tone)
			if err != nil {
				return err
			}
			asst, store, err := a.assistant()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if strings.TrimSpace(message) == "" {
				if !a.isTerminal() {
					return fmt.Errorf("--message is required when not running in a terminal")
				}
				return a.runTUI(ctx, tui.NewChatModel(ctx, store, asst, cc))
			}

			draft, err := asst.DraftFollowUp(ctx, cc, message)
			if err != nil {
				return fmt.Errorf("failed to draft follow-up: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), draft)
			return nil
		},
	}
	cmd.Flags().StringVar(&tone, "tone", "", "Tone override: professional, casual or sincere")
	cmd.Flags().StringVarP(&message, "message", "m", "", "What the follow-up should say")
	return cmd
}

func newSummarizeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Run the summary prompts on free text (argument or stdin)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "background [text]",
		Short: "Summarize a self description into a career summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			asst, _, err := a.assistant()
			if err != nil {
				return err
			}
			summary, err := asst.SummarizeBackground(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("failed to summarize: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "interaction [notes]",
		Short: "Split meeting notes into contact and interaction summaries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			asst, _, err := a.assistant()
			if err != nil {
				return err
			}
			summary, err := asst.SummarizeInteraction(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("failed to summarize: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Contact: %s\n\n%s\n\n", summary.ContactShort, summary.Contact)
			fmt.Fprintf(out, "Interaction: %s\n\n%s\n", summary.EventShort, summary.Event)
			return nil
		},
	})
	return cmd
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(b)
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", fmt.Errorf("no text given")
	}
	return text, nil
}

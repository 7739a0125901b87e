// ABOUTME: Interaction event CLI commands
// ABOUTME: Log, list, edit and delete the interactions recorded for a contact
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/nudge/handlers"
	"github.com/harperreed/nudge/models"
)

func newEventCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events"},
		Short:   "Manage interactions with a contact",
	}
	cmd.AddCommand(
		newEventAddCommand(a),
		newEventListCommand(a),
		newEventEditCommand(a),
		newEventDeleteCommand(a),
	)
	return cmd
}

type eventFlags struct {
	notes   string
	summary string
	date    string
	tags    []string
	status  string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.notes, "notes", "", "What happened during the interaction")
	cmd.Flags().StringVar(&f.summary, "summary", "", "Summary used for drafting (defaults to the notes)")
	cmd.Flags().StringVar(&f.date, "date", "", "Interaction date, RFC3339 or YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag, repeatable")
	cmd.Flags().StringVar(&f.status, "status", "", "Follow-up status: pending or done")
}

func newEventAddCommand(a *app) *cobra.Command {
	var (
		flags     eventFlags
		summarize bool
	)
	cmd := &cobra.Command{
		Use:   "add <contact-id>",
		Short: "Log an interaction and update the contact's last reach-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			notes := strings.TrimSpace(flags.notes)
			if notes == "" {
				return fmt.Errorf("--notes is required")
			}

			asst, store, err := a.assistant()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			event := &models.Event{
				ContactID:      contactID,
				NotesRaw:       notes,
				NotesAISummary: strings.TrimSpace(flags.summary),
				Date:           time.Now().UTC(),
				FollowUpStatus: flags.status,
				Tags:           flags.tags,
			}
			if flags.date != "" {
				if event.Date, err = handlers.ParseDate(flags.date); err != nil {
					return err
				}
			}

			if summarize {
				summary, err := asst.SummarizeInteraction(ctx, notes)
				if err != nil {
					return fmt.Errorf("failed to summarize notes: %w", err)
				}
				event.NotesAISummary = summary.Event
			}
			if event.NotesAISummary == "" {
				event.NotesAISummary = notes
			}

			if err := store.AddEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to add interaction: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Interaction logged: %s (ID: %s)\n", event.Date.Format(time.DateOnly), event.ID)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Summarize --notes via the chat proxy")
	return cmd
}

func newEventListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <contact-id>",
		Short: "List a contact's interactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			events, err := store.ListEventsByContact(cmd.Context(), contactID)
			if err != nil {
				return fmt.Errorf("failed to list interactions: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No interactions found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTAGS\tSUMMARY")
			_, _ = fmt.Fprintln(w, "--\t----\t------\t----\t-------")
			for _, e := range events {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Date.Format(time.DateOnly), e.FollowUpStatus, strings.Join(e.Tags, ","), firstLine(e.NotesAISummary))
			}
			return w.Flush()
		},
	}
}

func newEventEditCommand(a *app) *cobra.Command {
	var flags eventFlags
	cmd := &cobra.Command{
		Use:   "edit <event-id>",
		Short: "Update an interaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("event", args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			event, err := store.GetEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get interaction: %w", err)
			}

			changed := cmd.Flags().Changed
			if changed("notes") {
				event.NotesRaw = strings.TrimSpace(flags.notes)
			}
			if changed("summary") {
				event.NotesAISummary = strings.TrimSpace(flags.summary)
			}
			if changed("date") {
				if event.Date, err = handlers.ParseDate(flags.date); err != nil {
					return err
				}
			}
			if changed("tag") {
				event.Tags = flags.tags
			}
			if changed("status") {
				event.FollowUpStatus = flags.status
			}

			if err := store.UpdateEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to update interaction: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Interaction updated: %s\n", event.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newEventDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an interaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("event", args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.DeleteEvent(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete interaction: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Interaction deleted: %s\n", id)
			return nil
		},
	}
}

// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for adding, listing, showing, editing and deleting contacts
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/nudge/db"
	"github.com/harperreed/nudge/handlers"
	"github.com/harperreed/nudge/models"
)

func newContactCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contact",
		Aliases: []string{"contacts"},
		Short:   "Manage contacts",
	}
	cmd.AddCommand(
		newContactAddCommand(a),
		newContactListCommand(a),
		newContactShowCommand(a),
		newContactEditCommand(a),
		newContactDeleteCommand(a),
	)
	return cmd
}

type contactFlags struct {
	name      string
	info      string
	status    string
	frequency string
	tone      string
}

func (f *contactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Contact name")
	cmd.Flags().StringVar(&f.info, "info", "", "What you know about the contact")
	cmd.Flags().StringVar(&f.status, "status", "", "warm, neutral or cold")
	cmd.Flags().StringVar(&f.frequency, "frequency", "", `Follow-up cadence: "1 Month", "3 Months", "6 Months" or "Never"`)
	cmd.Flags().StringVar(&f.tone, "tone", "", "Message tone: professional, casual or sincere")
}

func (f *contactFlags) validate() error {
	if f.frequency != "" && !models.ValidFrequency(f.frequency) {
		return fmt.Errorf("invalid --frequency %q", f.frequency)
	}
	if f.tone != "" && !models.Tone(f.tone).Valid() {
		return fmt.Errorf("invalid --tone %q", f.tone)
	}
	return nil
}

func newContactAddCommand(a *app) *cobra.Command {
	var (
		flags     contactFlags
		notes     string
		date      string
		summarize bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact, optionally with the interaction where you met",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(flags.name) == "" {
				return fmt.Errorf("--name is required")
			}
			if err := flags.validate(); err != nil {
				return err
			}
			if summarize && strings.TrimSpace(notes) == "" {
				return fmt.Errorf("--summarize needs --notes")
			}

			asst, store, err := a.assistant()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			contact := &models.Contact{
				Name:          flags.name,
				InfoRaw:       flags.info,
				InfoAISummary: flags.info,
				Status:        flags.status,
				Preferences: models.ContactPreferences{
					FollowUpFrequency: flags.frequency,
					MessageTone:       models.Tone(flags.tone),
				},
			}

			var event *models.Event
			if notes = strings.TrimSpace(notes); notes != "" {
				event = &models.Event{NotesRaw: notes, NotesAISummary: notes, Date: time.Now().UTC()}
				if date != "" {
					if event.Date, err = handlers.ParseDate(date); err != nil {
						return err
					}
				}
			}

			if summarize {
				summary, err := asst.SummarizeInteraction(ctx, notes)
				if err != nil {
					return fmt.Errorf("failed to summarize notes: %w", err)
				}
				if contact.InfoRaw == "" {
					contact.InfoRaw = notes
				}
				contact.InfoAISummary = summary.Contact
				event.NotesAISummary = summary.Event
			}

			if err := store.CreateContact(ctx, contact); err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)

			if event != nil {
				event.ContactID = contact.ID
				if err := store.AddEvent(ctx, event); err != nil {
					return fmt.Errorf("failed to add interaction: %w", err)
				}
				fmt.Fprintf(out, "✓ Interaction logged: %s (ID: %s)\n", event.Date.Format(time.DateOnly), event.ID)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&notes, "notes", "", "Notes from the interaction where you met")
	cmd.Flags().StringVar(&date, "date", "", "Interaction date, RFC3339 or YYYY-MM-DD (default now)")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Summarize --notes into contact and interaction summaries via the chat proxy")
	return cmd
}

func newContactListCommand(a *app) *cobra.Command {
	var q db.ContactQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			contacts, err := store.FindContacts(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("failed to list contacts: %w", err)
			}
			if len(contacts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contacts found")
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCADENCE\tLAST REACH-OUT\tREACH-OUT")
			_, _ = fmt.Fprintln(w, "--\t----\t------\t-------\t--------------\t---------")
			for _, c := range contacts {
				last := "-"
				if c.LastReachOutDate != nil {
					last = models.FormatRelativeTime(*c.LastReachOutDate, now)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ID, c.Name, c.Status, c.ResolvedPreferences().FollowUpFrequency, last, c.ReachOutLabel(now))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&q.Name, "query", "", "Case-insensitive name search")
	cmd.Flags().StringVar(&q.Filter, "filter", db.FilterAll, "all, warm, cold or follow-up")
	cmd.Flags().IntVar(&q.Limit, "limit", 50, "Maximum number of contacts")
	return cmd
}

func newContactShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <contact-id>",
		Short: "Show a contact and their interactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			contact, err := store.GetContact(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get contact: %w", err)
			}
			events, err := store.ListEventsByContact(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to list interactions: %w", err)
			}

			now := time.Now()
			prefs := contact.ResolvedPreferences()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", contact.Name, contact.ID)
			fmt.Fprintf(out, "Status:     %s\n", contact.Status)
			fmt.Fprintf(out, "Cadence:    %s\n", prefs.FollowUpFrequency)
			fmt.Fprintf(out, "Tone:       %s\n", prefs.MessageTone)
			if contact.LastReachOutDate != nil {
				fmt.Fprintf(out, "Last seen:  %s (%s)\n", models.FormatRelativeTime(*contact.LastReachOutDate, now), contact.ReachOutLabel(now))
			}
			if next := contact.NextFollowUp(); next != nil {
				fmt.Fprintf(out, "Follow up:  %s\n", next.Format(time.DateOnly))
			}
			if contact.InfoAISummary != "" {
				fmt.Fprintf(out, "\n%s\n", contact.InfoAISummary)
			}

			fmt.Fprintf(out, "\nInteractions (%d):\n", len(events))
			for _, e := range events {
				fmt.Fprintf(out, "  %s  %s  [%s]  %s\n", e.Date.Format(time.DateOnly), e.ID, e.FollowUpStatus, firstLine(e.NotesAISummary))
			}
			return nil
		},
	}
}

func newContactEditCommand(a *app) *cobra.Command {
	var flags contactFlags
	cmd := &cobra.Command{
		Use:   "edit <contact-id>",
		Short: "Update a contact's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			if err := flags.validate(); err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			contact, err := store.GetContact(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get contact: %w", err)
			}

			changed := cmd.Flags().Changed
			if changed("name") {
				contact.Name = flags.name
			}
			if changed("info") {
				contact.InfoRaw = flags.info
				contact.InfoAISummary = flags.info
			}
			if changed("status") {
				contact.Status = flags.status
			}
			if changed("frequency") {
				contact.Preferences.FollowUpFrequency = flags.frequency
			}
			if changed("tone") {
				contact.Preferences.MessageTone = models.Tone(flags.tone)
			}

			if err := store.UpdateContact(ctx, contact); err != nil {
				return fmt.Errorf("failed to update contact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact updated: %s\n", contact.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newContactDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <contact-id>",
		Short: "Delete a contact and all of their interactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.DeleteContact(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact deleted: %s\n", id)
			return nil
		},
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ABOUTME: Root cobra command and shared command state
// ABOUTME: Loads configuration once, opens the store lazily and builds the zap logger
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/harperreed/nudge/assistant"
	"github.com/harperreed/nudge/chat"
	"github.com/harperreed/nudge/config"
	"github.com/harperreed/nudge/db"
	"github.com/harperreed/nudge/tui"
)

// app carries what every subcommand needs. Fields are filled by
// PersistentPreRunE, so RunE functions may rely on cfg and logger.
type app struct {
	dbPath string

	cfg    *config.Config
	logger *zap.Logger
	store  *db.Store

	isTerminal func() bool
	runTUI     func(ctx context.Context, m tea.Model) error
}

func newApp() *app {
	return &app{
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		runTUI: func(ctx context.Context, m tea.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// Execute runs the nudge command line.
func Execute(version string) error {
	a := newApp()
	defer a.close()
	return newRootCommand(a, version).Execute()
}

func newRootCommand(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "nudge",
		Short: "Track contacts and interactions, and draft follow-up messages",
		Long: `nudge keeps a local record of the people you meet and what you talked about,
and drafts follow-up messages through the nudge chat proxy.

Run without arguments in a terminal to browse contacts interactively.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.init() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.isTerminal() {
				return cmd.Help()
			}
			return a.browse(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db-path", "", "Database path (default: $XDG_DATA_HOME/nudge/nudge.db)")

	root.AddCommand(
		newServeCommand(a),
		newContactCommand(a),
		newEventCommand(a),
		newProfileCommand(a),
		newContextCommand(a),
		newDraftCommand(a),
		newSummarizeCommand(a),
		newMCPCommand(a, version),
	)
	return root
}

func (a *app) init() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func (a *app) openStore() (*db.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	database, err := db.OpenDatabase(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.store = db.NewStore(database)
	return a.store, nil
}

func (a *app) assistant() (*assistant.Assistant, *db.Store, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	client := chat.NewClient(a.cfg.APIURL, chat.WithTimeout(a.cfg.ChatTimeout))
	return assistant.New(store, client, a.logger), store, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) browse(ctx context.Context) error {
	asst, store, err := a.assistant()
	if err != nil {
		return err
	}
	return a.runTUI(ctx, tui.NewModel(ctx, store, asst))
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid %s ID %q: %w", kind, s, err)
	}
	return id, nil
}

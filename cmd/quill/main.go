package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/cmd"
	"github.com/gravitrone/quill/internal/config"
	"github.com/gravitrone/quill/internal/logging"
	"github.com/gravitrone/quill/internal/ui"
	"github.com/gravitrone/quill/internal/workspace"
)

func main() {
	root := &cobra.Command{
		Use:   "quill",
		Short: "Quill - encrypted notes in the terminal",
		Long: heredoc.Doc(`
			Quill edits notes stored on a notes server. Run without arguments
			to open the workspace: a folder tree, tabs and an editor that
			saves as you type. The subcommands cover scripting and account
			management.
		`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.RegisterCmd())
	root.AddCommand(cmd.LogoutCmd())
	root.AddCommand(cmd.NotesCmd())
	root.AddCommand(cmd.FoldersCmd())
	root.AddCommand(cmd.FilesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
			fmt.Println("not logged in. run 'quill login' first.")
			return err
		}
		cfg = &config.Config{}
	}

	log, closer, err := logging.Open(config.LogPath(), cfg.Level())
	if err != nil {
		return err
	}
	defer closer.Close()

	client := api.NewClient(cfg.APIBaseURL(), cfg.Token, cfg.HTTPTimeout())
	ws := workspace.New(client, workspace.Options{
		Debounce:     cfg.DebounceDelay(),
		SavedDisplay: cfg.SavedDisplayDelay(),
		Logger:       log,
	})
	defer ws.Close()

	app := ui.NewApp(ws, cfg, log).WithLogout(func(ctx context.Context) error {
		return cmd.Logout(ctx, ws, client, cfg, log)
	})

	log.WithField("base_url", cfg.APIBaseURL()).Info("starting tui")
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/api"
	"github.com/gravitrone/howdju/cli/internal/cmd"
	"github.com/gravitrone/howdju/cli/internal/config"
	"github.com/gravitrone/howdju/cli/internal/logging"
	"github.com/gravitrone/howdju/cli/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func newRootCmd() *cobra.Command {
	var opts ui.Options
	root := &cobra.Command{
		Use:   "howdju [proposition-id]",
		Short: "howdju - arguments, justified",
		Long:  "howdju CLI: browse justification trees, propose, justify and counter from the terminal.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.PropositionID = args[0]
			}
			return runTUI(opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().BoolVar(&opts.Edit, "edit", false, "open the proposition in the editor")
	root.Flags().BoolVar(&opts.Justify, "justify", false, "start a new justification of the proposition")
	root.Flags().StringVar(&opts.Counter, "counter", "", "start a counter-justification of this justification id")

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.ValidateCmd())
	root.AddCommand(cmd.NormalizeCmd())
	root.AddCommand(cmd.ShowCmd())
	root.AddCommand(cmd.GetCmd())
	root.AddCommand(cmd.TagCmd())
	return root
}

func runTUI(opts ui.Options) error {
	if (opts.Edit || opts.Justify || opts.Counter != "") && opts.PropositionID == "" {
		return fmt.Errorf("--edit, --justify and --counter need a proposition id")
	}
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return fmt.Errorf("the TUI needs a terminal; try 'howdju show <proposition-id>'")
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, File: config.LogPath()})
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting tui", slog.String("proposition", opts.PropositionID))

	client := api.NewClient(cfg.BaseURL(), cfg.AuthToken)
	app := ui.NewApp(client, cfg, logger, opts)

	p := tea.NewProgram(app, tea.WithAltScreen())
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

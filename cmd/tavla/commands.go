package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
)

// isInteractive reports whether stdin is a terminal; tests replace it.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// confirmPrompt asks a yes/no question; tests replace it.
var confirmPrompt = func(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.openBoardRuntime(cmd.Context(), "serve")
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := rt.cfg.Server
			if httpBind != "" {
				srv.HTTPBind = httpBind
			}
			if apiEndpoint != "" {
				srv.APIEndpoint = apiEndpoint
			}
			if mcpEndpoint != "" {
				srv.MCPEndpoint = mcpEndpoint
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := rt.serve(ctx, srv); err != nil {
				rt.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "listen address (overrides server.http_bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api", "", "REST API base path (overrides server.api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp", "", "MCP endpoint path (overrides server.mcp_endpoint)")
	return cmd
}

func newPathsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := opts.resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", resolved.configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", resolved.paths.DataDir)
			_, _ = fmt.Fprintf(out, "backend: %s\n", resolved.cfg.Storage.Backend)
			_, _ = fmt.Fprintf(out, "db: %s\n", resolved.cfg.Storage.Path)
			_, _ = fmt.Fprintf(out, "boards_dir: %s\n", resolved.cfg.Storage.Dir)
			return nil
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := opts.resolve()
			if err != nil {
				return err
			}
			encoded, err := resolved.cfg.TOML()
			if err != nil {
				return fmt.Errorf("encode config toml: %w", err)
			}
			if !write {
				_, err = cmd.OutOrStdout().Write(encoded)
				return err
			}
			if _, statErr := os.Stat(resolved.configPath); statErr == nil {
				return fmt.Errorf("config %q already exists", resolved.configPath)
			}
			if err := config.EnsureConfigDir(resolved.configPath); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(resolved.configPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", resolved.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the effective config to the config path if none exists")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board snapshot as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.openBoardRuntime(cmd.Context(), "export")
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := runExport(rt.store, outPath, format, cmd.OutOrStdout()); err != nil {
				rt.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "export", "out", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --out extension, else json)")
	return cmd
}

// runExport encodes the current board and writes it to outPath or stdout.
func runExport(store *app.Store, outPath, format string, stdout io.Writer) error {
	if format == "" {
		format = formatFromPath(outPath)
	}
	encoded, err := encodeSnapshot(app.SnapshotFromBoard(store.Snapshot()), format)
	if err != nil {
		return err
	}
	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var inPath, format string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a JSON or YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			rt, err := opts.openBoardRuntime(cmd.Context(), "import")
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := runImport(cmd.Context(), rt.store, inPath, format); err != nil {
				rt.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "import", "in", inPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot file")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --in extension)")
	return cmd
}

// runImport validates the snapshot in inPath and swaps it in as the board.
func runImport(ctx context.Context, store *app.Store, inPath, format string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	if format == "" {
		format = formatFromPath(inPath)
	}
	var snap app.Snapshot
	switch format {
	case "json":
		err = json.Unmarshal(content, &snap)
	case "yaml":
		err = yaml.Unmarshal(content, &snap)
	default:
		return fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return fmt.Errorf("decode snapshot %s: %w", format, err)
	}
	board, err := snap.Board()
	if err != nil {
		return fmt.Errorf("validate snapshot: %w", err)
	}
	return store.ReplaceBoard(ctx, board)
}

func encodeSnapshot(snap app.Snapshot, format string) ([]byte, error) {
	switch format {
	case "json":
		encoded, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode snapshot json: %w", err)
		}
		return append(encoded, '\n'), nil
	case "yaml":
		encoded, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot yaml: %w", err)
		}
		return encoded, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// formatFromPath picks yaml for .yaml/.yml files and json otherwise.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board as tables, one per column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.openBoardRuntime(cmd.Context(), "show")
			if err != nil {
				return err
			}
			defer rt.Close()

			board := rt.store.Snapshot()
			if all {
				board.SearchTerm = ""
				board.Filter = domain.FilterAll
			}
			cfg := rt.store.Config()
			view := app.Project(board, cfg.Ordering, cfg.SuggestionLimit)
			_, err = io.WriteString(cmd.OutOrStdout(), renderBoardTables(view))
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "ignore the saved search term and filter")
	return cmd
}

// renderBoardTables renders each column's visible tasks as a rounded table.
func renderBoardTables(view app.BoardView) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	if view.SearchTerm != "" || view.Filter != domain.FilterAll {
		_, _ = fmt.Fprintln(&b, muted.Render(fmt.Sprintf("search: %q  filter: %s", view.SearchTerm, view.Filter)))
	}
	for _, col := range view.Columns {
		_, _ = fmt.Fprintln(&b, heading.Render(fmt.Sprintf("%s (%d/%d)", col.Title, len(col.Visible), col.Total)))
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
			Headers("#", "Task", "Done", "ID").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
		for idx, task := range col.Visible {
			done := ""
			if task.Completed {
				done = "x"
			}
			t.Row(fmt.Sprintf("%d", idx+1), task.Title, done, task.ID)
		}
		_, _ = fmt.Fprintln(&b, t.Render())
	}
	if view.Selection.Count > 0 {
		_, _ = fmt.Fprintln(&b, muted.Render(fmt.Sprintf("%d selected", view.Selection.Count)))
	}
	return b.String()
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the board with the seed columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				if !isInteractive() {
					return errors.New("reset discards every task; pass --yes when stdin is not a terminal")
				}
				ok, err := confirmPrompt("Discard every task and restore the seed columns?")
				if err != nil {
					return fmt.Errorf("confirm reset: %w", err)
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reset cancelled")
					return nil
				}
			}
			rt, err := opts.openBoardRuntime(cmd.Context(), "reset")
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.store.Reset(cmd.Context()); err != nil {
				rt.logger.Error("command flow failed", "command", "reset", "err", err)
				return fmt.Errorf("run reset command: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "board reset to %d columns\n", len(rt.store.Snapshot().Columns))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newLogCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recent persisted board changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.openBoardRuntime(cmd.Context(), "log")
			if err != nil {
				return err
			}
			defer rt.Close()
			ledger, ok := rt.repo.(app.SnapshotLedger)
			if !ok {
				return fmt.Errorf("storage backend %q keeps no change log", rt.cfg.Storage.Backend)
			}
			events, err := ledger.ListSnapshotEvents(cmd.Context(), rt.cfg.Storage.Key, limit)
			if err != nil {
				return fmt.Errorf("list snapshot events: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				_, _ = fmt.Fprintln(out, "no changes recorded")
				return nil
			}
			for _, ev := range events {
				_, _ = fmt.Fprintln(out, formatEvent(ev))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of events")
	return cmd
}

// formatEvent renders one ledger row.
func formatEvent(ev app.SnapshotEvent) string {
	parts := []string{
		fmt.Sprintf("#%d", ev.Revision),
		ev.CreatedAt.Local().Format(time.DateTime),
		string(ev.Operation),
	}
	if ev.ColumnID != "" {
		parts = append(parts, "column="+ev.ColumnID)
	}
	if len(ev.TaskIDs) > 0 {
		parts = append(parts, "tasks="+strings.Join(ev.TaskIDs, ","))
	}
	return strings.Join(parts, "  ")
}

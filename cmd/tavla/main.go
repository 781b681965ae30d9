package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/hylla/tavla/internal/adapters/server"
	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
)

// version is stamped by the release build.
var version = "dev"

// program is the part of a bubbletea program run needs.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveRunner runs the HTTP and MCP server; tests replace it.
var serveRunner = server.Run

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it through fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetIn(os.Stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// newRootCmd wires global flags and every subcommand.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{
		appName: platform.DefaultAppName,
		devMode: version == "dev",
		stdout:  stdout,
		stderr:  stderr,
	}
	if envDev, ok := parseBoolEnv("TAVLA_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	var serve bool
	root := &cobra.Command{
		Use:           "tavla",
		Short:         "Kanban board for the terminal",
		Long:          "tavla keeps one Kanban board and opens it in the terminal. Subcommands expose it over HTTP and MCP and move snapshots in and out.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, serve)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (env TAVLA_CONFIG)")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database (env TAVLA_DB_PATH)")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")
	root.Flags().BoolVar(&serve, "serve", false, "also serve the board over HTTP and MCP while the TUI runs")

	root.AddCommand(
		newServeCmd(opts),
		newPathsCmd(opts),
		newConfigCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newShowCmd(opts),
		newResetCmd(opts),
		newLogCmd(opts),
	)
	return root
}

// runTUI opens the board and hands the terminal to bubbletea.
func runTUI(ctx context.Context, opts *globalOptions, serve bool) error {
	rt, err := opts.openBoardRuntime(ctx, "tui")
	if err != nil {
		return err
	}
	defer rt.Close()

	modelOpts := []tui.Option{
		tui.WithTitle(opts.appName),
		tui.WithConfirmConfig(tui.ConfirmConfig{
			DeleteTask:   rt.cfg.Confirm.DeleteTask,
			DeleteColumn: rt.cfg.Confirm.DeleteColumn,
			BulkDelete:   rt.cfg.Confirm.BulkDelete,
		}),
	}

	var serveDone chan error
	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	if serve {
		changes := make(chan struct{}, 1)
		unsubscribe := rt.store.Subscribe(func(context.Context, app.Change, domain.Board) error {
			select {
			case changes <- struct{}{}:
			default:
			}
			return nil
		})
		defer unsubscribe()
		modelOpts = append(modelOpts, tui.WithChangeFeed(changes))

		serveDone = make(chan error, 1)
		go func() {
			serveDone <- rt.serve(serveCtx, rt.cfg.Server)
		}()
	}

	rt.logger.Info("starting tui program loop", "serve", serve)
	_, runErr := programFactory(tui.NewModel(rt.store, modelOpts...)).Run()
	if serveDone != nil {
		stopServe()
		if serveErr := <-serveDone; serveErr != nil {
			rt.logger.Error("background server stopped with error", "err", serveErr)
		}
	}
	if runErr != nil {
		rt.logger.Error("tui program terminated with error", "err", runErr)
		return fmt.Errorf("run tui program: %w", runErr)
	}
	rt.logger.Info("command flow complete", "command", "tui")
	return nil
}

// serve exposes the store over REST and MCP until ctx is cancelled.
func (rt *boardRuntime) serve(ctx context.Context, cfg config.ServerConfig) error {
	rt.logger.Info("serving board", "http", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
	return serveRunner(ctx, server.Config{
		HTTPBind:      cfg.HTTPBind,
		APIEndpoint:   cfg.APIEndpoint,
		MCPEndpoint:   cfg.MCPEndpoint,
		ServerName:    platform.DefaultAppName,
		ServerVersion: version,
	}, server.Dependencies{
		Board:  common.NewBoardAdapter(rt.store, nil),
		Logger: rt.logger,
	})
}

// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package cli implements the sqlcraft command line, which renders statement
// description files to SQL.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	ConfigFile string
}

// loggerKey is the context key of the logger.
type loggerKey struct{}

// WithLogger returns a context carrying logger. Commands run with that
// context log to it instead of creating their own.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// loggerFrom returns the logger of ctx, or a text logger on w at the
// configured level.
func loggerFrom(ctx context.Context, w io.Writer, cfg *Config) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	level, _ := parseLevel(cfg.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
	return level, nil
}

// NewRootCmd returns the sqlcraft command.
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}
	rootCmd := &cobra.Command{
		Use:   "sqlcraft",
		Short: "Render SQL statements from description files",
		Long: `sqlcraft builds parameterized PostgreSQL statements from YAML or JSON
descriptions of the table, columns, filters, ordering and pagination they
work on.

Settings are read from ./sqlcraft.yaml (or --config), then from SQLCRAFT_*
environment variables, then from the command line flags.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./"+DefaultConfigFile+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewRenderCmd(opts))
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

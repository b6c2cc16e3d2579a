// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/canonical/sqlcraft"
	"github.com/canonical/sqlcraft/internal/describe"
)

// NewRenderCmd returns the render command.
func NewRenderCmd(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render description files to SQL",
		Long: `Render builds the statement of each description in the given files and
prints it. A file may hold several YAML documents separated by "---".`,
		Example: `  sqlcraft render people.yaml
  sqlcraft render --inline --format table queries/*.yaml
  sqlcraft render --watch people.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(root.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			r := newRenderer(cfg, cmd.OutOrStdout(), loggerFrom(cmd.Context(), cmd.ErrOrStderr(), cfg))
			if err := r.run(cmd.Context(), args); err != nil {
				return err
			}
			if cfg.Watch {
				return r.watch(cmd.Context(), args)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "", "output format (text|json|table)")
	cmd.Flags().Bool("inline", false, "write arguments into the SQL as literals")
	cmd.Flags().Bool("quote-all", false, "double quote every identifier")
	cmd.Flags().BoolP("watch", "w", false, "render again when a file changes")
	cmd.Flags().Duration("debounce", 0, "delay before rendering changed files")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatText, FormatJSON, FormatTable}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// result is one rendered description.
type result struct {
	File string
	// Document is the position of the description in its file, from 1.
	Document int
	// Statement is nil when the description has nothing to do.
	Statement *sqlcraft.Statement
}

type renderer struct {
	cfg     *Config
	builder *sqlcraft.Builder
	out     io.Writer
	logger  *slog.Logger
}

func newRenderer(cfg *Config, out io.Writer, logger *slog.Logger) *renderer {
	builder := &sqlcraft.Builder{}
	if cfg.QuoteAll {
		builder.Escaper = sqlcraft.QuoteAll
	}
	return &renderer{cfg: cfg, builder: builder, out: out, logger: logger}
}

// run renders files and writes the statements.
func (r *renderer) run(ctx context.Context, files []string) error {
	results, err := r.render(ctx, files)
	if err != nil {
		return err
	}
	return writeResults(r.out, r.cfg, results)
}

// render renders files concurrently. The results keep the order of files.
func (r *renderer) render(ctx context.Context, files []string) ([]result, error) {
	perFile := make([][]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results, err := r.renderFile(file)
			if err != nil {
				return fmt.Errorf("cannot render %s: %w", file, err)
			}
			perFile[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []result
	for _, results := range perFile {
		all = append(all, results...)
	}
	return all, nil
}

func (r *renderer) renderFile(file string) ([]result, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	descriptions, err := describe.DecodeAll(f)
	if err != nil {
		return nil, err
	}

	results := make([]result, len(descriptions))
	for i, opts := range descriptions {
		stmt, err := r.builder.CreateQuery(opts)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		if stmt == nil {
			r.logger.Debug("nothing to do", "file", file, "document", i+1, "kind", opts.Kind)
		} else {
			r.logger.Debug("rendered statement", "file", file, "document", i+1, "kind", opts.Kind, "args", len(stmt.Args()))
		}
		results[i] = result{File: file, Document: i + 1, Statement: stmt}
	}
	return results, nil
}

// watch renders files again each time one of them changes, until ctx is
// done. Render errors are logged and do not stop the watch.
func (r *renderer) watch(ctx context.Context, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot watch files: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Directories are watched rather than files, as editors often replace
	// a file instead of writing it.
	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		targets[filepath.Clean(file)] = true
		dir := filepath.Dir(file)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("cannot watch %s: %w", dir, err)
		}
	}
	r.logger.Info("watching for changes", "files", len(files))

	var debounce *time.Timer
	changed := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(r.cfg.Debounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			if err := r.run(ctx, files); err != nil {
				r.logger.Warn("cannot render", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", "error", err)
		}
	}
}

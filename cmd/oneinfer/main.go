package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/compiler"
	"github.com/vito/oneinfer/pkg/diag"
	"github.com/vito/oneinfer/pkg/ioctx"
	"github.com/vito/oneinfer/pkg/unitjson"
)

// Config holds the application configuration
type Config struct {
	Debug      bool
	ConfigFile string
	NoColor    bool
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "oneinfer",
		Short: "Type inference and instanceof narrowing for resolved units",
		Long: `oneinfer runs the semantic passes of the compiler over pre-resolved
compilation units stored as JSON: bidirectional type inference, then
flow-sensitive instanceof narrowing.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfg.ConfigFile, "config", "c", "", "Path to oneinfer.toml, relative to the working directory or the first input (searched upward from the first input if not specified)")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable colored diagnostics")

	rootCmd.AddCommand(checkCmd(&cfg), narrowCmd(&cfg))

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func checkCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] path...",
		Short: "Infer types and report diagnostics",
		Example: `  # Check a single unit
  oneinfer check unit.json

  # Check every unit in a directory
  oneinfer check ./units`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg, args, false)
		},
	}
}

func narrowCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "narrow [flags] path...",
		Short: "Print units after inference and narrowing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg, args, true)
		},
	}
}

func setupLogging(ctx context.Context, cfg Config) context.Context {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(ioctx.StderrFromContext(ctx), &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return ioctx.LoggerToContext(ctx, logger)
}

func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		} else {
			files = append(files, path)
		}
	}
	return files, nil
}

func run(ctx context.Context, cfg Config, paths []string, printUnits bool) error {
	ctx = setupLogging(ctx, cfg)
	stdout := ioctx.StdoutFromContext(ctx)
	stderr := ioctx.StderrFromContext(ctx)

	config, err := compiler.ResolveConfig(cfg.ConfigFile, paths[0])
	if err != nil {
		return err
	}
	slog.Debug("using config", "path", config.Path, "config", pretty.Sprint(config))

	files, err := collectFiles(paths)
	if err != nil {
		return err
	}

	var units []*ast.SourceFile
	for _, path := range files {
		unit, err := unitjson.LoadFile(path)
		if err != nil {
			return err
		}
		units = append(units, unit)
	}

	results, err := compiler.CompileAll(ctx, units, config)

	for _, res := range results {
		if rerr := diag.Render(stderr, res.Diagnostics.Diagnostics(), !cfg.NoColor); rerr != nil {
			return rerr
		}
		if printUnits && !res.Failed() {
			fmt.Fprintf(stdout, "// %s\n%s\n", res.File.Path, ast.Format(res.File))
		}
		slog.Debug("unit done", "summary", res.Summary())
	}

	return err
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/smith-xyz/golang-component-map/pkg/component"
	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/graph"
	"github.com/smith-xyz/golang-component-map/pkg/loader"
	"github.com/smith-xyz/golang-component-map/pkg/manifest"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/output"
	"github.com/smith-xyz/golang-component-map/pkg/server"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
	"github.com/smith-xyz/golang-component-map/pkg/version"
	"github.com/smith-xyz/golang-component-map/pkg/watch"
)

// errIssuesFound makes the process exit non-zero without printing an error.
var errIssuesFound = errors.New("issues found")

type globalOptions struct {
	verbose      bool
	configPath   string
	manifestPath string
	logFormat    string
}

// session is everything a command needs to build and present one graph.
type session struct {
	logger     *slog.Logger
	cfg        *config.Config
	store      *graph.Store
	modulePath string
	// watchRoot and watchExtensions describe the files a refresh depends on.
	watchRoot       string
	watchExtensions []string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "compmap",
		Short: "Map the components of a codebase and their dependencies",
		Long: `compmap discovers the components declared in a codebase, the dependencies
between them, and architectural problems such as cycles and mutual dependencies.

Components are declared with //compmap: directives on Go types, or listed in a
YAML manifest (--manifest) for codebases in other languages.

Examples:
  compmap tree ./...
  compmap tree --reverse --tag Gameplay
  compmap problems --fail-on-issues
  compmap export --format mermaid -o components.mmd
  compmap serve --addr :8090`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	flags.StringVar(&opts.configPath, "config", "", "Path to a compmap.toml configuration file")
	flags.StringVar(&opts.manifestPath, "manifest", "", "Read components from a YAML manifest instead of Go packages")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newTreeCmd(opts),
		newProblemsCmd(opts),
		newExportCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// open loads the configuration and wires the component source, builder and store.
func (o *globalOptions) open(cmd *cobra.Command, patterns []string) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	logger := utils.NewLogger(cmd.ErrOrStderr(), o.verbose, cfg.Log.Format)

	s := &session{logger: logger, cfg: cfg}

	var source component.Source
	if o.manifestPath != "" {
		src := manifest.NewSource(logger, o.manifestPath)
		logger.Debug("Using manifest source", "path", src.Path())
		source = src
		s.watchRoot = filepath.Dir(o.manifestPath)
		s.watchExtensions = []string{filepath.Base(o.manifestPath)}
		s.modulePath = filepath.Base(s.watchRoot)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		mod, err := utils.FindModule(wd)
		if err != nil {
			return nil, fmt.Errorf("failed to locate Go module: %w", err)
		}
		src := loader.NewSource(logger, wd, cfg.Loader, patterns...)
		logger.Debug("Using Go package source", "dir", src.Dir(), "patterns", src.Patterns(), "module", mod.Path)
		source = src
		s.modulePath = mod.Path
		s.watchRoot = mod.Dir
		s.watchExtensions = []string{".go", "go.mod"}
	}

	builder := graph.NewBuilder(logger, config.NewContextAwareConfig(cfg, s.modulePath), source)
	s.store = graph.NewStore(builder)
	return s, nil
}

// viewFlags are shared by the commands that render a view of the graph.
type viewFlags struct {
	reverse bool
	tag     string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&v.reverse, "reverse", false, "Show consumers instead of dependencies")
	cmd.Flags().StringVar(&v.tag, "tag", "", "Only start from nodes with one of these tags (e.g. Manager|Gameplay)")
}

// resolve applies the flags over the configured view defaults.
func (v *viewFlags) resolve(cmd *cobra.Command, cfg *config.Config) (models.Tag, bool, error) {
	filter := cfg.TagFilter()
	if cmd.Flags().Changed("tag") {
		tag, err := models.ParseTag(v.tag)
		if err != nil {
			return models.TagNone, false, fmt.Errorf("invalid --tag: %w", err)
		}
		filter = tag
	}
	reverse := cfg.View.Reverse
	if cmd.Flags().Changed("reverse") {
		reverse = v.reverse
	}
	return filter, reverse, nil
}

func newTreeCmd(opts *globalOptions) *cobra.Command {
	var (
		view  viewFlags
		color string
	)
	cmd := &cobra.Command{
		Use:   "tree [patterns...]",
		Short: "Print the component graph as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}
			filter, reverse, err := view.resolve(cmd, s.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("color") {
				color = s.cfg.View.Color
			}

			g, err := s.store.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return output.NewTreeRenderer(out, resolveColor(color, out)).Render(out, g, filter, reverse)
		},
	}
	view.register(cmd)
	cmd.Flags().StringVar(&color, "color", output.ColorAuto, "Colorize output (auto, always, never)")
	return cmd
}

func newProblemsCmd(opts *globalOptions) *cobra.Command {
	var failOnIssues bool
	cmd := &cobra.Command{
		Use:   "problems [patterns...]",
		Short: "List cycles and mutual dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}
			g, err := s.store.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderer := output.NewTreeRenderer(out, resolveColor(s.cfg.View.Color, out))
			if err := renderer.RenderProblems(out, g.Issues); err != nil {
				return err
			}
			if failOnIssues && len(g.Issues) > 0 {
				return errIssuesFound
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "Exit with status 1 when issues are found")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		view     viewFlags
		format   string
		title    string
		outFile  string
		autoName bool
	)
	cmd := &cobra.Command{
		Use:   "export [patterns...]",
		Short: "Export the component graph as markdown, JSON, YAML or mermaid",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}
			filter, reverse, err := view.resolve(cmd, s.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = s.cfg.Export.Format
			}
			if !cmd.Flags().Changed("title") {
				title = s.cfg.Export.Title
			}

			exporter, err := output.NewExporter(format)
			if err != nil {
				return err
			}
			g, err := s.store.Current(cmd.Context())
			if err != nil {
				return err
			}

			if autoName && outFile == "" {
				outFile = utils.OutputFilename(s.modulePath, format)
			}
			exportOpts := output.Options{Title: title, Filter: filter, Reverse: reverse}
			if outFile == "" {
				return exporter.Export(cmd.OutOrStdout(), g, exportOpts)
			}
			return writeExport(cmd.ErrOrStderr(), exporter, g, exportOpts, outFile)
		},
	}
	view.register(cmd)
	cmd.Flags().StringVar(&format, "format", output.FormatMarkdown, "Export format (markdown, json, yaml, mermaid)")
	cmd.Flags().StringVar(&title, "title", output.DefaultTitle, "Markdown document title")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&autoName, "auto-name", false, "Write to <module>.compmap.<ext> instead of stdout")
	return cmd
}

// writeExport writes an export to filename
func writeExport(status io.Writer, exporter output.Exporter, g *models.Graph, opts output.Options, filename string) error {
	file, err := utils.SafeCreateFile(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", filename, err)
	}
	defer file.Close()

	if err := exporter.Export(file, g, opts); err != nil {
		return fmt.Errorf("failed to write export to file %s: %w", filename, err)
	}

	fmt.Fprintf(status, "Component map successfully written to: %s\n", filename)
	return nil
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		view viewFlags
		addr string
	)
	cmd := &cobra.Command{
		Use:   "serve [patterns...]",
		Short: "Serve the component graph over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}
			filter, reverse, err := view.resolve(cmd, s.cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				s.cfg.Server.ListenAddr = addr
			}
			if !opts.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(s.logger, s.store, s.cfg.Server, server.View{Filter: filter, Reverse: reverse})
			// Serve even when the first build fails; /api/v1/refresh can recover.
			if _, err := s.store.Current(ctx); err != nil {
				s.logger.Warn("Initial graph build failed", "error", err)
			}
			return srv.Run(ctx)
		},
	}
	view.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Rebuild the graph on file changes and reprint problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			renderer := output.NewTreeRenderer(out, resolveColor(s.cfg.View.Color, out))
			report := func(g *models.Graph, err error) {
				if err != nil {
					fmt.Fprintf(out, "[%s] refresh failed: %v\n", time.Now().Format(time.TimeOnly), err)
					return
				}
				fmt.Fprintf(out, "[%s] %d components, %d dependencies\n", time.Now().Format(time.TimeOnly), len(g.Nodes), g.EdgeCount())
				if err := renderer.RenderProblems(out, g.Issues); err != nil {
					s.logger.Warn("Failed to print problems", "error", err)
				}
			}

			report(s.store.Refresh(ctx))

			w, err := watch.NewWatcher(s.logger, s.watchRoot, s.store, s.cfg.Watch, s.watchExtensions...)
			if err != nil {
				return err
			}
			w.OnRefresh(report)
			s.logger.Info("Watching for changes", "root", s.watchRoot)
			return w.Run(ctx)
		},
	}
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionWithCommit())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersionString())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version")
	return cmd
}

// resolveColor turns auto into always or never depending on whether w is a terminal.
func resolveColor(mode string, w io.Writer) string {
	if mode != output.ColorAuto && mode != "" {
		return mode
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return output.ColorAlways
	}
	return output.ColorNever
}

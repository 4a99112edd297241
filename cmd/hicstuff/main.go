// Command hicstuff processes Hi-C data: genome digestion, iterative read alignment,
// library filtering and contact map display.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/nmendiboure/hicstuff/internal/config"
	"github.com/nmendiboure/hicstuff/internal/console"
	"github.com/nmendiboure/hicstuff/internal/logging"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/drawer"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/measure"
	"github.com/nmendiboure/hicstuff/pkg/pipeline/model"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

type app struct {
	ctx     context.Context
	cfg     *config.Config
	logger  *slog.Logger
	console *console.Console
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

type command struct {
	summary string
	run     func(a *app, args []string) error
}

var commands = map[string]command{
	"digest":    {summary: "digest a genome into restriction fragments", run: runDigest},
	"iteralign": {summary: "align reads iteratively on a genome", run: runIteralign},
	"filter":    {summary: "filter spurious 3C events out of a library", run: runFilter},
	"view":      {summary: "draw a contact map as a heatmap", run: runView},
	"scaffolds": {summary: "print the scaffold size distribution of a genome", run: runScaffolds},
	"reorder":   {summary: "sort a genome by decreasing scaffold length", run: runReorder},
	"version":   {summary: "print the version", run: runVersion},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hicstuff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }

	showVersion := fs.Bool("version", false, "print the version and exit")
	configPath := fs.String("config", "", "configuration file (default: .hicstuff.yaml or .hicstuff.toml)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	noColor := fs.Bool("no-color", false, "disable coloured output")

	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)

		return exitOK
	}

	if fs.NArg() == 0 {
		usage(stderr)

		return exitUsage
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", fs.Arg(0))
		usage(stderr)

		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)

		return exitError
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	cfg.NoColor = cfg.NoColor || *noColor || os.Getenv("NO_COLOR") != ""

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)

		return exitUsage
	}

	logger, _ := logging.New(stderr, level)
	if cfg.Path != "" {
		logger.Debug("configuration loaded", "path", cfg.Path)
	}

	a := &app{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger.With("command", fs.Arg(0)),
		console: console.New(stderr, cfg.NoColor),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}

	err = cmd.run(a, fs.Args()[1:])

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, "error:", err)

		return exitUsage
	default:
		a.logger.Error("command failed", "error", err)

		return exitError
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get working directory")
	}

	return config.Discover(wd)
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	sort.Strings(names)

	var b strings.Builder

	b.WriteString("usage: hicstuff [--version] [--config FILE] [--log-level LEVEL] [--no-color] <command> [<args>]\n\ncommands:\n")

	for _, name := range names {
		fmt.Fprintf(&b, "  %-10s %s\n", name, commands[name].summary)
	}

	fmt.Fprint(w, b.String())
}

// newFlagSet returns the flag set of a subcommand, writing its errors to stderr.
func (a *app) newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "usage: hicstuff %s %s\n\noptions:\n", name, synopsis)
		fs.PrintDefaults()
	}

	return fs
}

// parse parses args and checks the number of positional arguments.
func parse(fs *flag.FlagSet, args []string, positional ...string) error {
	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err //nolint:wrapcheck // checked by run
		}

		return errors.Wrapf(errUsage, "%s: %s", fs.Name(), err)
	}

	if fs.NArg() != len(positional) {
		fs.Usage()

		return errors.Wrapf(errUsage, "%s expects %d argument(s): %s", fs.Name(), len(positional), strings.Join(positional, " "))
	}

	return nil
}

// pipelineOptions measures pipelines, and draws them when graph is set.
func (a *app) pipelineOptions(graph string) ([]model.PipelineOption, *measure.DefaultMeasure) {
	msr := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{measure.PipelineMeasure(msr)}

	if graph != "" {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(graph), msr))
	}

	return opts, msr
}

// logMeasure reports the average duration of every step at debug level.
func (a *app) logMeasure(msr *measure.DefaultMeasure) {
	for _, name := range msr.Names() {
		mt := msr.GetMetric(name)
		if mt.Count() == 0 {
			continue
		}

		a.logger.Debug("step timing", "step", name, "entries", mt.Count(), "avg", mt.AVGDuration())
	}
}

func runVersion(a *app, args []string) error {
	fs := a.newFlagSet("version", "")

	err := parse(fs, args)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, version)

	return nil
}

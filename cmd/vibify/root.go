package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vibify/internal/config"
	"vibify/internal/logging"
	"vibify/internal/metrics"
	"vibify/internal/output"
	"vibify/internal/storage"
)

type globalOptions struct {
	JSON        bool
	Plain       bool
	Quiet       bool
	Verbose     bool
	NoColor     bool
	NoInput     bool
	DB          string
	MetricsFile string
}

// app carries what every command shares. It is filled in by the root pre-run hook;
// until then logger discards.
type app struct {
	opts    globalOptions
	cfg     config.Config
	out     *output.Output
	logger  *slog.Logger
	metrics *metrics.Collector
	store   *storage.SQLiteStore

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	isTTY  func() bool
	load   func() (config.Config, error)

	catalogURL string
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTTY:  func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		load:   config.Load,
		logger: logging.Discard(),
	}
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vibify",
		Short:         "Turn a mood, a prompt or a photo into an Apple Music playlist",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error() + "\n(run with --help for usage)"}
	})

	f := root.PersistentFlags()
	f.BoolVar(&a.opts.JSON, "json", false, "Output machine-readable JSON")
	f.BoolVar(&a.opts.Plain, "plain", false, "Disable decorative formatting")
	f.BoolVarP(&a.opts.Quiet, "quiet", "q", false, "Suppress non-essential output")
	f.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&a.opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVar(&a.opts.NoInput, "no-input", false, "Never read the prompt from stdin")
	f.StringVar(&a.opts.DB, "db", "", "Playlist database path (default: XDG data dir)")
	f.StringVar(&a.opts.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")

	root.AddCommand(
		a.generateCmd(),
		a.historyCmd(),
		a.showCmd(),
		a.exportCmd(),
		a.deleteCmd(),
		a.importCmd(),
		a.roomsCmd(),
		a.bridgeCmd(),
		a.blockedCmd(),
		a.artworkCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if a.opts.DB != "" {
		cfg.Database = a.opts.DB
	}
	if a.opts.MetricsFile != "" {
		cfg.MetricsFile = a.opts.MetricsFile
	}
	if a.opts.Verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	a.out = output.New(output.Options{
		JSON:        a.opts.JSON,
		Plain:       a.opts.Plain,
		Quiet:       a.opts.Quiet,
		Verbose:     a.opts.Verbose,
		NoColor:     a.opts.NoColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb",
		Interactive: isTerminalWriter(a.stdout),
		Stdout:      a.stdout,
		Stderr:      a.stderr,
	})
	a.logger = logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	a.metrics = metrics.New()
	return nil
}

func (a *app) openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := storage.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.Database, err)
	}
	a.logger.Debug("database opened", "path", a.cfg.Database)
	a.store = s
	return s, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close database", "err", err)
		}
	}
	if a.metrics != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.logger.Warn("write metrics", "path", a.cfg.MetricsFile, "err", err)
		}
	}
}

// promptFrom joins args, falling back to piped stdin unless disabled.
func (a *app) promptFrom(args []string) string {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt != "" || a.opts.NoInput || a.isTTY() {
		return prompt
	}
	return readPrompt(a.stdin)
}

func readPrompt(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	lines := []string{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{msg: "usage: vibify " + usage}
		}
		return nil
	}
}

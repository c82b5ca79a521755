package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hession/searchmate/internal/cli"
	"github.com/hession/searchmate/internal/config"
	"github.com/hession/searchmate/internal/history"
	"github.com/hession/searchmate/internal/logger"
	"github.com/hession/searchmate/internal/search"
	"github.com/hession/searchmate/internal/tracer"
)

var (
	version = "0.1.0"
)

// errNoMatches ends a one-shot search with exit status 1, like grep
var errNoMatches = errors.New("no matches")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	if code == 2 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoMatches):
		return 1
	default:
		return 2
	}
}

// searchFlags are the request overrides accepted on the command line
type searchFlags struct {
	engine     string
	ignoreCase bool
	word       bool
	regex      bool
	maxDepth   int
	types      []string
	excludes   []string
	maxResults int
	timeout    time.Duration
	json       bool
	noHistory  bool
}

func (f *searchFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.engine, "engine", "e", "", "search engine: ripgrep or grep (default from config)")
	fs.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	fs.BoolVarP(&f.word, "word", "w", false, "match whole words only")
	fs.BoolVarP(&f.regex, "regex", "r", false, "treat the pattern as a regular expression")
	fs.IntVar(&f.maxDepth, "max-depth", -1, "maximum directory depth (ripgrep only)")
	fs.StringSliceVarP(&f.types, "type", "t", nil, "file glob to include, repeatable (ripgrep only)")
	fs.StringSliceVarP(&f.excludes, "exclude", "x", nil, "glob to exclude, repeatable (ripgrep only)")
	fs.IntVarP(&f.maxResults, "max-results", "m", 0, "maximum number of results (default from config)")
	fs.DurationVar(&f.timeout, "timeout", 0, "search timeout, e.g. 30s (default from config)")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.BoolVar(&f.noHistory, "no-history", false, "do not record this search")
}

// apply layers the flags that were set over the configured request
func (f *searchFlags) apply(cmd *cobra.Command, req search.Request) search.Request {
	fs := cmd.Flags()
	if fs.Changed("engine") {
		req.Engine = f.engine
	}
	if f.ignoreCase {
		req.CaseSensitive = false
	}
	if f.word {
		req.WholeWord = true
	}
	if f.regex {
		req.UseRegex = true
	}
	if f.maxDepth >= 0 {
		req.MaxDepth = search.Depth(uint(f.maxDepth))
	}
	if len(f.types) > 0 {
		req.FileTypes = append([]string(nil), f.types...)
	}
	if len(f.excludes) > 0 {
		req.ExcludePatterns = append(append([]string(nil), req.ExcludePatterns...), f.excludes...)
	}
	if fs.Changed("max-results") {
		req.MaxResults = f.maxResults
	}
	if fs.Changed("timeout") {
		req.Timeout = f.timeout
	}
	return req
}

// app holds the components wired from configuration
type app struct {
	cfg      *config.Config
	searcher *search.Searcher
	store    history.Store // nil when history is off
	shutdown func(context.Context) error
}

func setupApp(ctx context.Context, withHistory bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		LogDir:     config.LogDir(),
		Level:      logger.ParseLevel(cfg.Log.Level),
		MaxDays:    cfg.Log.MaxDays,
		ConsoleOut: cfg.Log.Console,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	shutdown, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a := &app{cfg: cfg, searcher: newSearcher(cfg), shutdown: shutdown}

	if withHistory && cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			logger.Warn("search history unavailable: %v", err)
		} else {
			a.store = store
		}
	}

	logger.Info("searchmate started: engine=%s history=%v", cfg.Search.Engine, a.store != nil)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if err := a.shutdown(context.Background()); err != nil {
		logger.Warn("tracer shutdown: %v", err)
	}
	logger.Close()
}

func newSearcher(cfg *config.Config) *search.Searcher {
	return search.New(
		search.WithExecutable(search.EngineRipgrep, cfg.EnginePath(search.EngineRipgrep)),
		search.WithExecutable(search.EngineGrep, cfg.EnginePath(search.EngineGrep)),
		search.WithKillOnTimeout(cfg.Engines.KillOnTimeout),
	)
}

func colorEnabled(jsonOut bool) bool {
	if jsonOut || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func newRootCmd() *cobra.Command {
	flags := &searchFlags{}

	rootCmd := &cobra.Command{
		Use:   "searchmate <pattern> [path]",
		Short: "SearchMate - code search over ripgrep and grep",
		Long: `SearchMate runs a text search through ripgrep or grep and returns
normalized results: file path, line number and matching line.

Patterns are literal by default; pass --regex for regular expressions.
Filters such as --max-depth, --type and --exclude are honored by ripgrep
and ignored by grep.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd.Context(), !flags.noHistory)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := cli.NewSession(a.searcher, a.store, a.cfg)
			req := flags.apply(cmd, sess.Request())
			if len(args) > 1 {
				req.Path = args[1]
			}
			sess.SetRequest(req)
			sess.JSON = flags.json
			sess.Color = colorEnabled(flags.json)

			n, err := sess.Search(cmd.Context(), args[0], cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if n == 0 {
				return errNoMatches
			}
			return nil
		},
	}
	flags.bind(rootCmd)

	var configDir string
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ./config)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if configDir != "" {
			config.SetConfigDir(configDir)
		}
	}

	rootCmd.AddCommand(
		newReplCmd(),
		newEnginesCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive search session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := cli.NewSession(a.searcher, a.store, a.cfg)
			sess.Color = colorEnabled(false)
			return cli.Run(cmd.Context(), sess)
		},
	}
}

func newEnginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List search engines and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			printEngines(cmd, newSearcher(cfg), cfg.Search.Engine)
			return nil
		},
	}
}

func printEngines(cmd *cobra.Command, s *search.Searcher, current string) {
	out := cmd.OutOrStdout()
	for _, e := range s.Engines() {
		marker := " "
		if e.Name() == current {
			marker = "*"
		}
		status := "available"
		if !s.Available(e) {
			status = "not found"
		}
		fmt.Fprintf(out, "%s %-8s %-20s %-10s %s\n", marker, e.Name(), s.Executable(e), status, e.Capabilities())
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(sess *cli.Session) {
				line := "/history"
				if limit > 0 {
					line = fmt.Sprintf("/history %d", limit)
				}
				sess.Handle(cmd.Context(), line, cmd.OutOrStdout())
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (default from config)")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(sess *cli.Session) {
				sess.Handle(cmd.Context(), "/history clear", cmd.OutOrStdout())
			})
		},
	})
	return historyCmd
}

func withHistory(cmd *cobra.Command, fn func(sess *cli.Session)) error {
	a, err := setupApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return fmt.Errorf("search history is disabled")
	}
	sess := cli.NewSession(a.searcher, a.store, a.cfg)
	sess.Color = colorEnabled(false)
	fn(sess)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cfg.String())

			path, _ := config.ConfigPath()
			fmt.Fprintf(out, "\nConfig file path: %s\n", path)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "SearchMate v%s\n", version)
		},
	}
}

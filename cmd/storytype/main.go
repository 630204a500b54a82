// Package main provides the CLI entrypoint for storytype.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/storytype/internal/auth"
	"github.com/verte-zerg/storytype/internal/config"
	"github.com/verte-zerg/storytype/internal/game"
	"github.com/verte-zerg/storytype/internal/historyui"
	"github.com/verte-zerg/storytype/internal/logging"
	"github.com/verte-zerg/storytype/internal/metrics"
	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/stats"
	"github.com/verte-zerg/storytype/internal/store"
	"github.com/verte-zerg/storytype/internal/story"
	"github.com/verte-zerg/storytype/internal/tui"
)

const (
	defaultFPS         = 60
	defaultCurveWindow = 10
	defaultSparkWidth  = 16
	defaultCurveHeight = 10
)

type options struct {
	dbPath    string
	user      string
	logLevel  string
	logFormat string
	logFile   string
	corpus    string

	initialDelay   time.Duration
	delayStep      time.Duration
	fps            int
	sampleInterval time.Duration
	liveWindow     int

	historyPlain  bool
	historyLast   int
	historyWindow int

	importMinLetters int
	importOut        string
}

var (
	opts    options
	fileCfg config.FileConfig
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "storytype",
		Short:             "Terminal typing game played against a growing story",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: prepare,
		RunE:              runPlayCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")
	pf.StringVar(&opts.user, "user", "", "username to prefill at login")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", logging.FormatJSON, "log format (json, console)")
	pf.StringVar(&opts.logFile, "log-file", config.DefaultLogPath(), "log file path; empty disables logging")
	pf.StringVar(&opts.corpus, "corpus", "", "story corpus file (default: imported stories, then built-in)")

	f := rootCmd.Flags()
	f.DurationVar(&opts.initialDelay, "initial-delay", game.DefaultInitialDelay, "delay between appended characters at the start of a run")
	f.DurationVar(&opts.delayStep, "delay-step", game.DefaultDelayStep, "amount the delay shrinks after each append")
	f.IntVar(&opts.fps, "fps", defaultFPS, "frames per second")
	f.DurationVar(&opts.sampleInterval, "sample-interval", metrics.DefaultInterval, "time between speed samples")
	f.IntVar(&opts.liveWindow, "live-window", metrics.DefaultWindow, "samples shown on the live chart")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStoriesCmd())

	return rootCmd
}

// prepare resolves settings in order flag, environment, config file, default.
func prepare(cmd *cobra.Command, _ []string) error {
	if err := bindEnv(cmd); err != nil {
		return err
	}
	loaded, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = loaded
	return applyFileConfig(cmd, fileCfg)
}

func runPlayCmd(_ *cobra.Command, _ []string) error {
	cfg := model.Config{
		InitialDelay:   opts.initialDelay,
		DelayStep:      opts.delayStep,
		FPS:            opts.fps,
		SampleInterval: opts.sampleInterval,
		LiveWindow:     opts.liveWindow,
		CorpusPath:     opts.corpus,
		User:           auth.NormalizeUsername(opts.user),
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, closer, err := openLogger()
	if err != nil {
		return err
	}
	defer closeQuietly("log", closer)

	corpus, err := loadCorpus(cfg.CorpusPath)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.dbPath)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.dbPath).Msg("failed to open db")
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly("db", st)

	logger.Info().
		Int("stories", len(corpus)).
		Dur("initial_delay", cfg.InitialDelay).
		Dur("delay_step", cfg.DelayStep).
		Msg("starting game")

	m, err := tui.NewModel(&tui.Context{
		Store:  st,
		Log:    logger,
		Config: cfg,
		Theme:  theme(),
		Corpus: corpus,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := config.EnsureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and compare past runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&opts.historyPlain, "plain", false, "print a text report instead of the browser")
	cmd.Flags().IntVar(&opts.historyLast, "last", 0, "limit the report to the last N runs")
	cmd.Flags().IntVar(&opts.historyWindow, "curve-window", defaultCurveWindow, "moving average window for the score curve")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	name := auth.NormalizeUsername(opts.user)
	if name == "" {
		name = model.GuestUsername
	}

	st, err := store.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeQuietly("db", st)

	ctx := context.Background()
	user, err := st.FindUser(ctx, name)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("unknown user %q", name)
	}

	if opts.historyPlain {
		report, err := stats.BuildReport(ctx, st, *user, opts.historyLast)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		out := cmd.OutOrStdout()
		return report.Render(out, stats.RenderOptions{
			Height:     defaultCurveHeight,
			Window:     opts.historyWindow,
			SparkWidth: defaultSparkWidth,
			Color:      isTerminal(out),
		})
	}

	records, err := st.ListScores(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	browser := historyui.New(*user, records, historyui.Options{Paint: theme().Paint})
	program := tea.NewProgram(browser, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newStoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Manage the story corpus",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the stories a game picks from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			corpus, err := loadCorpus(opts.corpus)
			if err != nil {
				return err
			}
			return stats.RenderStoryTable(cmd.OutOrStdout(), corpus)
		},
	})

	importCmd := &cobra.Command{
		Use:   "import <file-or-url>",
		Short: "Build a corpus from the paragraphs of a text file or URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	importCmd.Flags().IntVar(&opts.importMinLetters, "min-letters", story.DefaultMinLetters, "skip paragraphs with fewer letters")
	importCmd.Flags().StringVar(&opts.importOut, "out", config.DefaultCorpusPath(), "where to write the corpus")
	cmd.AddCommand(importCmd)
	return cmd
}

func runImportCmd(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logErrf("Importing %s...\n", args[0])
	stories, err := story.Import(ctx, args[0], story.ImportOptions{MinLetters: opts.importMinLetters})
	if err != nil {
		return err
	}
	if err := story.WriteCorpus(opts.importOut, stories); err != nil {
		return err
	}
	logErrf("Wrote %d stories to %s\n", len(stories), opts.importOut)
	return nil
}

// loadCorpus reads path when given. Otherwise it prefers imported stories
// and falls back to the built-in corpus.
func loadCorpus(path string) (story.Corpus, error) {
	if path != "" {
		corpus, err := story.LoadCorpusFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus: %w", err)
		}
		return corpus, nil
	}
	corpus, err := story.LoadCorpusFile(config.DefaultCorpusPath())
	if err == nil {
		return corpus, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return story.DefaultCorpus()
}

func openLogger() (zerolog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Path:   opts.logFile,
		Level:  opts.logLevel,
		Format: opts.logFormat,
	})
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, closer, nil
}

func theme() tui.Theme {
	t := fileCfg.Theme
	return tui.DefaultTheme().WithOverrides(tui.ThemeOverrides{
		Pending: t.Pending,
		Cursor:  t.Cursor,
		Score:   t.Score,
		Faster:  t.Faster,
		Slower:  t.Slower,
		Line:    t.Line,
		Error:   t.Error,
	})
}

func validateConfig(cfg model.Config) error {
	if cfg.InitialDelay <= 0 {
		return fmt.Errorf("--initial-delay must be > 0")
	}
	if cfg.DelayStep <= 0 {
		return fmt.Errorf("--delay-step must be > 0")
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	if cfg.SampleInterval <= 0 {
		return fmt.Errorf("--sample-interval must be > 0")
	}
	if cfg.LiveWindow <= 0 {
		return fmt.Errorf("--live-window must be > 0")
	}
	if cfg.User != "" {
		if err := auth.ValidateUsername(cfg.User); err != nil {
			return fmt.Errorf("--user: %w", err)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func closeQuietly(what string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logErrf("failed to close %s: %v\n", what, err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

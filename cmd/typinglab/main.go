// Package main provides the CLI entrypoint for typinglab.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typinglab/internal/api"
	"github.com/verte-zerg/typinglab/internal/config"
	"github.com/verte-zerg/typinglab/internal/generator"
	"github.com/verte-zerg/typinglab/internal/logging"
	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/server"
	"github.com/verte-zerg/typinglab/internal/session"
	"github.com/verte-zerg/typinglab/internal/stats"
	"github.com/verte-zerg/typinglab/internal/statsui"
	"github.com/verte-zerg/typinglab/internal/store"
	"github.com/verte-zerg/typinglab/internal/training"
	"github.com/verte-zerg/typinglab/internal/tui"
	"github.com/verte-zerg/typinglab/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultDuration    = 60
	defaultWords       = api.DefaultPromptWords
	defaultSource      = wordlist.SourceTop1000
	defaultCaps        = 0.0
	defaultPunct       = 0.0
	defaultCurveWindow = 20
	defaultAddr        = "127.0.0.1:8080"
	defaultTableRows   = 15
	plainPlotHeight    = 10
	startupTimeout     = 5 * time.Second
)

const defaultPunctSet = ".,!?;:"

var (
	debug       bool
	sessionJSON string

	practiceDuration int
	practiceLiveWPM  bool
	practiceWords    int
	practiceSource   string
	practiceLang     string
	practiceCaps     float64
	practicePunct    float64
	practicePunctSet string
	practiceWordlist string

	backendURL    string
	backendToken  string
	backendUserID int64

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	serveAddr  string
	serveToken string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typinglab",
		Short:         "Terminal typing-speed trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTyping(cmd, model.ModeCasual, "")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "write debug logs")
	flags.StringVar(&sessionJSON, "session-json", "", "JSON start configuration (overrides $"+config.SessionEnv+")")
	flags.IntVar(&practiceDuration, "duration", defaultDuration, "session length in seconds (15, 30, 60, 120)")
	flags.BoolVar(&practiceLiveWPM, "live-wpm", true, "show running WPM and accuracy while typing")
	flags.IntVar(&practiceWords, "words", defaultWords, "words per prompt request")
	flags.StringVar(&practiceSource, "source", defaultSource, "word source (1000 or 5000 most common words)")
	flags.StringVar(&practiceLang, "lang", defaultLang, "word list language")
	flags.Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	flags.Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	flags.StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	flags.StringVar(&practiceWordlist, "wordlist", "", "word list file (default: data dir)")
	flags.StringVar(&backendURL, "backend-url", "", "typing API base URL (default: built-in offline backend)")
	flags.StringVar(&backendToken, "token", "", "session token for the typing API")
	flags.Int64Var(&backendUserID, "user-id", 0, "user id for ranked submissions")

	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())

	return rootCmd
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Take a ranked typing test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTyping(cmd, model.ModeRanked, "")
		},
	}
}

func newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "train [" + strings.Join(training.ModeNames(), "|") + "]",
		Short:     "Practice graded training levels",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: training.ModeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := training.Modes[0].Name
			if len(args) == 1 {
				name = strings.ToLower(args[0])
			}
			return runTyping(cmd, model.ModeTraining, name)
		},
	}
}

// loadFileConfig reads the config file. A broken file is reported and
// ignored so the defaults apply.
func loadFileConfig() config.FileConfig {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	var unknown *config.UnknownKeysError
	switch {
	case errors.As(err, &unknown):
		logErrf("warning: %v\n", err)
	case err != nil:
		logErrf("warning: %v; using defaults\n", err)
		return config.FileConfig{}
	}
	return fileCfg
}

func applyPracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Practice.Duration)
	applyBoolConfig(cmd, "live-wpm", &practiceLiveWPM, fileCfg.Practice.LiveWPM)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyStringConfig(cmd, "source", &practiceSource, fileCfg.Practice.Source)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyStringConfig(cmd, "wordlist", &practiceWordlist, fileCfg.Practice.Wordlist)
	applyStringConfig(cmd, "backend-url", &backendURL, fileCfg.Backend.URL)
	applyStringConfig(cmd, "token", &backendToken, fileCfg.Backend.Token)
	applyInt64Config(cmd, "user-id", &backendUserID, fileCfg.Backend.UserID)
}

func practiceOptions() model.PromptOptions {
	return model.PromptOptions{
		Words:    practiceWords,
		Source:   wordlist.NormalizeSource(practiceSource),
		Lang:     practiceLang,
		CapsPct:  practiceCaps,
		PunctPct: practicePunct,
		PunctSet: practicePunctSet,
	}
}

func runTyping(cmd *cobra.Command, mode model.Mode, trainingMode string) error {
	applyPracticeConfig(cmd, loadFileConfig())
	opts := practiceOptions()
	if err := validatePromptOptions(opts); err != nil {
		return err
	}

	logger, err := logging.New(config.DefaultLogPath(), debug)
	if err != nil {
		logErrf("warning: %v\n", err)
	}
	defer func() {
		// Best-effort flush of the file logger.
		_ = logger.Sync()
	}()

	sessCfg, explicit := startConfig(cmd, logger)
	switch mode {
	case model.ModeRanked:
		sessCfg.Ranked = true
	case model.ModeTraining:
		sessCfg.Training = true
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	local := newLocalBackend(opts, st, logger)
	var backend api.Backend = local
	var remote training.ProgressStore
	if backendURL != "" {
		client := api.NewClient(backendURL, api.WithToken(backendToken))
		backend = client
		remote = client
		logger.Info("using remote backend", zap.String("url", backendURL))
	}
	// The offline backend always records ranked results; a remote one
	// needs a configured user.
	if sessCfg.UserID == nil && (backendURL == "" || backendUserID != 0) {
		uid := backendUserID
		sessCfg.UserID = &uid
	}

	var tracker *training.Tracker
	if mode == model.ModeTraining {
		trainMode, ok := training.Lookup(trainingMode)
		if !ok {
			return fmt.Errorf("unknown training mode %q (available: %s)", trainingMode, strings.Join(training.ModeNames(), ", "))
		}
		tracker = training.NewTracker(trainMode, remote, st, logger)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if tracker != nil {
		g.Go(func() error {
			if err := tracker.Load(gctx); err != nil {
				logger.Warn("training progress unavailable", zap.Error(err))
			}
			return nil
		})
	}
	if mode != model.ModeTraining && !explicit {
		g.Go(func() error {
			seconds, ok, err := st.PreferredDuration(gctx)
			if err != nil {
				logger.Warn("failed to load preferred duration", zap.Error(err))
				return nil
			}
			if ok {
				sessCfg = preferDuration(sessCfg, seconds, explicit)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m := tui.NewModel(tui.Options{
		Session: sessCfg,
		Prompt:  api.PromptRequest{Words: opts.Words, Source: opts.Source},
		Backend: backend,
		History: st,
		Tracker: tracker,
		Logger:  logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// startConfig resolves the start configuration from --session-json, the
// environment, or the practice flags. A payload's fields win over the
// practice flags, except an explicit --duration. explicit reports whether
// --duration was set and must not be replaced by the stored preference.
func startConfig(cmd *cobra.Command, logger *zap.Logger) (model.SessionConfig, bool) {
	explicit := cmd.Flags().Changed("duration")
	raw := sessionJSON
	cfg, err := config.ParseSessionConfig(raw)
	if raw == "" {
		raw = os.Getenv(config.SessionEnv)
		cfg, err = config.SessionConfigFromEnv()
	}
	if err != nil {
		logger.Warn("ignoring start configuration", zap.Error(err))
	}
	if err != nil || strings.TrimSpace(raw) == "" {
		cfg.DurationSeconds = practiceDuration
		cfg.LiveWPM = 0
		if practiceLiveWPM {
			cfg.LiveWPM = 1
		}
		return cfg, explicit
	}
	if explicit {
		cfg.DurationSeconds = practiceDuration
	}
	return cfg, explicit
}

// preferDuration applies a stored preferred duration unless the duration
// was set explicitly or the stored value is not a selectable duration.
func preferDuration(cfg model.SessionConfig, seconds int, explicit bool) model.SessionConfig {
	if explicit || !session.ValidDuration(seconds) {
		return cfg
	}
	cfg.DurationSeconds = seconds
	return cfg
}

func newLocalBackend(opts model.PromptOptions, st api.LocalStore, logger *zap.Logger) *api.Local {
	path := practiceWordlist
	if path == "" {
		path = config.DefaultWordListPath(opts.Lang)
	}
	words, ok := wordlist.Load(path, opts.Lang)
	if !ok {
		logger.Info("using built-in word list", zap.String("path", path), zap.String("lang", opts.Lang))
	}
	return api.NewLocal(api.LocalConfig{
		Words: words,
		Style: generator.Options{
			CapsPct:  opts.CapsPct,
			PunctPct: opts.PunctPct,
			PunctSet: []rune(opts.PunctSet),
		},
		Store: st,
		Modes: training.ModeNames(),
	})
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (casual, ranked, training)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats instead of opening the browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Mode:        strings.ToLower(statsMode),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return printStats(cmd, st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, src stats.SessionLister, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), src, cfg)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := stats.RenderCurves(w, report.Window, cfg.CurveWindow, 0, plainPlotHeight, stats.ShouldUseColor(w, false)); err != nil {
		return fmt.Errorf("failed to write curves: %w", err)
	}
	if err := stats.RenderSessionTable(w, report.Sessions, defaultTableRows); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the typing API backed by the local store",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveToken, "server-token", "", "required session cookie value (default: no auth)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg := loadFileConfig()
	applyPracticeConfig(cmd, fileCfg)
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	opts := practiceOptions()
	if err := validatePromptOptions(opts); err != nil {
		return err
	}

	logger, err := logging.Console(debug)
	if err != nil {
		logErrf("warning: %v\n", err)
	}
	defer func() {
		// Best-effort flush of the console logger.
		_ = logger.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:   serveAddr,
		Token:  serveToken,
		Modes:  training.ModeNames(),
		Logger: logger,
	}, newLocalBackend(opts, st, logger))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
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
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
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

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List installed word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := installedLangs(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		logErrf("No word lists installed in %s; the built-in English list is used.\n", config.DefaultWordListDir())
		return nil
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// installedLangs lists the <lang>.txt files of dir, sorted.
func installedLangs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		if strings.ToUpper(name) == name {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	sort.Strings(langs)
	return langs, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typinglab configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# duration = %d           # Session length in seconds (15, 30, 60, 120)
# live-wpm = true         # Show running WPM and accuracy
# words = %d              # Words per prompt request
# source = %q             # Word source ("1000" or "5000")
# lang = %q               # Word list language
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# wordlist = ""           # Word list file (default: data dir)

[backend]
# url = "http://%s"  # Typing API; unset uses the offline backend
# token = ""              # Session cookie for the API
# user-id = 0             # User id for ranked submissions

[server]
# addr = %q   # Listen address for typinglab serve
`,
		defaultDuration,
		defaultWords,
		defaultSource,
		defaultLang,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultAddr,
		defaultAddr,
	)
}

func validatePromptOptions(opts model.PromptOptions) error {
	if opts.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if opts.CapsPct < 0 || opts.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if opts.PunctPct < 0 || opts.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if opts.PunctPct > 0 && opts.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if !session.ValidDuration(practiceDuration) {
		return fmt.Errorf("--duration must be one of 15, 30, 60, 120")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

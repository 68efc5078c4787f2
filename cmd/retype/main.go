// Package main provides the CLI entrypoint for retype.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/retype/internal/config"
	"github.com/verte-zerg/retype/internal/generator"
	"github.com/verte-zerg/retype/internal/logging"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/statsui"
	"github.com/verte-zerg/retype/internal/store"
	"github.com/verte-zerg/retype/internal/textsource"
	"github.com/verte-zerg/retype/internal/tui"
	"github.com/verte-zerg/retype/internal/wordfreq"
)

const (
	defaultLang       = "en"
	defaultWords      = 25
	defaultCaps       = 0.5
	defaultPunct      = 0.5
	defaultWeakTop    = 8
	defaultWeakFactor = 2.0
	defaultWeakWindow = 20
	defaultTickMs     = 120
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultWordlistSz = 10000
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

var (
	practiceLang       string
	practiceWords      int
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practiceTickMs     int
	practiceText       string

	statsLang  string
	statsSince string
	statsLast  int
	statsPlain bool

	wordlistLang  string
	wordlistSize  int
	wordlistForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "retype",
		Short:         "Terminal typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code (default: en)")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per text")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
	rootCmd.Flags().IntVar(&practiceTickMs, "tick-ms", defaultTickMs, "metrics refresh interval in milliseconds")
	rootCmd.Flags().StringVar(&practiceText, "text", "", "practice a text file, or a stored text by name")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newTextsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWordlistCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := practiceConfig(cmd, fileCfg.Practice)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(fileCfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	source, err := textSource(cfg, st, logger)
	if err != nil {
		return err
	}
	logger.Info("practice started", "lang", cfg.Lang, "text", cfg.Text, "focus_weak", cfg.FocusWeak)

	m := tui.NewModel(tui.Options{
		Config: cfg,
		Store:  st,
		Source: source,
		Logger: logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func practiceConfig(cmd *cobra.Command, file config.PracticeConfig) model.Config {
	applyStringConfig(cmd, "lang", &practiceLang, file.Lang)
	applyIntConfig(cmd, "words", &practiceWords, file.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, file.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, file.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, file.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, file.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, file.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, file.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, file.WeakWindow)
	applyIntConfig(cmd, "tick-ms", &practiceTickMs, file.TickMs)
	applyStringConfig(cmd, "text", &practiceText, file.Text)

	return model.Config{
		Lang:       practiceLang,
		Words:      practiceWords,
		CapsPct:    practiceCaps,
		PunctPct:   practicePunct,
		PunctSet:   practicePunctSet,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
		TickMs:     practiceTickMs,
		Text:       practiceText,
	}
}

func openLogger(file config.LogConfig) (*slog.Logger, io.Closer, error) {
	cfg := logging.Config{
		Level:  defaultLogLevel,
		Format: defaultLogFormat,
		Path:   config.DefaultLogPath(),
	}
	if file.Level != nil {
		cfg.Level = *file.Level
	}
	if file.Format != nil {
		cfg.Format = *file.Format
	}
	logger, closer, err := logging.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, closer, nil
}

// textSource picks a fixed text when --text is set and the word-list
// generator otherwise.
func textSource(cfg model.Config, st *store.Store, logger *slog.Logger) (tui.TextSource, error) {
	if cfg.Text != "" {
		path, err := textsource.Resolve(config.DefaultTextDir(), cfg.Text)
		if err != nil {
			if errors.Is(err, textsource.ErrNoMatch) {
				return nil, fmt.Errorf("no text matches %q (see: retype texts)", cfg.Text)
			}
			return nil, err
		}
		body, err := textsource.LoadText(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return tui.StaticSource{Text: tui.Text{Body: body, Source: "text:" + name}}, nil
	}

	wordPath := config.DefaultWordListPath(cfg.Lang)
	words, err := textsource.LoadWords(wordPath, textsource.FilterForLang(cfg.Lang))
	if err != nil {
		return nil, wordListLoadError(cfg.Lang, wordPath, err)
	}
	return &tui.GeneratedSource{
		Gen:    generator.New(),
		Words:  words,
		Config: cfg,
		Store:  st,
		Logger: logger,
	}, nil
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
		Short: "List installed word-list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := installedLangs(config.DefaultWordListDir())
	if err != nil {
		if os.IsNotExist(err) {
			logErrf("No wordlists found. Download with: retype wordlist --lang <code>\n")
			return fmt.Errorf("wordlist directory does not exist")
		}
		return fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	if len(langs) == 0 {
		logErrf("No wordlists found. Download with: retype wordlist --lang <code>\n")
		return fmt.Errorf("no wordlists found")
	}
	return printLines(cmd.OutOrStdout(), langs)
}

// installedLangs lists word lists in dir, skipping the dataset notices.
func installedLangs(dir string) ([]string, error) {
	names, err := textsource.ListTexts(dir)
	if err != nil {
		return nil, err
	}
	langs := names[:0]
	for _, name := range names {
		if !slices.Contains(wordfreq.NoticeFiles, name) {
			langs = append(langs, name)
		}
	}
	return langs, nil
}

func newTextsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "texts",
		Short: "List stored practice texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	dir := config.DefaultTextDir()
	names, err := textsource.ListTexts(dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read text directory: %w", err)
	}
	if len(names) == 0 {
		logErrf("No texts found. Save .txt files into %s\n", dir)
		return nil
	}
	return printLines(cmd.OutOrStdout(), names)
}

func printLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsLang, statsSince, statsLast)
	if err != nil {
		return err
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

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printReport(cmd.Context(), cmd.OutOrStdout(), st, cfg, terminalWidth())
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig(lang, since string, last int) (model.StatsConfig, error) {
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	cfg := model.StatsConfig{Lang: lang, Last: last}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func printReport(ctx context.Context, w io.Writer, src stats.Source, cfg model.StatsConfig, width int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, src, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if spark := stats.Sparkline(stats.WPMSeries(report.Sessions), width-len("WPM ")); spark != "" {
		if _, err := fmt.Fprintf(w, "WPM %s\n\n", spark); err != nil {
			return err
		}
	}
	return stats.RenderCharTable(w, report.CharAggs)
}

// terminalWidth falls back to 80 columns when stdout is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Generate word lists from the wordfreq dataset",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().StringVar(&wordlistLang, "lang", "", "language code, comma-separated codes, or 'all' (default: en)")
	cmd.Flags().IntVar(&wordlistSize, "size", defaultWordlistSz, "number of words")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing files")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	if wordlistSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}

	logErrln("Fetching wordfreq metadata...")
	wheel, err := wordfreq.NewClient(config.DefaultWordfreqCacheDir()).FetchWheel(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s\n", wheel.Filename)
	} else {
		logErrf("Downloaded wheel %s\n", wheel.Filename)
	}

	ds, err := wordfreq.OpenDataset(wheel.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil {
			logErrf("failed to close wheel: %v\n", cerr)
		}
	}()

	langs, all, err := resolveWordlistLangs(wordlistLang, ds.Languages())
	if err != nil {
		return err
	}
	return writeWordLists(ds, config.DefaultWordListDir(), langs, all, wordlistSize, wordlistForce)
}

// writeWordLists extracts each language into dir. When every language was
// requested, languages without usable words are skipped instead of failing.
func writeWordLists(ds *wordfreq.Dataset, dir string, langs []string, all bool, size int, force bool) error {
	for _, lang := range langs {
		outPath := filepath.Join(dir, lang+".txt")
		if !force {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat word list: %w", err)
			}
		}

		logErrf("Extracting %s word list...\n", lang)
		words, listSize, err := ds.Words(lang, size, textsource.FilterForLang(lang))
		if err != nil {
			if all {
				logErrf("Skipping %s: %v\n", lang, err)
				continue
			}
			return fmt.Errorf("failed to extract %s word list: %w", lang, err)
		}
		if listSize != wordfreq.SizeLarge {
			logErrf("Using %s list for %s (no large list)\n", listSize, lang)
		}
		if err := textsource.WriteWordList(outPath, words); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		logErrf("Wrote %s\n", outPath)
	}

	if err := ds.WriteAttribution(dir); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	logErrln("Wrote ATTRIBUTION.txt, LICENSE.txt, and DATA_LICENSE.txt")
	return nil
}

func resolveWordlistLangs(lang string, available []string) ([]string, bool, error) {
	lang = strings.TrimSpace(strings.ToLower(lang))
	switch lang {
	case "":
		return []string{defaultLang}, false, nil
	case "all":
		return append([]string(nil), available...), true, nil
	}
	var requested []string
	for _, part := range strings.Split(lang, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !slices.Contains(available, part) {
			return nil, false, fmt.Errorf("unknown language %q (available: %s)", part, strings.Join(available, ", "))
		}
		requested = append(requested, part)
	}
	if len(requested) == 0 {
		return nil, false, fmt.Errorf("--lang must not be empty")
	}
	return requested, false, nil
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
	return fmt.Sprintf(`# retype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lang = "en"             # Language code (default %q)
# words = %d              # Words per generated text
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# focus-weak = false      # Bias practice toward weak characters
# weak-top = %d           # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent sessions to compute weak chars
# tick-ms = %d            # Metrics refresh interval in milliseconds
# text = ""               # Practice a text file or stored text instead of generated words

[log]
# level = %q              # debug, info, warn or error
# format = %q             # text or json
`,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultTickMs,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	if cfg.TickMs <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	return nil
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Run: retype langs",
		fmt.Sprintf("Download: retype wordlist --lang %s", lang),
		"Download all: retype wordlist --lang all",
		"Or practice a text: retype --text <file>",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

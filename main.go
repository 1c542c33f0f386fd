// Command gettextify marks Django model declarations for translation and fills
// the resulting gettext catalogs through a translation provider.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/gettextify/config"
	"github.com/minios-linux/gettextify/i18n"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// consoleWriter returns a zerolog writer with NoColor:!isTerminal(f). The
// "sys" field of package loggers becomes a message prefix.
func consoleWriter(f *os.File) io.Writer {
	w := zerolog.ConsoleWriter{Out: f, NoColor: !isTerminal(f), TimeFormat: time.TimeOnly}
	w.FormatPrepare = func(m map[string]any) error {
		if sys, ok := m["sys"]; ok {
			m["message"] = fmt.Sprintf("[%s] %v", sys, m["message"])
			delete(m, "sys")
		}
		return nil
	}
	return w
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
}

func logInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func logSuccess(format string, args ...any) {
	log.Info().Bool("ok", true).Msgf(format, args...)
}

func logWarning(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func logError(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// colorize wraps s in color when stderr is a terminal.
func colorize(color, s string) string {
	if !isTerminal(os.Stderr) {
		return s
	}
	return color + s + colorReset
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
)

// projectRoot returns the Django project root the commands work on.
func projectRoot() string {
	return config.FindRoot(rootDir)
}

// loadConfig reads .gettextify.yaml from the project root.
func loadConfig() (string, *config.File, error) {
	root := projectRoot()
	cfg, err := config.Load(root)
	if err != nil {
		return root, nil, err
	}
	log.Debug().Str("root", root).Msg("project root")
	return root, cfg, nil
}

// signalContext is cancelled on Ctrl+C so running tools stop with it.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gettextify",
		Short: "Mark Django models for translation and fill their catalogs",
		Long: `gettextify marks Django model declarations for translation and fills
the resulting gettext catalogs.

Commands:
  wrap        Wrap model, field, admin and choice labels in _()
  translate   Fill empty msgstr entries of django.po catalogs
  status      Show translation statistics per language
  auth        Manage provider API keys

Translation providers:
  google         Google Translate (default, no key)
  google-ai      Google AI (Gemini), API key
  groq           Groq, API key
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint

Settings are read from .gettextify.yaml in the project root and from
GETTEXTIFY_* environment variables; flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (the one with manage.py)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newWrapCmd(),
		newTranslateCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	setupLogging(false)
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gettextify version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// splitList flattens repeated and comma-separated flag values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// intersectLanguages keeps the languages of available named in filter, in
// filter order.
func intersectLanguages(available, filter []string) []string {
	set := make(map[string]bool, len(available))
	for _, lang := range available {
		set[lang] = true
	}
	var out []string
	for _, lang := range filter {
		lang = strings.TrimSpace(lang)
		if set[lang] {
			out = append(out, lang)
		}
	}
	return out
}

// dedupe drops repeated strings, keeping the first occurrence.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

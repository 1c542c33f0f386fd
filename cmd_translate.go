package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/minios-linux/gettextify/config"
	"github.com/minios-linux/gettextify/extract"
	"github.com/minios-linux/gettextify/i18n"
	"github.com/minios-linux/gettextify/langmeta"
	"github.com/minios-linux/gettextify/settings"
	"github.com/minios-linux/gettextify/translate"
)

const hintCompile = "Run 'python manage.py compilemessages' to compile the catalogs."

type translateArgs struct {
	langs       []string
	localePaths []string
	extract     bool
	provider    string
	model       string
	apiKey      string
	baseURL     string
	proxy       string
	timeout     time.Duration
	maxRetries  int
	concurrency int
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Fill empty msgstr entries of django.po catalogs",
		Long: `Translate every untranslated entry of <locale>/<lang>/LC_MESSAGES/django.po
for each language and locale path. Existing translations are never touched.

Languages default to the "languages" list of .gettextify.yaml, then to the
languages that already have a catalog. Locale paths default to "locale".

Examples:
  gettextify translate --lang de,fr                  Free Google Translate
  gettextify translate --lang de --extract           Run makemessages first
  gettextify translate --provider groq --model llama-3.3-70b-versatile
  gettextify translate --provider ollama --model llama3.1
  gettextify translate --provider custom-openai --base-url http://localhost:8080/v1 --model qwen`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyTranslateFlags(cmd, cfg, &a)

			ctx, cancel := signalContext()
			defer cancel()
			return runTranslate(ctx, root, cfg)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&a.langs, "lang", "l", nil, "Target language codes (comma-separated or repeated)")
	f.StringSliceVar(&a.localePaths, "locale-path", nil, "Locale directories relative to the project root")
	f.BoolVar(&a.extract, "extract", false, "Run makemessages for the languages before translating")
	f.StringVarP(&a.provider, "provider", "p", "", "Translation provider: "+strings.Join(translate.Providers(), ", "))
	f.StringVarP(&a.model, "model", "m", "", "Model name for AI providers")
	f.StringVar(&a.apiKey, "api-key", "", "API key (overrides GETTEXTIFY_API_KEY and stored keys)")
	f.StringVar(&a.baseURL, "base-url", "", "API base URL")
	f.StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	f.DurationVar(&a.timeout, "timeout", 0, "Request timeout")
	f.IntVar(&a.maxRetries, "max-retries", 0, "Retries of a failed request (default 3)")
	f.IntVarP(&a.concurrency, "concurrency", "j", 0, "Languages translated at once (default 5)")

	return cmd
}

// applyTranslateFlags layers set flags over the configuration.
func applyTranslateFlags(cmd *cobra.Command, cfg *config.File, a *translateArgs) {
	changed := cmd.Flags().Changed
	if changed("lang") {
		cfg.Languages = splitList(a.langs)
	}
	if changed("locale-path") {
		cfg.LocalePaths = splitList(a.localePaths)
	}
	if changed("extract") {
		cfg.Extract.Enabled = a.extract
	}
	if changed("concurrency") {
		cfg.Concurrency = a.concurrency
	}
	p := &cfg.Provider
	if a.provider != "" {
		p.Name = a.provider
	}
	if a.model != "" {
		p.Model = a.model
	}
	if a.baseURL != "" {
		p.BaseURL = a.baseURL
	}
	if a.proxy != "" {
		p.Proxy = a.proxy
	}
	if a.timeout > 0 {
		p.Timeout = a.timeout
	}
	if a.maxRetries > 0 {
		p.MaxRetries = a.maxRetries
	}
	p.APIKey = settings.APIKey(p.Name, a.apiKey, p.APIKey)
}

// resolveProvider builds the translate.Provider described by cfg.
func resolveProvider(cfg config.Provider) (translate.Provider, error) {
	prov, ok := translate.DefaultProviders()[cfg.Name]
	if !ok {
		return prov, fmt.Errorf("unknown provider %q (valid: %s)", cfg.Name, strings.Join(translate.Providers(), ", "))
	}
	if cfg.Model != "" {
		prov.Model = cfg.Model
	}
	if cfg.BaseURL != "" {
		prov.BaseURL = cfg.BaseURL
	}
	if prov.BaseURL == "" {
		if e := settings.Get(prov.ID); e != nil {
			prov.BaseURL = e.BaseURL
		}
	}
	if cfg.Proxy != "" {
		prov.Proxy = cfg.Proxy
	}
	if cfg.Timeout > 0 {
		prov.Timeout = cfg.Timeout
	}
	prov.MaxRetries = cfg.MaxRetries
	prov.APIKey = cfg.APIKey

	if err := prov.Validate(); err != nil {
		if prov.NeedsAPIKey() && prov.APIKey == "" {
			return prov, fmt.Errorf("%w\n  Run 'gettextify auth login --provider %s' or set GETTEXTIFY_API_KEY", err, prov.ID)
		}
		return prov, err
	}
	return prov, nil
}

func runTranslate(ctx context.Context, root string, cfg *config.File) error {
	prov, err := resolveProvider(cfg.Provider)
	if err != nil {
		return err
	}
	roots := cfg.LocaleRoots(root)

	codes := cfg.Languages
	if cfg.Extract.Enabled {
		if len(codes) == 0 {
			return errors.New("--extract needs languages: pass --lang or set languages in " + config.FileName)
		}
		mm := extract.NewMakemessages(cfg.Python, cfg.Extract.Command, root)
		logInfo("Extracting messages: %s", strings.Join(mm.Args(codes), " "))
		if err := mm.Run(ctx, codes); err != nil {
			logWarning("Extraction failed, translating existing catalogs: %v", err)
		}
	}
	if len(codes) == 0 {
		codes = config.DetectLanguages(roots)
	}
	if len(codes) == 0 {
		return fmt.Errorf("no languages to translate: pass --lang, set languages in %s or run makemessages", config.FileName)
	}

	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c + " (" + langmeta.Resolve(c).English + ")"
	}
	logInfo("Translating %s with %s", strings.Join(names, ", "), prov.Name)

	factory, err := translate.NewFactory(prov, log.Logger)
	if err != nil {
		return err
	}
	opts := translate.Options{
		Factory:     factory,
		Concurrency: cfg.Concurrency,
		Logger:      log.Logger,
	}

	var bars *progressBars
	if isTerminal(os.Stderr) && !verbose {
		bars = newProgressBars(root)
		opts.OnProgress = bars.update
	}

	rep := translate.Run(ctx, codes, roots, opts)
	if bars != nil {
		bars.wait()
	}

	n := rep.Translated()
	logSuccess(i18n.N("Translated %d string", "Translated %d strings", n), n)
	if err := rep.Err(); err != nil {
		return fmt.Errorf("some catalogs could not be translated: %w", err)
	}
	if n > 0 {
		logInfo("%s", i18n.T(hintCompile))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Progress bars
// ---------------------------------------------------------------------------

// progressBars renders one mpb bar per catalog.
type progressBars struct {
	root     string
	progress *mpb.Progress
	mu       sync.Mutex
	bars     map[string]*mpb.Bar
}

func newProgressBars(root string) *progressBars {
	return &progressBars{
		root:     root,
		progress: mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr)),
		bars:     make(map[string]*mpb.Bar),
	}
}

func (p *progressBars) update(pr translate.Progress) {
	if pr.Total == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[pr.Path]
	if !ok {
		name := pr.Path
		if rel, err := filepath.Rel(p.root, pr.Path); err == nil {
			name = rel
		}
		meta := langmeta.Resolve(pr.Lang)
		desc := strings.TrimSpace(fmt.Sprintf("%s %s", meta.Flag, name))
		bar = p.progress.AddBar(int64(pr.Total),
			mpb.PrependDecorators(
				decor.Name(desc, decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.Counters(0, " | %d/%d"),
				decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}, decor.WCSyncSpace),
			),
		)
		p.bars[pr.Path] = bar
	}
	if delta := int64(pr.Done) - bar.Current(); delta > 0 {
		bar.IncrInt64(delta)
	}
}

// wait stops bars of catalogs that failed midway and waits for rendering.
func (p *progressBars) wait() {
	p.mu.Lock()
	for _, bar := range p.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	p.mu.Unlock()
	p.progress.Wait()
}

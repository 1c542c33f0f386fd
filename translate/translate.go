// Package translate fills empty msgstr entries of Django catalogs through a
// translation provider: the free Google Translate endpoint by default, or a
// chat model (Gemini, Groq, Ollama, any OpenAI-compatible API).
package translate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/gettextify/catalog"
	"github.com/minios-linux/gettextify/langmeta"
)

// DefaultConcurrency is the number of languages translated at once.
const DefaultConcurrency = 5

// ErrUnsupportedLanguage is returned when the provider cannot translate
// into the requested language.
var ErrUnsupportedLanguage = errors.New("language not supported by the translator")

// Engine translates a single string into the language it was built for.
type Engine interface {
	Translate(ctx context.Context, text string) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, text string) (string, error)

// Translate calls f.
func (f EngineFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Factory builds the engine of one target language. It returns an error
// wrapping ErrUnsupportedLanguage for codes the provider rejects.
type Factory func(lang string) (Engine, error)

// NewFactory returns the engine factory of a provider. Engines made by one
// factory share the provider's rate-limit pause.
func NewFactory(prov Provider, log zerolog.Logger) (Factory, error) {
	if err := prov.Validate(); err != nil {
		return nil, err
	}
	gate := &pauseGate{}
	return func(lang string) (Engine, error) {
		if prov.ID == ProviderGoogle {
			code, ok := googleCode(lang)
			if !ok {
				return nil, fmt.Errorf("%s: %w", lang, ErrUnsupportedLanguage)
			}
			return &googleEngine{to: code}, nil
		}
		if _, err := langmeta.Parse(lang); err != nil {
			return nil, fmt.Errorf("%s: %w", lang, ErrUnsupportedLanguage)
		}
		name := langmeta.Resolve(lang).English
		return newChatEngine(prov, name, gate, log), nil
	}, nil
}

// Progress reports catalog progress to Options.OnProgress.
type Progress struct {
	Lang  string
	Path  string
	Done  int
	Total int
}

// Translator fills the catalogs of one language.
type Translator struct {
	Lang   string
	engine Engine
	log    zerolog.Logger

	// OnProgress, when set, is called once before the first entry and
	// after every translated entry.
	OnProgress func(Progress)
}

// NewTranslator builds a translator for lang.
func NewTranslator(lang string, factory Factory) (*Translator, error) {
	engine, err := factory(lang)
	if err != nil {
		if errors.Is(err, ErrUnsupportedLanguage) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", lang, err)
	}
	return &Translator{Lang: lang, engine: engine, log: zerolog.Nop()}, nil
}

// pendingCount returns how many translations the blocks still need.
func pendingCount(blocks []*catalog.Block) int {
	n := 0
	for _, b := range blocks {
		n += len(pending(b))
	}
	return n
}

// slot is one empty msgstr of a block: form -1 is the singular msgstr.
type slot struct {
	form   int
	source string
}

func pending(b *catalog.Block) []slot {
	if !b.IsMessage() {
		return nil
	}
	if !b.IsPlural() {
		if b.MsgID() == "" || b.MsgStr() != "" {
			return nil
		}
		return []slot{{form: -1, source: b.MsgID()}}
	}
	var out []slot
	for _, n := range b.PluralForms() {
		if b.MsgStrN(n) != "" {
			continue
		}
		src := b.MsgIDPlural()
		if n == 0 {
			src = b.MsgID()
		}
		out = append(out, slot{form: n, source: src})
	}
	return out
}

// TranslateLocalePath fills the catalog of the translator's language under
// a locale root and returns the number of strings translated. Entries that
// already have a translation are left alone. When the provider fails, the
// strings translated so far are saved and the error is returned.
func (t *Translator) TranslateLocalePath(ctx context.Context, root string) (int, error) {
	c, err := catalog.Load(root, t.Lang)
	if err != nil {
		return 0, err
	}

	total := pendingCount(c.Blocks)
	progress := func(done int) {
		if t.OnProgress != nil {
			t.OnProgress(Progress{Lang: t.Lang, Path: c.Path, Done: done, Total: total})
		}
	}
	progress(0)

	done := 0
	var failure error
blocks:
	for _, b := range c.Blocks {
		cache := make(map[string]string)
		for _, s := range pending(b) {
			text, ok := cache[s.source]
			if !ok {
				text, err = t.engine.Translate(ctx, s.source)
				if err != nil {
					failure = fmt.Errorf("translating %q into %s: %w", s.source, t.Lang, err)
					break blocks
				}
				cache[s.source] = text
			}
			if s.form < 0 {
				b.SetMsgStr(text)
			} else {
				b.SetMsgStrN(s.form, text)
			}
			done++
			progress(done)
		}
	}

	if done > 0 {
		if err := c.Save(); err != nil {
			return done, multierror.Append(failure, err).ErrorOrNil()
		}
		t.log.Debug().Str("file", c.Path).Int("translated", done).Msg("catalog saved")
	}
	return done, failure
}

// Options controls a batch run.
type Options struct {
	// Factory builds the engine of every language.
	Factory Factory
	// Concurrency bounds the languages translated at once;
	// DefaultConcurrency when zero.
	Concurrency int
	Logger      zerolog.Logger
	OnProgress  func(Progress)
}

// Result describes one (language, locale root) unit. Root is empty when
// the language was rejected before any catalog was opened.
type Result struct {
	Lang       string
	Root       string
	Translated int
	Skipped    bool
	Err        error
}

// Report collects the results of a batch in code order, then root order.
type Report struct {
	Results []Result
	errs    *multierror.Error
}

// Err returns every failure, or nil.
func (r *Report) Err() error { return r.errs.ErrorOrNil() }

// Translated counts the strings translated across the batch.
func (r *Report) Translated() int {
	n := 0
	for _, res := range r.Results {
		n += res.Translated
	}
	return n
}

// Run translates the catalogs of every code under every locale root. Codes
// run in a bounded pool; a failing code or catalog never stops the others.
// Missing catalogs are skipped and are not errors.
func Run(ctx context.Context, codes, roots []string, opts Options) *Report {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	log := opts.Logger.With().Str("sys", "translate").Logger()

	perCode := make([][]Result, len(codes))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			perCode[i] = runCode(ctx, code, roots, opts, log)
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{}
	for _, results := range perCode {
		for _, res := range results {
			rep.Results = append(rep.Results, res)
			if res.Err != nil {
				rep.errs = multierror.Append(rep.errs, res.Err)
			}
		}
	}
	return rep
}

func runCode(ctx context.Context, code string, roots []string, opts Options, log zerolog.Logger) []Result {
	log = log.With().Str("lang", code).Logger()

	tr, err := NewTranslator(code, opts.Factory)
	if err != nil {
		log.Error().Err(err).Msg("cannot translate language")
		return []Result{{Lang: code, Err: err}}
	}
	tr.log = log
	tr.OnProgress = opts.OnProgress

	results := make([]Result, 0, len(roots))
	for _, root := range roots {
		res := Result{Lang: code, Root: root}
		res.Translated, res.Err = tr.TranslateLocalePath(ctx, root)
		switch {
		case errors.Is(res.Err, catalog.ErrNotFound):
			res.Skipped = true
			res.Err = nil
			log.Warn().Str("root", root).Msg("catalog not found, skipping")
		case res.Err != nil:
			res.Err = fmt.Errorf("%s: %w", catalog.Path(root, code), res.Err)
			log.Error().Err(res.Err).Msg("translation failed")
		default:
			log.Info().Str("root", root).Int("translated", res.Translated).Msg("catalog translated")
		}
		results = append(results, res)
	}
	return results
}

// Providers returns the known provider IDs, sorted.
func Providers() []string {
	ids := make([]string, 0, len(DefaultProviders()))
	for id := range DefaultProviders() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

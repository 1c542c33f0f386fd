package translate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/gettextify/catalog"
)

const frCatalog = `# French translations.
msgid ""
msgstr ""
"Language: fr\n"
"Plural-Forms: nplurals=2; plural=(n > 1);\n"

#: shop/models.py:10
msgid "Name"
msgstr ""

#: shop/models.py:11
msgid "Price"
msgstr "Prix"

msgid "%(n)s item"
msgid_plural "%(n)s items"
msgstr[0] ""
msgstr[1] ""

#~ msgid "Gone"
#~ msgstr ""
`

// upper is a fake engine that upper-cases its input.
func upper(calls *[]string, mu *sync.Mutex) Engine {
	return EngineFunc(func(_ context.Context, text string) (string, error) {
		mu.Lock()
		*calls = append(*calls, text)
		mu.Unlock()
		return strings.ToUpper(text), nil
	})
}

func writeCatalog(t *testing.T, root, lang, content string) string {
	t.Helper()
	path := catalog.Path(root, lang)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func staticFactory(e Engine) Factory {
	return func(lang string) (Engine, error) { return e, nil }
}

func TestTranslateLocalePath(t *testing.T) {
	root := t.TempDir()
	path := writeCatalog(t, root, "fr", frCatalog)

	var calls []string
	var mu sync.Mutex
	tr, err := NewTranslator("fr", staticFactory(upper(&calls, &mu)))
	require.NoError(t, err)

	var seen []Progress
	tr.OnProgress = func(p Progress) { seen = append(seen, p) }

	n, err := tr.TranslateLocalePath(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Name", "%(n)s item", "%(n)s items"}, calls)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := strings.NewReplacer(
		"msgid \"Name\"\nmsgstr \"\"", "msgid \"Name\"\nmsgstr \"NAME\"",
		"msgstr[0] \"\"", "msgstr[0] \"%(N)S ITEM\"",
		"msgstr[1] \"\"", "msgstr[1] \"%(N)S ITEMS\"",
	).Replace(frCatalog)
	assert.Equal(t, want, string(data))

	require.Len(t, seen, 4)
	assert.Equal(t, Progress{Lang: "fr", Path: path, Done: 0, Total: 3}, seen[0])
	assert.Equal(t, 3, seen[3].Done)

	// Everything is translated now: a second pass makes no calls.
	calls = nil
	n, err = tr.TranslateLocalePath(context.Background(), root)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, calls)
}

func TestTranslateLocalePathProviderFailure(t *testing.T) {
	root := t.TempDir()
	path := writeCatalog(t, root, "fr", frCatalog)

	boom := errors.New("quota exceeded")
	engine := EngineFunc(func(_ context.Context, text string) (string, error) {
		if text == "Name" {
			return "Nom", nil
		}
		return "", boom
	})
	tr, err := NewTranslator("fr", staticFactory(engine))
	require.NoError(t, err)

	n, err := tr.TranslateLocalePath(context.Background(), root)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)

	c, err := catalog.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Nom", c.Blocks[1].MsgStr())
	assert.Equal(t, "", c.Blocks[3].MsgStrN(0))
}

func TestTranslateLocalePathMissingCatalog(t *testing.T) {
	tr, err := NewTranslator("de", staticFactory(EngineFunc(func(context.Context, string) (string, error) {
		t.Fatal("engine must not be called")
		return "", nil
	})))
	require.NoError(t, err)

	_, err = tr.TranslateLocalePath(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGoogleCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"fr", "fr", true},
		{"pt_BR", "pt", true},
		{"zh_Hans", "zh-CN", true},
		{"zh_Hant", "zh-TW", true},
		{"zh-tw", "zh-TW", true},
		{"zh", "zh-CN", true},
		{"he", "iw", true},
		{"nb", "no", true},
		{"sr-latn", "sr", true},
		{"tlh", "", false},
		{"", "", false},
		{"not a code", "", false},
	}
	for _, tc := range cases {
		got, ok := googleCode(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestGoogleFactory(t *testing.T) {
	old := googleTranslate
	t.Cleanup(func() { googleTranslate = old })
	var gotFrom, gotTo string
	googleTranslate = func(text, from, to string) (string, error) {
		gotFrom, gotTo = from, to
		return "Nom", nil
	}

	factory, err := NewFactory(DefaultProviders()[ProviderGoogle], zerolog.Nop())
	require.NoError(t, err)

	_, err = NewTranslator("tlh", factory)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	engine, err := factory("pt_BR")
	require.NoError(t, err)
	out, err := engine.Translate(context.Background(), "Name")
	require.NoError(t, err)
	assert.Equal(t, "Nom", out)
	assert.Equal(t, "auto", gotFrom)
	assert.Equal(t, "pt", gotTo)
}

func TestRun(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeCatalog(t, first, "fr", frCatalog)
	writeCatalog(t, second, "fr", frCatalog)
	writeCatalog(t, first, "de", frCatalog)

	var calls []string
	var mu sync.Mutex
	engine := upper(&calls, &mu)
	factory := func(lang string) (Engine, error) {
		if lang == "xx" {
			return nil, ErrUnsupportedLanguage
		}
		return engine, nil
	}

	var progressMu sync.Mutex
	progressed := 0
	rep := Run(context.Background(), []string{"fr", "xx", "de"}, []string{first, second}, Options{
		Factory:     factory,
		Concurrency: 2,
		Logger:      zerolog.Nop(),
		OnProgress: func(Progress) {
			progressMu.Lock()
			progressed++
			progressMu.Unlock()
		},
	})

	require.Len(t, rep.Results, 5)
	assert.Equal(t, Result{Lang: "fr", Root: first, Translated: 3}, rep.Results[0])
	assert.Equal(t, Result{Lang: "fr", Root: second, Translated: 3}, rep.Results[1])
	assert.Equal(t, "xx", rep.Results[2].Lang)
	assert.ErrorIs(t, rep.Results[2].Err, ErrUnsupportedLanguage)
	assert.Equal(t, Result{Lang: "de", Root: first, Translated: 3}, rep.Results[3])
	assert.Equal(t, Result{Lang: "de", Root: second, Skipped: true}, rep.Results[4])

	assert.Equal(t, 9, rep.Translated())
	assert.Equal(t, 12, progressed)
	err := rep.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestRunRecordsCatalogFailures(t *testing.T) {
	root := t.TempDir()
	writeCatalog(t, root, "fr", frCatalog)
	writeCatalog(t, root, "it", frCatalog)

	boom := errors.New("provider down")
	factory := func(lang string) (Engine, error) {
		return EngineFunc(func(_ context.Context, text string) (string, error) {
			if lang == "fr" {
				return "", boom
			}
			return text, nil
		}), nil
	}

	rep := Run(context.Background(), []string{"fr", "it"}, []string{root}, Options{Factory: factory})
	require.Len(t, rep.Results, 2)
	assert.ErrorIs(t, rep.Results[0].Err, boom)
	assert.Contains(t, rep.Results[0].Err.Error(), catalog.Path(root, "fr"))
	assert.NoError(t, rep.Results[1].Err)
	assert.Equal(t, 3, rep.Results[1].Translated)
}

func TestRunEmpty(t *testing.T) {
	rep := Run(context.Background(), nil, []string{t.TempDir()}, Options{Factory: staticFactory(nil)})
	assert.NoError(t, rep.Err())
	assert.Empty(t, rep.Results)
}

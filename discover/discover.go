// Package discover finds the Python files of a Django app that are worth
// rewriting, either by walking the app directory or by asking Django which
// modules define the app's models.
package discover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/minios-linux/gettextify/extract"
	"github.com/minios-linux/gettextify/pyast"
)

// DefaultExclude lists gitignore-style patterns for files that never hold
// declarations to translate.
var DefaultExclude = []string{
	"migrations/",
	"tests/",
	"tests.py",
	"test_*.py",
	"*_test.py",
	"conftest.py",
	"__init__.py",
	"apps.py",
	"urls.py",
	"settings.py",
	"wsgi.py",
	"asgi.py",
	"manage.py",
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"static":        {},
	"templates":     {},
	"locale":        {},
}

// ErrAppNotFound is returned when an app has no directory under the root.
var ErrAppNotFound = errors.New("app directory not found")

// AppFiles returns the *.py files of app (a dotted or slash-separated
// label) under root, sorted, as paths joined to root. Files matching exclude
// or the project's .gitignore are left out.
func AppFiles(root, app string, exclude []string) ([]string, error) {
	dir := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(app, ".", "/")))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", app, ErrAppNotFound)
	}

	ex := ignore.CompileIgnoreLines(exclude...)
	gi := loadGitignore(root)

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if ex.MatchesPath(rel+"/") || (gi != nil && gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || filepath.Ext(name) != ".py" {
			return nil
		}
		if ex.MatchesPath(rel) || (gi != nil && gi.MatchesPath(rel)) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// ModelFiles maps dotted module names ("shop.models.product") to source
// files under root ("shop/models/product.py"). Modules without a dot are
// skipped, duplicates are dropped and the result is sorted.
func ModelFiles(root string, modules []string) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, mod := range modules {
		mod = strings.TrimSpace(mod)
		if !strings.Contains(mod, ".") {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(mod, ".", "/"))+".py")
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// modelsScript prints the defining module of every model registered for an
// app label, abstract parents included.
const modelsScript = `from django.apps import apps
from django.db.models import Model
label = LABEL
apps.get_app_config(label)
seen, gen = set(), {Model}
while gen:
    gen = {s for c in gen for s in c.__subclasses__()}
    for c in gen:
        if c._meta.app_label == label:
            seen.add(c.__module__)
print("\n".join(sorted(seen)))
`

// ModelModules asks Django, through manage.py, which modules define the
// models of app.
func ModelModules(ctx context.Context, root, python, app string) ([]string, error) {
	if python == "" {
		python = "python"
	}
	script := strings.Replace(modelsScript, "LABEL", pyast.Quote(app), 1)
	out, err := extract.Output(ctx, root, []string{python, "manage.py", "shell", "-c", script})
	if err != nil {
		return nil, fmt.Errorf("listing models of %s: %w", app, err)
	}
	var mods []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			mods = append(mods, line)
		}
	}
	return mods, nil
}

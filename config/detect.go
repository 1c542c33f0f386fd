package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/minios-linux/gettextify/catalog"
)

// isLangCode checks if a directory name looks like a Django locale
// (en, ru, pt_BR, zh_Hans, sr_Latn, ast).
func isLangCode(s string) bool {
	lower := func(b byte) bool { return b >= 'a' && b <= 'z' }
	upper := func(b byte) bool { return b >= 'A' && b <= 'Z' }

	n := 0
	for n < len(s) && lower(s[n]) {
		n++
	}
	if n < 2 || n > 3 {
		return false
	}
	if n == len(s) {
		return true
	}
	if s[n] != '_' {
		return false
	}
	rest := s[n+1:]
	switch len(rest) {
	case 2:
		return upper(rest[0]) && upper(rest[1])
	case 4:
		return upper(rest[0]) && lower(rest[1]) && lower(rest[2]) && lower(rest[3])
	}
	return false
}

// DetectLanguages finds languages that have a catalog
// (<root>/<lang>/LC_MESSAGES/django.po) under any of the roots. The result
// is sorted and deduplicated.
func DetectLanguages(roots []string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			lang := entry.Name()
			if !entry.IsDir() || !isLangCode(lang) || seen[lang] {
				continue
			}
			if _, err := os.Stat(catalog.Path(root, lang)); err != nil {
				continue
			}
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FindRoot walks up from dir to the first directory holding manage.py or a
// .gettextify.yaml and returns it, or dir itself when there is none.
func FindRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	for cur := abs; ; {
		if fileExists(filepath.Join(cur, "manage.py")) || fileExists(filepath.Join(cur, FileName)) {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		cur = parent
	}
}

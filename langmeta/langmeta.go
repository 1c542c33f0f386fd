// Package langmeta resolves Django language codes (pt_BR, zh_Hans, sr-latn)
// to display metadata: native and English names plus an emoji flag.
package langmeta

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Code    string
	Name    string // native name, e.g. "Français"
	English string // e.g. "French"
	Flag    string
}

// flagRegions overrides the likely region for languages whose flag would
// otherwise be surprising.
var flagRegions = map[string]string{
	"en": "US",
	"ar": "SA",
	"ca": "ES",
	"eu": "ES",
	"gl": "ES",
	"cy": "GB",
	"eo": "",
	"la": "",
}

// Canonical turns a Django or POSIX code into BCP 47 form: separators
// become "-", the language is lower-cased, a two-letter region upper-cased
// and a four-letter script title-cased.
func Canonical(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		switch len(parts[i]) {
		case 2:
			parts[i] = strings.ToUpper(parts[i])
		case 4:
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		}
	}
	return strings.Join(parts, "-")
}

// Parse parses a Django language code.
func Parse(lang string) (language.Tag, error) {
	return language.Parse(Canonical(lang))
}

// Resolve returns best-effort metadata for a language code. Unknown codes
// come back with the code as their name and no flag.
func Resolve(lang string) Meta {
	code := Canonical(lang)
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return Meta{Code: lang, Name: lang, English: lang}
	}

	m := Meta{Code: code, Flag: flag(tag)}
	if name := display.Self.Name(tag); name != "" {
		m.Name = capitalize(name)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		m.English = name
	}
	if m.Name == "" {
		m.Name = m.English
	}
	if m.Name == "" {
		m.Name, m.English = lang, lang
	}
	return m
}

func flag(tag language.Tag) string {
	region, conf := tag.Region()
	code := region.String()
	if conf != language.Exact {
		base, _ := tag.Base()
		if r, ok := flagRegions[base.String()]; ok {
			code = r
		}
	}
	if len(code) != 2 || code == "ZZ" {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

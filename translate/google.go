package translate

import (
	"context"
	"strings"

	"github.com/bregydoc/gtranslate"
	"golang.org/x/text/language"
)

// googleLanguages lists the target codes the free Google Translate endpoint
// accepts, keyed by lower-case code.
var googleLanguages = func() map[string]string {
	codes := []string{
		"af", "ak", "am", "ar", "as", "ay", "az", "be", "bg", "bho", "bm", "bn",
		"bs", "ca", "ceb", "ckb", "co", "cs", "cy", "da", "de", "doi", "dv", "ee",
		"el", "en", "eo", "es", "et", "eu", "fa", "fi", "fr", "fy", "ga", "gd",
		"gl", "gn", "gom", "gu", "ha", "haw", "hi", "hmn", "hr", "ht", "hu", "hy",
		"id", "ig", "ilo", "is", "it", "iw", "ja", "jw", "ka", "kk", "km", "kn",
		"ko", "kri", "ku", "ky", "la", "lb", "lg", "ln", "lo", "lt", "lus", "lv",
		"mai", "mg", "mi", "mk", "ml", "mn", "mni-Mtei", "mr", "ms", "mt", "my",
		"ne", "nl", "no", "nso", "ny", "om", "or", "pa", "pl", "ps", "pt", "qu",
		"ro", "ru", "rw", "sa", "sd", "si", "sk", "sl", "sm", "sn", "so", "sq",
		"sr", "st", "su", "sv", "sw", "ta", "te", "tg", "th", "ti", "tk", "tl",
		"tr", "ts", "tt", "ug", "uk", "ur", "uz", "vi", "xh", "yi", "yo",
		"zh-CN", "zh-TW", "zu",
	}
	m := make(map[string]string, len(codes))
	for _, c := range codes {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// Old ISO codes Google still expects.
var googleAliases = map[string]string{
	"he":  "iw",
	"jv":  "jw",
	"nb":  "no",
	"nn":  "no",
	"fil": "tl",
}

// googleCode maps a Django language code (pt_BR, zh_Hans, sr-latn) to the
// code Google Translate expects.
func googleCode(lang string) (string, bool) {
	norm := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if norm == "" {
		return "", false
	}
	if c, ok := googleLanguages[strings.ToLower(norm)]; ok {
		return c, true
	}

	tag, err := language.Parse(norm)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	code := base.String()

	if code == "zh" {
		script, _ := tag.Script()
		region, _ := tag.Region()
		switch {
		case script.String() == "Hant", region.String() == "TW", region.String() == "HK", region.String() == "MO":
			return "zh-TW", true
		default:
			return "zh-CN", true
		}
	}
	if alias, ok := googleAliases[code]; ok {
		code = alias
	}
	c, ok := googleLanguages[code]
	return c, ok
}

// googleTranslate is the network call; tests replace it.
var googleTranslate = func(text, from, to string) (string, error) {
	return gtranslate.TranslateWithParams(text, gtranslate.TranslationParams{
		From: from,
		To:   to,
	})
}

// googleEngine uses the free Google Translate endpoint with source
// language detection.
type googleEngine struct {
	to string
}

func (e *googleEngine) Translate(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return googleTranslate(text, "auto", e.to)
}

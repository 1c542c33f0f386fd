// Package catalog reads and writes Django gettext catalogs
// (<locale>/<lang>/LC_MESSAGES/django.po) at the text level.
//
// A catalog is handled as a sequence of blocks separated by a blank line.
// Joining the blocks back yields the original bytes; setters only touch the
// quoted payload of msgstr lines, so comments, references, flags and the
// layout of msgid lines survive a translation pass unchanged.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Domain is the catalog name Django uses for Python sources.
const Domain = "django"

// ErrNotFound is returned when a catalog file does not exist.
var ErrNotFound = errors.New("catalog not found")

// Separator splits blocks.
const Separator = "\n\n"

// Path returns the catalog of lang under a locale root.
func Path(root, lang string) string {
	return filepath.Join(root, lang, "LC_MESSAGES", Domain+".po")
}

// Catalog is one .po file split into blocks.
type Catalog struct {
	Path   string
	Blocks []*Block
}

// Load reads the catalog of lang under root.
func Load(root, lang string) (*Catalog, error) {
	return ReadFile(Path(root, lang))
}

// ReadFile reads a catalog from path.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Catalog{Path: path, Blocks: Split(string(data))}, nil
}

// Save writes the catalog back to its path.
func (c *Catalog) Save() error {
	info, err := os.Stat(c.Path)
	mode := fs.FileMode(0644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(c.Path, []byte(Join(c.Blocks)), mode); err != nil {
		return fmt.Errorf("writing %s: %w", c.Path, err)
	}
	return nil
}

// String renders the catalog text.
func (c *Catalog) String() string { return Join(c.Blocks) }

// Stats holds translation counters of a catalog.
type Stats struct {
	Total        int
	Translated   int
	Fuzzy        int
	Untranslated int
}

// Percent returns the translated share, 0..100.
func (s Stats) Percent() int {
	if s.Total == 0 {
		return 100
	}
	return s.Translated * 100 / s.Total
}

// Stats counts message blocks; the header and obsolete blocks are ignored.
func (c *Catalog) Stats() Stats {
	var st Stats
	for _, b := range c.Blocks {
		if !b.IsMessage() {
			continue
		}
		st.Total++
		switch {
		case b.IsFuzzy():
			st.Fuzzy++
		case b.Translated():
			st.Translated++
		default:
			st.Untranslated++
		}
	}
	return st
}

// Split cuts catalog text into blocks. Empty blocks are kept so that Join
// restores the input exactly.
func Split(text string) []*Block {
	parts := strings.Split(text, Separator)
	blocks := make([]*Block, len(parts))
	for i, p := range parts {
		blocks[i] = &Block{Lines: strings.Split(p, "\n")}
	}
	return blocks
}

// Join is the inverse of Split.
func Join(blocks []*Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.String()
	}
	return strings.Join(parts, Separator)
}

// Block is one catalog entry (or any other text between blank lines).
type Block struct {
	Lines []string
}

// field is a keyword line plus its continuation lines.
type field struct {
	key   string // msgctxt, msgid, msgid_plural, msgstr, msgstr[N]
	first int
	last  int
	value string
}

func (b *Block) String() string { return strings.Join(b.Lines, "\n") }

// fields parses the keyword lines of the block. Obsolete ("#~") lines are
// comments here.
func (b *Block) fields() []field {
	var out []field
	for i, line := range b.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, `"`) && len(out) > 0 && out[len(out)-1].last == i-1 {
			f := &out[len(out)-1]
			f.last = i
			f.value += unquote(trimmed)
			continue
		}
		key, rest, ok := strings.Cut(trimmed, " ")
		if !ok || !isKeyword(key) {
			continue
		}
		out = append(out, field{key: key, first: i, last: i, value: unquote(strings.TrimSpace(rest))})
	}
	return out
}

func isKeyword(key string) bool {
	switch key {
	case "msgctxt", "msgid", "msgid_plural", "msgstr":
		return true
	}
	if strings.HasPrefix(key, "msgstr[") && strings.HasSuffix(key, "]") {
		_, err := strconv.Atoi(key[len("msgstr[") : len(key)-1])
		return err == nil
	}
	return false
}

func (b *Block) field(key string) (field, bool) {
	for _, f := range b.fields() {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

func (b *Block) value(key string) string {
	f, _ := b.field(key)
	return f.value
}

// MsgID returns the unescaped msgid.
func (b *Block) MsgID() string { return b.value("msgid") }

// MsgIDPlural returns the unescaped msgid_plural, or "".
func (b *Block) MsgIDPlural() string { return b.value("msgid_plural") }

// MsgCtxt returns the unescaped msgctxt, or "".
func (b *Block) MsgCtxt() string { return b.value("msgctxt") }

// MsgStr returns the singular translation.
func (b *Block) MsgStr() string { return b.value("msgstr") }

// MsgStrN returns plural form n.
func (b *Block) MsgStrN(n int) string { return b.value(pluralKey(n)) }

// PluralForms returns the indexes of the msgstr[N] lines in order.
func (b *Block) PluralForms() []int {
	var out []int
	for _, f := range b.fields() {
		if !strings.HasPrefix(f.key, "msgstr[") {
			continue
		}
		n, _ := strconv.Atoi(f.key[len("msgstr[") : len(f.key)-1])
		out = append(out, n)
	}
	return out
}

func pluralKey(n int) string { return "msgstr[" + strconv.Itoa(n) + "]" }

// IsMessage reports whether the block carries a live, non-header message.
func (b *Block) IsMessage() bool {
	_, ok := b.field("msgid")
	return ok && !b.IsHeader()
}

// IsHeader reports whether the block is the catalog header (empty msgid
// without context).
func (b *Block) IsHeader() bool {
	f, ok := b.field("msgid")
	if !ok || f.value != "" {
		return false
	}
	_, hasCtx := b.field("msgctxt")
	return !hasCtx
}

// IsObsolete reports whether the block only holds "#~" entries.
func (b *Block) IsObsolete() bool {
	if _, ok := b.field("msgid"); ok {
		return false
	}
	for _, line := range b.Lines {
		if strings.HasPrefix(line, "#~") {
			return true
		}
	}
	return false
}

// IsFuzzy reports whether a "#," flag line marks the block fuzzy.
func (b *Block) IsFuzzy() bool {
	for _, line := range b.Lines {
		if !strings.HasPrefix(line, "#,") {
			continue
		}
		for _, flag := range strings.Split(line[2:], ",") {
			if strings.TrimSpace(flag) == "fuzzy" {
				return true
			}
		}
	}
	return false
}

// IsPlural reports whether the block has a msgid_plural.
func (b *Block) IsPlural() bool {
	_, ok := b.field("msgid_plural")
	return ok
}

// Translated reports whether every msgstr of the block is non-empty.
func (b *Block) Translated() bool {
	if b.IsPlural() {
		forms := b.PluralForms()
		if len(forms) == 0 {
			return false
		}
		for _, n := range forms {
			if b.MsgStrN(n) == "" {
				return false
			}
		}
		return true
	}
	return b.MsgStr() != ""
}

// SetMsgStr replaces the singular translation. It reports false when the
// block has no msgstr line.
func (b *Block) SetMsgStr(text string) bool { return b.set("msgstr", text) }

// SetMsgStrN replaces plural form n.
func (b *Block) SetMsgStrN(n int, text string) bool { return b.set(pluralKey(n), text) }

// set rewrites the quoted payload of a msgstr line in place and drops its
// continuation lines. The indentation and keyword are kept as written.
func (b *Block) set(key, text string) bool {
	f, ok := b.field(key)
	if !ok {
		return false
	}
	line := b.Lines[f.first]
	q := strings.IndexByte(line, '"')
	if q < 0 {
		q = len(line)
	}
	lines := append([]string{}, b.Lines[:f.first]...)
	lines = append(lines, line[:q]+Quote(text))
	lines = append(lines, b.Lines[f.last+1:]...)
	b.Lines = lines
	return true
}

// Quote escapes s as a PO string.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return `"` + s + `"`
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var result strings.Builder
	result.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			result.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case '\\', '"':
			result.WriteByte(s[i])
		default:
			result.WriteByte('\\')
			result.WriteByte(s[i])
		}
	}
	return result.String()
}

package pyast

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DecodeString decodes a single Python string or bytes literal. It reports
// false for f-strings and for text that is not a string literal.
func DecodeString(src string) (string, ConstKind, bool) {
	i := strings.IndexAny(src, `"'`)
	if i < 0 || i > 3 {
		return "", 0, false
	}
	prefix := strings.ToLower(src[:i])
	if strings.Trim(prefix, "rub") != "" {
		return "", 0, false
	}
	kind := ConstString
	if strings.Contains(prefix, "b") {
		kind = ConstBytes
	}
	body := src[i:]
	q := body[:1]
	if strings.HasPrefix(body, q+q+q) && len(body) >= 6 {
		q = q + q + q
	}
	if len(body) < 2*len(q) || !strings.HasPrefix(body, q) || !strings.HasSuffix(body, q) {
		return "", 0, false
	}
	body = body[len(q) : len(body)-len(q)]
	if strings.Contains(prefix, "r") {
		return body, kind, true
	}
	return unescape(body, kind == ConstBytes), kind, true
}

func unescape(s string, bytesLit bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			i++
			continue
		}
		e := s[i+1]
		i += 2
		switch e {
		case '\n':
		case '\\', '\'', '"':
			sb.WriteByte(e)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i - 1
			for j < len(s) && j < i+2 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i-1:j], 8, 32)
			writeCode(&sb, rune(v), bytesLit)
			i = j
		case 'x':
			i = hexEscape(&sb, s, i, 2, bytesLit, `\x`)
		case 'u', 'U':
			if bytesLit {
				sb.WriteByte('\\')
				sb.WriteByte(e)
				break
			}
			n := 4
			if e == 'U' {
				n = 8
			}
			i = hexEscape(&sb, s, i, n, false, `\`+string(e))
		default:
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String()
}

func hexEscape(sb *strings.Builder, s string, i, n int, bytesLit bool, raw string) int {
	if i+n > len(s) {
		sb.WriteString(raw)
		return i
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		sb.WriteString(raw)
		return i
	}
	writeCode(sb, rune(v), bytesLit)
	return i + n
}

func writeCode(sb *strings.Builder, r rune, bytesLit bool) {
	if bytesLit && r < 0x100 {
		sb.WriteByte(byte(r))
		return
	}
	sb.WriteRune(r)
}

// Quote returns s as a double-quoted Python string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteString(`\x`)
			sb.WriteString(strconv.FormatUint(uint64(s[i])|0x100, 16)[1:])
			i++
			continue
		}
		i += size
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\x`)
				sb.WriteString(strconv.FormatUint(uint64(r)|0x100, 16)[1:])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Title mirrors Python's str.title: a cased letter is title-cased when it
// follows an uncased character and lower-cased otherwise.
func Title(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case !cased:
			sb.WriteRune(r)
		case prevCased:
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(unicode.ToTitle(r))
		}
		prevCased = cased
	}
	return sb.String()
}

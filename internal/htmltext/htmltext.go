// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package htmltext provides entity decoding, tag stripping, and text
// normalization for scraped HTML. The functions are pure and never fail.
package htmltext

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// namedEntities is the fixed table of named references DecodeEntities knows.
// Anything else passes through unchanged.
var namedEntities = map[string]string{
	"amp":    "&",
	"lt":     "<",
	"gt":     ">",
	"quot":   `"`,
	"apos":   "'",
	"nbsp":   "\u00a0",
	"ndash":  "–",
	"mdash":  "—",
	"lsquo":  "‘",
	"rsquo":  "’",
	"ldquo":  "“",
	"rdquo":  "”",
	"laquo":  "«",
	"raquo":  "»",
	"hellip": "…",
	"bull":   "•",
	"middot": "·",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"deg":    "°",
	"euro":   "€",
	"pound":  "£",
	"yen":    "¥",
	"cent":   "¢",
	"sect":   "§",
	"para":   "¶",
	"times":  "×",
	"divide": "÷",
	"frac12": "½",
	"frac14": "¼",
	"frac34": "¾",
	"iexcl":  "¡",
	"iquest": "¿",
	"agrave": "à",
	"aacute": "á",
	"acirc":  "â",
	"auml":   "ä",
	"ccedil": "ç",
	"egrave": "è",
	"eacute": "é",
	"ecirc":  "ê",
	"euml":   "ë",
	"iacute": "í",
	"iuml":   "ï",
	"ntilde": "ñ",
	"oacute": "ó",
	"ocirc":  "ô",
	"ouml":   "ö",
	"uacute": "ú",
	"ugrave": "ù",
	"uuml":   "ü",
	"szlig":  "ß",
	"Eacute": "É",
	"Auml":   "Ä",
	"Ouml":   "Ö",
	"Uuml":   "Ü",
}

// entityPattern matches one named, decimal, or hex character reference.
var entityPattern = regexp.MustCompile(`&(#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[a-zA-Z][a-zA-Z0-9]{1,31});`)

// DecodeEntities replaces known named entities and numeric character
// references. Unknown names and invalid code points are left as written.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityPattern.ReplaceAllStringFunc(s, func(ref string) string {
		body := ref[1 : len(ref)-1]
		if body[0] != '#' {
			if v, ok := namedEntities[body]; ok {
				return v
			}
			return ref
		}

		var (
			n   uint64
			err error
		)
		if body[1] == 'x' || body[1] == 'X' {
			n, err = strconv.ParseUint(body[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(body[1:], 10, 32)
		}
		if err != nil || n == 0 || !utf8.ValidRune(rune(n)) {
			return ref
		}
		return string(rune(n))
	})
}

// StripTags removes script and style blocks with their content, then every
// other tag, and collapses whitespace. A '<' that does not open a tag is
// kept as text.
func StripTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	consumed := 0

	for {
		tt := z.Next()
		if tt != html.ErrorToken {
			consumed += len(z.Raw())
		}
		switch tt {
		case html.ErrorToken:
			// A tag left open at the end of input is literal text.
			if skipDepth == 0 && consumed < len(s) {
				b.WriteString(s[consumed:])
			}
			return CollapseSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawBlock(name) {
				skipDepth++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawBlock(name) && skipDepth > 0 {
				skipDepth--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Raw())
			}
		}
	}
}

func isRawBlock(name []byte) bool {
	return bytes.EqualFold(name, []byte("script")) || bytes.EqualFold(name, []byte("style"))
}

// CollapseSpace replaces every run of Unicode whitespace with a single space
// and trims both ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// invisible reports zero-width characters and the byte-order mark.
func invisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
		return true
	}
	return false
}

func dropInvisible(s string) string {
	if strings.IndexFunc(s, invisible) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if invisible(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeText decodes entities, removes zero-width and BOM characters,
// applies NFC, collapses whitespace, and trims. Decoding repeats until the
// text stops changing, so NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	for {
		next := DecodeEntities(dropInvisible(s))
		if next == s {
			break
		}
		s = next
	}
	return CollapseSpace(norm.NFC.String(s))
}

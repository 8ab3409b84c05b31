package serializer

import "strings"

// EscapeTable maps a code point to the text written in its place.
type EscapeTable map[rune]string

// DefaultTextEscapes is the table for text content.
func DefaultTextEscapes() EscapeTable {
	return EscapeTable{
		'&':      "&amp;",
		'<':      "&lt;",
		'>':      "&gt;",
		'\u00A0': "&nbsp;",
	}
}

// DefaultAttrEscapes is the table for double-quoted attribute values.
func DefaultAttrEscapes() EscapeTable {
	return EscapeTable{
		'&':      "&amp;",
		'"':      "&quot;",
		'\u00A0': "&nbsp;",
	}
}

// Escape replaces every code point of s that has an entry in t.
func (t EscapeTable) Escape(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool {
		_, ok := t[r]
		return ok
	})
	if i < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	sb.WriteString(s[:i])
	for _, r := range s[i:] {
		if rep, ok := t[r]; ok {
			sb.WriteString(rep)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// escaper is implemented by formatters that expose their escape tables.
type escaper interface {
	Escapes() (text, attr EscapeTable)
}

func ampersands(f Formatter) (known, inText, inAttr bool) {
	e, ok := f.(escaper)
	if !ok {
		return false, false, false
	}
	text, attr := e.Escapes()
	_, inText = text['&']
	_, inAttr = attr['&']
	return true, inText, inAttr
}

// EscapesAmpersand reports whether f turns & into a reference. Formatters
// that do not expose their tables are assumed not to.
func EscapesAmpersand(f Formatter) bool {
	_, inText, inAttr := ampersands(f)
	return inText || inAttr
}

// KeepsAmpersand reports whether f exposes tables that write & as is in
// text or attribute values. Such output only parses back to the same
// text when references were left undecoded.
func KeepsAmpersand(f Formatter) bool {
	known, inText, inAttr := ampersands(f)
	return known && !(inText && inAttr)
}

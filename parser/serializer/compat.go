package serializer

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
)

// DefaultEmptyMarker is the class CompatFormatter puts on blank p, li and
// tr elements.
const DefaultEmptyMarker = "empty"

// CompatFormatter produces output for pipelines that decode references in
// a later pass. It leaves & alone and writes NBSP as a numeric reference,
// so it needs a parse with character references left undecoded. Blank p,
// li and tr elements get the EmptyMarker class.
type CompatFormatter struct {
	*HTMLFormatter
	// TextHook rewrites text outside raw text elements before it is escaped.
	TextHook    func(string) string
	EmptyMarker string
}

func NewCompatFormatter(scripting bool) *CompatFormatter {
	text := DefaultTextEscapes()
	delete(text, '&')
	text['\u00A0'] = "&#160;"
	attr := DefaultAttrEscapes()
	delete(attr, '&')
	attr['\u00A0'] = "&#160;"
	return &CompatFormatter{
		HTMLFormatter: &HTMLFormatter{TextEscapes: text, AttrEscapes: attr, Scripting: scripting},
		EmptyMarker:   DefaultEmptyMarker,
	}
}

func (f *CompatFormatter) Characters(parent *Node, text string) string {
	if f.rawText(parent) {
		return text
	}
	if f.TextHook != nil {
		text = f.TextHook(text)
	}
	return f.TextEscapes.Escape(text)
}

// Element marks blank p, li and tr elements with EmptyMarker.
func (f *CompatFormatter) Element(parent, n *Node) (string, string) {
	if f.EmptyMarker != "" && n.Namespace == dom.HTML && (n.Element == nil || !n.Element.Wrapper) && n.Blank() {
		switch n.Name {
		case "p", "li", "tr":
			marked := *n
			marked.Attrs = withClass(n.Attrs, f.EmptyMarker)
			return f.HTMLFormatter.Element(parent, &marked)
		}
	}
	return f.HTMLFormatter.Element(parent, n)
}

// withClass returns attrs with class added to the class attribute.
func withClass(attrs *dom.Attributes, class string) *dom.Attributes {
	cur, ok := attrs.Get("class")
	if ok {
		for _, c := range strings.Fields(cur) {
			if c == class {
				return attrs
			}
		}
	}
	out := dom.NewAttributes()
	for i := 0; i < attrs.Len(); i++ {
		attr := attrs.At(i)
		if attr.Name == "class" {
			out.Set("class", strings.TrimSpace(cur+" "+class))
			continue
		}
		out.Set(attr.Name, attr.Value)
	}
	if !ok {
		out.Set("class", class)
	}
	return out
}

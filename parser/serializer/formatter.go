package serializer

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
)

// Formatter renders the pieces of a document. parent is the node the piece
// is placed in; at the top level it is the fragment context, or an unnamed
// node for a whole document.
type Formatter interface {
	StartDocument(fragment *dom.Element)
	Doctype(dt *dom.Doctype) string
	Characters(parent *Node, text string) string
	Comment(parent *Node, text string) string
	// Element returns the markup written before and after the contents of
	// n, once they are final.
	Element(parent, n *Node) (start, end string)
}

// flow travels up in Node.Data.
type flow struct {
	// hasBlock is set when a descendant is a block element.
	hasBlock bool
	// plaintext is set when a descendant is a plaintext element, which
	// takes the rest of the input as text. No end tag may follow it.
	plaintext bool
}

func flowOf(n *Node) *flow {
	if d, ok := n.Data.(*flow); ok {
		return d
	}
	d := &flow{}
	n.Data = d
	return d
}

// HTMLFormatter writes HTML that parses back to the same tree.
type HTMLFormatter struct {
	TextEscapes EscapeTable
	AttrEscapes EscapeTable
	// Scripting makes noscript a raw text element.
	Scripting bool
}

func NewHTMLFormatter(scripting bool) *HTMLFormatter {
	return &HTMLFormatter{
		TextEscapes: DefaultTextEscapes(),
		AttrEscapes: DefaultAttrEscapes(),
		Scripting:   scripting,
	}
}

func (f *HTMLFormatter) Escapes() (text, attr EscapeTable) {
	return f.TextEscapes, f.AttrEscapes
}

func (f *HTMLFormatter) StartDocument(fragment *dom.Element) {}

func (f *HTMLFormatter) Doctype(dt *dom.Doctype) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE ")
	sb.WriteString(dt.Name)
	if dt.HasPublicID {
		sb.WriteString(` PUBLIC "`)
		sb.WriteString(dt.PublicID)
		sb.WriteByte('"')
	}
	if dt.HasSystemID {
		if !dt.HasPublicID {
			sb.WriteString(" SYSTEM")
		}
		sb.WriteString(` "`)
		sb.WriteString(dt.SystemID)
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}

// rawText reports whether text inside n is written as is.
func (f *HTMLFormatter) rawText(n *Node) bool {
	return n != nil && n.Namespace == dom.HTML && dom.IsRawText(n.Name, f.Scripting)
}

func (f *HTMLFormatter) Characters(parent *Node, text string) string {
	if f.rawText(parent) {
		return text
	}
	return f.TextEscapes.Escape(text)
}

func (f *HTMLFormatter) Comment(parent *Node, text string) string {
	return "<!--" + text + "-->"
}

// Element writes n as a tag pair. A paragraph wrapper becomes a p element
// only around inline content; otherwise just its contents are written.
func (f *HTMLFormatter) Element(parent, n *Node) (string, string) {
	d := flowOf(n)
	if d.plaintext {
		flowOf(parent).plaintext = true
	}
	if n.Element != nil && n.Element.Wrapper {
		return f.wrapper(parent, n, d)
	}
	if d.hasBlock || IsBlock(n.Namespace, n.Name) {
		flowOf(parent).hasBlock = true
	}
	return f.tags(parent, n, d)
}

func (f *HTMLFormatter) wrapper(parent, n *Node, d *flow) (string, string) {
	if d.hasBlock {
		flowOf(parent).hasBlock = true
		return "", ""
	}
	if n.Element.Unwrapped || n.Blank() {
		return "", ""
	}
	flowOf(parent).hasBlock = true
	return "<p>", "</p>"
}

func (f *HTMLFormatter) tags(parent, n *Node, d *flow) (string, string) {
	var sb strings.Builder
	sb.Grow(len(n.Name) + 2)
	sb.WriteByte('<')
	sb.WriteString(n.Name)
	for i := 0; i < n.Attrs.Len(); i++ {
		attr := n.Attrs.At(i)
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		sb.WriteString(`="`)
		sb.WriteString(f.AttrEscapes.Escape(attr.Value))
		sb.WriteByte('"')
	}
	if n.Namespace == dom.HTML {
		if n.Void && dom.IsVoid(n.Name) {
			sb.WriteByte('>')
			return sb.String(), ""
		}
	} else if n.Empty() {
		sb.WriteString("/>")
		return sb.String(), ""
	}
	sb.WriteByte('>')
	if n.Namespace == dom.HTML && n.LeadingNewline() {
		switch n.Name {
		case "pre", "textarea", "listing":
			sb.WriteByte('\n')
		}
	}
	if d.plaintext || (n.Namespace == dom.HTML && n.Name == "plaintext") {
		flowOf(parent).plaintext = true
		return sb.String(), ""
	}
	return sb.String(), "</" + n.Name + ">"
}

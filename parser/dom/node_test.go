package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderEvents(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	html := NewElement(1, HTML, "html", nil)
	body := NewElement(2, HTML, "body", AttributesFrom("class", "x"))
	table := NewElement(3, HTML, "table", nil)
	b.StartDocument(nil)
	b.Doctype(&Doctype{Name: "html"}, NoQuirks, 0)
	b.InsertElement(Root, nil, html, false, 0)
	b.InsertElement(Under, html, body, false, 0)
	b.InsertElement(Under, body, table, false, 0)
	b.Characters(Before, table, "a", 0, 1)
	b.Characters(Before, table, "b", 0, 1)
	b.Comment(Under, table, "c", 0)
	b.EndDocument(0)

	assert.Equal(t, strings.Join([]string{
		"#document",
		"| <!DOCTYPE html>",
		"| <html>",
		"|   <body>",
		`|     class="x"`,
		`|     "ab"`,
		"|     <table>",
		"|       <!-- c -->",
	}, "\n"), b.Document.String())
}

func TestBuilderMoves(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	div := NewElement(1, HTML, "div", nil)
	p := NewElement(2, HTML, "p", nil)
	i := NewElement(3, HTML, "i", nil)
	b.StartDocument(NewElement(0, HTML, "body", nil))
	b.InsertElement(Root, nil, div, false, 0)
	b.InsertElement(Under, div, p, false, 0)
	b.Characters(Under, p, "x", 0, 1)

	b.ReparentChildren(p, i, 0)
	b.InsertElement(Root, nil, p, false, 0)
	assert.Equal(t, strings.Join([]string{
		"#document-fragment",
		"| <div>",
		"| <p>",
		"|   <i>",
		`|     "x"`,
	}, "\n"), b.Document.String())

	b.RemoveNode(div, 0)
	assert.Equal(t, strings.Join([]string{
		"#document-fragment",
		"| <p>",
		"|   <i>",
		`|     "x"`,
	}, "\n"), b.Document.String())
}

func TestNodeStringForeignAndDoctype(t *testing.T) {
	t.Parallel()
	svg := &Node{Type: ElementNode, Element: NewElement(1, SVG, "svg", AttributesFrom("xlink:href", "#a").AdjustForeign())}
	svg.AppendChild(&Node{Type: ElementNode, Element: NewElement(2, MathML, "mi", nil)})
	assert.Equal(t, "| <svg svg>\n|   xlink href=\"#a\"\n|   <math mi>", svg.String())

	dt := &Node{Type: DocumentTypeNode, Doctype: &Doctype{Name: "html", PublicID: "p", HasPublicID: true}}
	assert.Equal(t, `| <!DOCTYPE html "p" "">`, dt.String())
}

func TestDeepTreeString(t *testing.T) {
	t.Parallel()
	root := &Node{Type: DocumentNode}
	cur := root
	for i := 0; i < 2000; i++ {
		n := &Node{Type: ElementNode, Element: NewElement(i, HTML, "b", nil)}
		cur.AppendChild(n)
		cur = n
	}
	out := root.String()
	assert.Equal(t, 2000, strings.Count(out, "<b>"))
}

func TestIsRawText(t *testing.T) {
	t.Parallel()
	assert.True(t, IsRawText("script", false))
	assert.True(t, IsRawText("noscript", true))
	assert.False(t, IsRawText("noscript", false))
	assert.False(t, IsRawText("title", true))
	assert.True(t, NewElement(1, HTML, "br", nil).IsVoid())
	assert.False(t, NewElement(1, SVG, "br", nil).IsVoid())
}

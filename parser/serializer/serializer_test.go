package serializer_test

import (
	"strings"
	"testing"

	"github.com/heathj/gotidy/parser/dom"
	"github.com/heathj/gotidy/parser/serializer"
	"github.com/stretchr/testify/assert"
)

type elements struct {
	next int
}

func (e *elements) html(name string, attrs ...string) *dom.Element {
	e.next++
	return dom.NewElement(e.next, dom.HTML, name, dom.AttributesFrom(attrs...))
}

func (e *elements) svg(name string) *dom.Element {
	e.next++
	return dom.NewElement(e.next, dom.SVG, name, nil)
}

func bodyFragment() *dom.Element {
	return dom.NewElement(0, dom.HTML, "body", nil)
}

func TestSerializerDocument(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	html, head, body := e.html("html"), e.html("head"), e.html("body")
	s.StartDocument(nil)
	s.Doctype(&dom.Doctype{Name: "html"}, dom.NoQuirks, 0)
	s.InsertElement(dom.Root, nil, html, false, 0)
	s.InsertElement(dom.Under, html, head, false, 0)
	s.EndTag(head, 0)
	s.InsertElement(dom.Under, html, body, false, 0)
	s.Characters(dom.Under, body, "a<b", 0, 3)
	assert.Equal(t, "", s.String())
	s.EndDocument(0)
	assert.Equal(t, "<!DOCTYPE html><html><head></head><body>a&lt;b</body></html>", s.String())
}

func TestSerializerFosterAndMoves(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	table, b, p := e.html("table"), e.html("b"), e.html("p")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, table, false, 0)
	s.Characters(dom.Before, table, "x", 0, 1)
	s.InsertElement(dom.Before, table, b, false, 0)
	s.Characters(dom.Under, b, "y", 0, 1)
	s.EndTag(b, 0)
	s.EndTag(table, 0)
	s.InsertElement(dom.Root, nil, p, false, 0)
	s.EndDocument(0)
	assert.Equal(t, "x<b>y</b><table></table><p></p>", s.String())
}

func TestSerializerAdoption(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	b, p := e.html("b"), e.html("p")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, b, false, 0)
	s.InsertElement(dom.Under, b, p, false, 0)
	s.Characters(dom.Under, p, "2", 0, 1)
	s.EndTag(b, 0)
	// p moves out of b; its children go into a clone of b.
	s.InsertElement(dom.Root, nil, p, false, 0)
	clone := b.Clone(99)
	s.ReparentChildren(p, clone, 0)
	s.EndTag(clone, 0)
	s.Characters(dom.Under, p, "3", 0, 1)
	s.EndTag(p, 0)
	s.EndDocument(0)
	assert.Equal(t, "<b></b><p><b>2</b>3</p>", s.String())
}

func TestSerializerRemoveAndMerge(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	outer, div := e.html("div", "a", "1"), e.html("div")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, outer, false, 0)
	s.InsertElement(dom.Under, outer, div, false, 0)
	s.Characters(dom.Under, div, "gone", 0, 4)
	s.RemoveNode(div, 0)
	added := dom.AttributesFrom("b", "2")
	outer.Attrs = outer.Attrs.Merge(added)
	s.MergeAttributes(outer, added.Records(), 0)
	s.EndDocument(0)
	assert.Equal(t, `<div a="1" b="2"></div>`, s.String())
}

func TestHTMLFormatterElements(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	br, pre, script, svg, path := e.html("br"), e.html("pre"), e.html("script"), e.svg("svg"), e.svg("path")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, br, true, 0)
	s.InsertElement(dom.Root, nil, pre, false, 0)
	s.Characters(dom.Under, pre, "\nx", 0, 2)
	s.EndTag(pre, 0)
	s.InsertElement(dom.Root, nil, script, false, 0)
	s.Characters(dom.Under, script, "a<b&&c", 0, 6)
	s.EndTag(script, 0)
	s.InsertElement(dom.Root, nil, svg, false, 0)
	s.InsertElement(dom.Under, svg, path, true, 0)
	s.Comment(dom.Root, nil, "c", 0)
	s.EndDocument(0)
	assert.Equal(t, "<br><pre>\n\nx</pre><script>a<b&&c</script><svg><path/></svg><!--c-->", s.String())
}

func TestHTMLFormatterDoctype(t *testing.T) {
	f := serializer.NewHTMLFormatter(false)
	cases := []struct {
		dt   dom.Doctype
		want string
	}{
		{dom.Doctype{Name: "html"}, "<!DOCTYPE html>"},
		{dom.Doctype{Name: "html", PublicID: "p", HasPublicID: true}, `<!DOCTYPE html PUBLIC "p">`},
		{dom.Doctype{Name: "html", SystemID: "s", HasSystemID: true}, `<!DOCTYPE html SYSTEM "s">`},
		{dom.Doctype{Name: "html", PublicID: "p", HasPublicID: true, SystemID: "s", HasSystemID: true}, `<!DOCTYPE html PUBLIC "p" "s">`},
	}
	for _, tt := range cases {
		dt := tt.dt
		assert.Equal(t, tt.want, f.Doctype(&dt))
	}
}

func TestEscapeTable(t *testing.T) {
	t.Parallel()
	text := serializer.DefaultTextEscapes()
	assert.Equal(t, "plain", text.Escape("plain"))
	assert.Equal(t, "a &amp; b &lt;c&gt;&nbsp;\"", text.Escape("a & b <c>\u00a0\""))

	attr := serializer.DefaultAttrEscapes()
	assert.Equal(t, "&quot;&amp;<>", attr.Escape("\"&<>"))
}

type bareFormatter struct {
	*serializer.HTMLFormatter
}

// Escapes hides the embedded tables.
func (bareFormatter) Escapes() {}

func TestEscapesAmpersand(t *testing.T) {
	t.Parallel()
	assert.True(t, serializer.EscapesAmpersand(serializer.NewHTMLFormatter(false)))
	assert.False(t, serializer.EscapesAmpersand(serializer.NewCompatFormatter(false)))
	assert.False(t, serializer.EscapesAmpersand(bareFormatter{serializer.NewHTMLFormatter(false)}))

	f := serializer.NewHTMLFormatter(false)
	delete(f.TextEscapes, '&')
	assert.True(t, serializer.EscapesAmpersand(f), "attribute table still escapes &")
}

func TestKeepsAmpersand(t *testing.T) {
	t.Parallel()
	assert.False(t, serializer.KeepsAmpersand(serializer.NewHTMLFormatter(false)))
	assert.True(t, serializer.KeepsAmpersand(serializer.NewCompatFormatter(false)))
	assert.False(t, serializer.KeepsAmpersand(bareFormatter{serializer.NewHTMLFormatter(false)}))

	f := serializer.NewHTMLFormatter(false)
	delete(f.AttrEscapes, '&')
	assert.True(t, serializer.KeepsAmpersand(f), "attribute values keep a bare &")
}

func TestCompatFormatter(t *testing.T) {
	t.Parallel()
	var e elements
	f := serializer.NewCompatFormatter(false)
	f.TextHook = strings.ToUpper
	s := serializer.New(f)
	p1, p2, li, style := e.html("p", "class", "a"), e.html("p", "class", "empty"), e.html("li"), e.html("style")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, p1, false, 0)
	s.Characters(dom.Under, p1, " ", 0, 1)
	s.EndTag(p1, 0)
	s.InsertElement(dom.Root, nil, p2, false, 0)
	s.EndTag(p2, 0)
	s.InsertElement(dom.Root, nil, li, false, 0)
	s.Characters(dom.Under, li, "x &amp; y\u00a0", 0, 1)
	s.EndTag(li, 0)
	s.InsertElement(dom.Root, nil, style, false, 0)
	s.Characters(dom.Under, style, "a{}", 0, 3)
	s.EndDocument(0)
	assert.Equal(t, `<p class="a empty"> </p><p class="empty"></p><li>X &AMP; Y&#160;</li><style>a{}</style>`, s.String())
}

func TestCompatFormatterWithoutMarker(t *testing.T) {
	t.Parallel()
	var e elements
	f := serializer.NewCompatFormatter(false)
	f.EmptyMarker = ""
	s := serializer.New(f)
	tr := e.html("tr")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, tr, false, 0)
	s.EndDocument(0)
	assert.Equal(t, "<tr></tr>", s.String())
}

func TestHTMLFormatterWrappers(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	w1, w2, w3 := e.html("p"), e.html("p"), e.html("p")
	w1.Wrapper, w2.Wrapper, w3.Wrapper = true, true, true
	w3.Unwrapped = true
	b, div, i := e.html("b"), e.html("div"), e.html("i")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, w1, false, 0)
	s.InsertElement(dom.Under, w1, b, false, 0)
	s.InsertElement(dom.Under, b, div, false, 0)
	s.Characters(dom.Under, div, "x", 0, 1)
	s.EndTag(div, 0)
	s.EndTag(b, 0)
	s.EndTag(w1, 0)
	s.InsertElement(dom.Root, nil, w2, false, 0)
	s.InsertElement(dom.Under, w2, i, false, 0)
	s.InsertElement(dom.Under, i, w3, false, 0)
	s.Characters(dom.Under, w3, "y", 0, 1)
	s.EndDocument(0)
	assert.Equal(t, "<b><div>x</div></b><p><i>y</i></p>", s.String())
}

func TestHTMLFormatterPlaintext(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	div, plaintext := e.html("div"), e.html("plaintext")
	s.StartDocument(bodyFragment())
	s.InsertElement(dom.Root, nil, div, false, 0)
	s.InsertElement(dom.Under, div, plaintext, false, 0)
	s.Characters(dom.Under, plaintext, "a</div>&", 0, 8)
	s.EndDocument(0)
	assert.Equal(t, "<div><plaintext>a</div>&", s.String())
}

func TestSerializerDeepNesting(t *testing.T) {
	t.Parallel()
	var e elements
	s := serializer.New(serializer.NewHTMLFormatter(false))
	s.StartDocument(bodyFragment())
	const depth = 50000
	var parent *dom.Element
	for k := 0; k < depth; k++ {
		el := e.html("div")
		if parent == nil {
			s.InsertElement(dom.Root, nil, el, false, 0)
		} else {
			s.InsertElement(dom.Under, parent, el, false, 0)
		}
		parent = el
	}
	s.Characters(dom.Under, parent, "x", 0, 1)
	s.EndDocument(0)
	assert.Equal(t, strings.Repeat("<div>", depth)+"x"+strings.Repeat("</div>", depth), s.String())
}

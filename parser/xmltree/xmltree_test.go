package xmltree_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/heathj/gotidy/parser"
	"github.com/heathj/gotidy/parser/dom"
	"github.com/heathj/gotidy/parser/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, in string, opts ...parser.Option) *xmltree.Handler {
	t.Helper()
	p, err := parser.NewParser(in, opts...)
	require.NoError(t, err)
	h := xmltree.New()
	require.NoError(t, p.Parse(h))
	return h
}

func tags(els []*etree.Element) []string {
	out := make([]string, 0, len(els))
	for _, e := range els {
		out = append(out, e.Tag)
	}
	return out
}

func TestDocument(t *testing.T) {
	t.Parallel()
	h := build(t, "<!DOCTYPE html><html lang=en><title>t</title>x")
	doc := h.Document()

	html := doc.SelectElement("html")
	require.NotNil(t, html)
	assert.Equal(t, dom.HTMLNamespaceURI, html.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "en", html.SelectAttrValue("lang", ""))
	assert.Equal(t, []string{"head", "body"}, tags(html.ChildElements()))

	head := html.SelectElement("head")
	assert.Nil(t, head.SelectAttr("xmlns"), "namespace is inherited")
	assert.Equal(t, "t", head.SelectElement("title").Text())
	assert.Equal(t, "x", html.SelectElement("body").Text())

	out, err := h.String()
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
}

func TestForeignNamespaces(t *testing.T) {
	t.Parallel()
	h := build(t, `<svg xlink:href="#a"><path/><foreignObject><p>x</p></foreignObject></svg>`)
	body := h.Document().FindElement("//body")
	require.NotNil(t, body)

	svg := body.SelectElement("svg")
	require.NotNil(t, svg)
	assert.Equal(t, dom.SVGNamespaceURI, svg.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "#a", svg.SelectAttrValue("xlink:href", ""))
	assert.Equal(t, dom.XLinkNamespaceURI, svg.SelectAttrValue("xmlns:xlink", ""))
	assert.Equal(t, []string{"path", "foreignObject"}, tags(svg.ChildElements()))

	p := svg.SelectElement("foreignObject").SelectElement("p")
	require.NotNil(t, p)
	assert.Equal(t, dom.HTMLNamespaceURI, p.SelectAttrValue("xmlns", ""))
}

func TestTreeRepairs(t *testing.T) {
	t.Parallel()
	h := build(t, "<table><b>X</b></table><i>1<p>2</i>3")
	body := h.Document().FindElement("//body")
	require.NotNil(t, body)
	assert.Equal(t, []string{"b", "table", "i", "p"}, tags(body.ChildElements()))

	p := body.SelectElement("p")
	require.Len(t, p.ChildElements(), 1)
	assert.Equal(t, "i", p.ChildElements()[0].Tag)
	assert.Equal(t, "2", p.ChildElements()[0].Text())
	assert.Equal(t, "3", p.ChildElements()[0].Tail())
}

func TestMergedAttributes(t *testing.T) {
	t.Parallel()
	h := build(t, "<body a=1><body a=2 b=3>")
	body := h.Document().FindElement("//body")
	require.NotNil(t, body)
	assert.Equal(t, "1", body.SelectAttrValue("a", ""))
	assert.Equal(t, "3", body.SelectAttrValue("b", ""))
}

func TestFragment(t *testing.T) {
	t.Parallel()
	h := build(t, "<path/><div>x</div>", parser.WithFragmentContext("svg", "svg"))
	roots := h.Document().ChildElements()
	require.Len(t, roots, 2)
	assert.Equal(t, "path", roots[0].Tag)
	assert.Nil(t, roots[0].SelectAttr("xmlns"))
	assert.Equal(t, "div", roots[1].Tag)
	assert.Equal(t, dom.HTMLNamespaceURI, roots[1].SelectAttrValue("xmlns", ""))
}

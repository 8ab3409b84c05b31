package parser

import (
	"github.com/heathj/gotidy/parser/dom"
	a "golang.org/x/net/html/atom"
)

// initialTokenizerState is the content model a fragment starts in, decided
// by its context element.
func initialTokenizerState(fc *fragmentContext, scripting bool) tokenizerState {
	if fc.namespace != dom.HTML {
		return dataState
	}
	switch fc.name {
	case "title", "textarea":
		return rcDataState
	case "style", "xmp", "iframe", "noembed", "noframes":
		return rawTextState
	case "script":
		return scriptDataState
	case "noscript":
		if scripting {
			return rawTextState
		}
	case "plaintext":
		return plaintextState
	}
	return dataState
}

// startFragment sets up the HTML fragment parsing algorithm. The context
// element is never emitted; the root html element it implies is open but
// its children are reported at the document root.
//
// https://html.spec.whatwg.org/multipage/parsing.html#parsing-html-fragments
func (c *HTMLTreeConstructor) startFragment(fc *fragmentContext) {
	ctx := c.newElement(fc.namespace, fc.name, nil)
	c.context = ctx
	c.pin(ctx)
	c.handler.StartDocument(c.el(ctx))

	c.root = c.newElement(dom.HTML, "html", nil)
	c.push(c.root)
	if c.el(ctx).Is(a.Template) {
		c.pushTemplateMode(inTemplate)
	}
	c.setTokenizerState(initialTokenizerState(fc, c.config.scripting))
	c.resetInsertionMode()
	if c.el(ctx).Is(a.Form) {
		c.setFormPointer(ctx)
	}
}

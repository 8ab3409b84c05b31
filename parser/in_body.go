package parser

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
	a "golang.org/x/net/html/atom"
)

// stripNulls removes U+0000 from a character token, reporting each run.
func (c *HTMLTreeConstructor) stripNulls(t *Token) {
	if strings.IndexByte(t.Data, 0) < 0 {
		return
	}
	c.parseError(unexpectedNullInTree, t.Pos, "")
	t.Data = strings.ReplaceAll(t.Data, "\x00", "")
}

// unclosedAtBodyEnd reports open elements that may not be left unclosed
// at the end of the body.
func (c *HTMLTreeConstructor) unclosedAtBodyEnd() bool {
	for _, i := range c.stackOfOpenElements {
		el := c.el(i)
		if el.Namespace != dom.HTML {
			return true
		}
		switch el.Atom {
		case a.Dd, a.Dt, a.Li, a.Optgroup, a.Option, a.P, a.Rb, a.Rp, a.Rt, a.Rtc,
			a.Tbody, a.Td, a.Tfoot, a.Th, a.Thead, a.Tr, a.Body, a.Html:
		default:
			return true
		}
	}
	return false
}

func isHiddenInput(t *Token) bool {
	v, ok := t.Attributes.Get("type")
	return ok && strings.EqualFold(v, "hidden")
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *HTMLTreeConstructor) inBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		c.stripNulls(t)
		if t.Data == "" {
			return false, c.insertionMode, noError
		}
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertCharacterToken(t)
		if !isWhitespace(t.Data) {
			c.framesetOK = false
		}
	case commentToken:
		c.insertComment(t)
	case docTypeToken:
		return false, c.insertionMode, unexpectedDoctype
	case startTagToken:
		return c.inBodyStartTag(t)
	case endTagToken:
		return c.inBodyEndTag(t)
	case endOfFileToken:
		if len(c.templateModes) > 0 {
			return c.useRulesFor(t, inTemplate)
		}
		if c.unclosedAtBodyEnd() {
			return false, c.insertionMode, eofInElement
		}
	}
	return false, c.insertionMode, noError
}

func (c *HTMLTreeConstructor) inBodyStartTag(t *Token) (bool, insertionMode, parseError) {
	switch t.TagName {
	case "html":
		if !c.templateOnStack() {
			c.mergeAttributes(c.stackOfOpenElements[0], t)
		}
		return false, c.insertionMode, unexpectedStartTag
	case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
		return c.useRulesFor(t, inHead)
	case "body":
		if len(c.stackOfOpenElements) < 2 || !c.el(c.stackOfOpenElements[1]).Is(a.Body) || c.templateOnStack() {
			return false, c.insertionMode, unexpectedStartTag
		}
		c.framesetOK = false
		c.mergeAttributes(c.stackOfOpenElements[1], t)
		return false, c.insertionMode, unexpectedStartTag
	case "frameset":
		if len(c.stackOfOpenElements) < 2 || !c.el(c.stackOfOpenElements[1]).Is(a.Body) || !c.framesetOK {
			return false, c.insertionMode, unexpectedStartTag
		}
		c.flushText()
		c.handler.RemoveNode(c.el(c.stackOfOpenElements[1]), t.Pos)
		for len(c.stackOfOpenElements) > 1 {
			c.pop(t.Pos)
		}
		c.insertHTMLElement(t)
		return false, inFrameset, unexpectedStartTag
	case "address", "article", "aside", "blockquote", "center", "details", "dialog", "dir", "div", "dl",
		"fieldset", "figcaption", "figure", "footer", "header", "hgroup", "main", "menu", "nav", "ol",
		"p", "search", "section", "summary", "ul":
		c.closePInButtonScope(t.Pos)
		c.insertHTMLElement(t)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		c.closePInButtonScope(t.Pos)
		err := noError
		if c.currentIs(a.H1, a.H2, a.H3, a.H4, a.H5, a.H6) {
			err = misnestedTag
			c.pop(t.Pos)
		}
		c.insertHTMLElement(t)
		return false, c.insertionMode, err
	case "pre", "listing":
		c.closePInButtonScope(t.Pos)
		c.insertHTMLElement(t)
		c.skipNewline = true
		c.framesetOK = false
	case "form":
		template := c.templateOnStack()
		if c.formElementPointer != none && !template {
			return false, c.insertionMode, unexpectedStartTag
		}
		c.closePInButtonScope(t.Pos)
		i := c.insertHTMLElement(t)
		if !template {
			c.setFormPointer(i)
		}
	case "li":
		c.framesetOK = false
		err := c.closeListItem(t.Pos, func(el *dom.Element) bool { return el.Is(a.Li) })
		c.closePInButtonScope(t.Pos)
		c.insertHTMLElement(t)
		return false, c.insertionMode, err
	case "dd", "dt":
		c.framesetOK = false
		err := c.closeListItem(t.Pos, func(el *dom.Element) bool { return el.Is(a.Dd) || el.Is(a.Dt) })
		c.closePInButtonScope(t.Pos)
		c.insertHTMLElement(t)
		return false, c.insertionMode, err
	case "plaintext":
		c.closePInButtonScope(t.Pos)
		c.insertHTMLElement(t)
		c.setTokenizerState(plaintextState)
	case "button":
		err := noError
		if c.inScope(defaultScope, a.Button) {
			err = unexpectedStartTag
			c.generateImpliedEndTags(t.Pos)
			c.popUntil(t.Pos, a.Button)
		}
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertHTMLElement(t)
		c.framesetOK = false
		return false, c.insertionMode, err
	case "a":
		err := noError
		if k := c.formattingElementAfterLastMarker("a"); k >= 0 {
			err = misnestedTag
			old := c.activeFormattingElements[k]
			c.pin(old)
			c.adoptionAgency(t)
			if k := c.indexInActiveFormattingElements(old); k >= 0 {
				c.removeActiveFormattingElement(k)
			}
			if k := c.stackIndex(old); k >= 0 {
				c.removeFromStack(k)
				c.emitEndTag(old, t.Pos)
			}
			c.unpin(old)
		}
		c.reconstructActiveFormattingElements(t.Pos)
		c.pushActiveFormattingElement(c.insertHTMLElement(t))
		return false, c.insertionMode, err
	case "b", "big", "code", "em", "font", "i", "s", "small", "strike", "strong", "tt", "u":
		c.reconstructActiveFormattingElements(t.Pos)
		c.pushActiveFormattingElement(c.insertHTMLElement(t))
	case "nobr":
		err := noError
		c.reconstructActiveFormattingElements(t.Pos)
		if c.inScope(defaultScope, a.Nobr) {
			err = misnestedTag
			c.adoptionAgency(t)
			c.reconstructActiveFormattingElements(t.Pos)
		}
		c.pushActiveFormattingElement(c.insertHTMLElement(t))
		return false, c.insertionMode, err
	case "applet", "marquee", "object":
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertHTMLElement(t)
		c.insertMarker()
		c.framesetOK = false
	case "table":
		if c.quirksMode != dom.Quirks {
			c.closePInButtonScope(t.Pos)
		}
		c.insertHTMLElement(t)
		c.framesetOK = false
		return false, inTable, noError
	case "area", "br", "embed", "img", "keygen", "wbr":
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertVoidHTMLElement(t)
		c.framesetOK = false
	case "input":
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertVoidHTMLElement(t)
		if !isHiddenInput(t) {
			c.framesetOK = false
		}
	case "param", "source", "track":
		c.insertVoidHTMLElement(t)
	case "hr":
		c.closePInButtonScope(t.Pos)
		c.insertVoidHTMLElement(t)
		c.framesetOK = false
	case "image":
		t.TagName, t.Atom = "img", a.Img
		return true, c.insertionMode, unexpectedStartTag
	case "textarea":
		c.insertHTMLElement(t)
		c.skipNewline = true
		c.setTokenizerState(rcDataState)
		c.originalInsertionMode = c.insertionMode
		c.framesetOK = false
		return false, text, noError
	case "xmp":
		c.closePInButtonScope(t.Pos)
		c.reconstructActiveFormattingElements(t.Pos)
		c.framesetOK = false
		return false, c.genericRawTextElement(t), noError
	case "iframe":
		c.framesetOK = false
		return false, c.genericRawTextElement(t), noError
	case "noembed":
		return false, c.genericRawTextElement(t), noError
	case "noscript":
		if c.config.scripting {
			return false, c.genericRawTextElement(t), noError
		}
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertHTMLElement(t)
	case "select":
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertHTMLElement(t)
		c.framesetOK = false
		switch c.insertionMode {
		case inTable, inCaption, inTableBody, inRow, inCell:
			return false, inSelectInTable, noError
		}
		return false, inSelect, noError
	case "optgroup", "option":
		if c.currentIs(a.Option) {
			c.pop(t.Pos)
		}
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertHTMLElement(t)
	case "rb", "rtc":
		err := noError
		if c.inScope(defaultScope, a.Ruby) {
			c.generateImpliedEndTags(t.Pos)
			if !c.currentIs(a.Ruby) {
				err = misnestedTag
			}
		}
		c.insertHTMLElement(t)
		return false, c.insertionMode, err
	case "rp", "rt":
		err := noError
		if c.inScope(defaultScope, a.Ruby) {
			c.generateImpliedEndTags(t.Pos, a.Rtc)
			if !c.currentIs(a.Ruby, a.Rtc) {
				err = misnestedTag
			}
		}
		c.insertHTMLElement(t)
		return false, c.insertionMode, err
	case "math":
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertForeignElement(t, dom.MathML, t.TagName, adjustMathMLAttributes(t.Attributes).AdjustForeign())
	case "svg":
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertForeignElement(t, dom.SVG, t.TagName, t.Attributes.Rename(svgAttributeNames).AdjustForeign())
	case "caption", "col", "colgroup", "frame", "head", "tbody", "td", "tfoot", "th", "thead", "tr":
		return false, c.insertionMode, unexpectedStartTag
	default:
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertHTMLElement(t)
	}
	return false, c.insertionMode, noError
}

// closeListItem closes an open li, or dd and dt, before a new one starts.
func (c *HTMLTreeConstructor) closeListItem(pos int, match func(*dom.Element) bool) parseError {
	for k := len(c.stackOfOpenElements) - 1; k >= 0; k-- {
		el := c.el(c.stackOfOpenElements[k])
		if match(el) {
			err := noError
			c.generateImpliedEndTags(pos, el.Atom)
			if !c.currentIs(el.Atom) {
				err = endTagTooEarly
			}
			c.popUntil(pos, el.Atom)
			return err
		}
		if isSpecial(el) && !el.Is(a.Address) && !el.Is(a.Div) && !el.Is(a.P) {
			return noError
		}
	}
	return noError
}

func (c *HTMLTreeConstructor) inBodyEndTag(t *Token) (bool, insertionMode, parseError) {
	switch t.TagName {
	case "template":
		return c.useRulesFor(t, inHead)
	case "body":
		if !c.inScope(defaultScope, a.Body) {
			return false, c.insertionMode, unexpectedEndTag
		}
		if c.unclosedAtBodyEnd() {
			return false, afterBody, endTagTooEarly
		}
		return false, afterBody, noError
	case "html":
		if !c.inScope(defaultScope, a.Body) {
			return false, c.insertionMode, unexpectedEndTag
		}
		if c.unclosedAtBodyEnd() {
			return true, afterBody, endTagTooEarly
		}
		return true, afterBody, noError
	case "address", "article", "aside", "blockquote", "button", "center", "details", "dialog", "dir",
		"div", "dl", "fieldset", "figcaption", "figure", "footer", "header", "hgroup", "listing", "main",
		"menu", "nav", "ol", "pre", "search", "section", "summary", "ul":
		return false, c.insertionMode, c.closeElementInScope(t, defaultScope)
	case "form":
		return false, c.insertionMode, c.inBodyEndForm(t)
	case "p":
		err := noError
		if !c.inScope(buttonScope, a.P) {
			err = unexpectedEndTag
			c.insertImplied("p", t.Pos)
		}
		c.closePElement(t.Pos)
		return false, c.insertionMode, err
	case "li":
		return false, c.insertionMode, c.closeElementInScope(t, listItemScope)
	case "dd", "dt":
		return false, c.insertionMode, c.closeElementInScope(t, defaultScope)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		headings := []a.Atom{a.H1, a.H2, a.H3, a.H4, a.H5, a.H6}
		if !c.inScope(defaultScope, headings...) {
			return false, c.insertionMode, unexpectedEndTag
		}
		err := noError
		c.generateImpliedEndTags(t.Pos)
		if !c.currentIs(t.Atom) {
			err = endTagTooEarly
		}
		c.popUntil(t.Pos, headings...)
		return false, c.insertionMode, err
	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small", "strike", "strong", "tt", "u":
		if c.adoptionAgency(t) {
			return false, c.insertionMode, noError
		}
		return false, c.insertionMode, c.anyOtherEndTag(t)
	case "applet", "marquee", "object":
		if !c.inScope(defaultScope, t.Atom) {
			return false, c.insertionMode, unexpectedEndTag
		}
		err := noError
		c.generateImpliedEndTags(t.Pos)
		if !c.currentIs(t.Atom) {
			err = endTagTooEarly
		}
		c.popUntil(t.Pos, t.Atom)
		c.clearActiveFormattingElementsToLastMarker()
		return false, c.insertionMode, err
	case "br":
		br := &Token{TokenType: startTagToken, TagName: "br", Atom: a.Br, Pos: t.Pos, Len: t.Len}
		c.reconstructActiveFormattingElements(t.Pos)
		c.insertVoidHTMLElement(br)
		c.framesetOK = false
		return false, c.insertionMode, unexpectedEndTag
	}
	return false, c.insertionMode, c.anyOtherEndTag(t)
}

// closeElementInScope handles an end tag whose element closes everything
// opened after it, when it is in scope.
func (c *HTMLTreeConstructor) closeElementInScope(t *Token, s scope) parseError {
	if !c.inScope(s, t.Atom) {
		return unexpectedEndTag
	}
	err := noError
	c.generateImpliedEndTags(t.Pos, t.Atom)
	if !c.currentIs(t.Atom) {
		err = endTagTooEarly
	}
	c.popUntil(t.Pos, t.Atom)
	return err
}

func (c *HTMLTreeConstructor) inBodyEndForm(t *Token) parseError {
	if c.templateOnStack() {
		return c.closeElementInScope(t, defaultScope)
	}
	node := c.formElementPointer
	c.formElementPointer = none
	if node != none {
		defer c.unpin(node)
	}
	if node == none || !c.elementInScope(defaultScope, node) {
		return unexpectedEndTag
	}
	err := noError
	c.generateImpliedEndTags(t.Pos)
	if c.currentNode() != node {
		err = endTagTooEarly
	}
	c.removeFromStack(c.stackIndex(node))
	c.emitEndTag(node, t.Pos)
	return err
}

// anyOtherEndTag closes the nearest open HTML element with the tag's name,
// unless a special element comes first.
func (c *HTMLTreeConstructor) anyOtherEndTag(t *Token) parseError {
	for k := len(c.stackOfOpenElements) - 1; k >= 0; k-- {
		i := c.stackOfOpenElements[k]
		el := c.el(i)
		if el.Namespace == dom.HTML && el.Name == t.TagName {
			err := noError
			c.generateImpliedEndTags(t.Pos, el.Atom)
			if c.currentNode() != i {
				err = endTagTooEarly
			}
			c.popUntilElement(i, t.Pos)
			return err
		}
		if isSpecial(el) {
			return unexpectedEndTag
		}
	}
	return noError
}

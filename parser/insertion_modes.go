package parser

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
	a "golang.org/x/net/html/atom"
)

func (c *HTMLTreeConstructor) setHeadPointer(i int) {
	c.unpin(c.headElementPointer)
	c.headElementPointer = i
	c.pin(i)
}

func (c *HTMLTreeConstructor) setFormPointer(i int) {
	c.unpin(c.formElementPointer)
	c.formElementPointer = i
	if i != none {
		c.pin(i)
	}
}

func (c *HTMLTreeConstructor) genericRawTextElement(t *Token) insertionMode {
	c.insertHTMLElement(t)
	c.setTokenizerState(rawTextState)
	c.originalInsertionMode = c.insertionMode
	return text
}

func (c *HTMLTreeConstructor) genericRCDATAElement(t *Token) insertionMode {
	c.insertHTMLElement(t)
	c.setTokenizerState(rcDataState)
	c.originalInsertionMode = c.insertionMode
	return text
}

// leadingWhitespace inserts or drops the whitespace that starts a character
// token and reports whether non-whitespace text remains.
func (c *HTMLTreeConstructor) leadingWhitespace(t *Token, insert bool) bool {
	pos := t.Pos
	ws := splitLeadingWhitespace(t)
	if insert && ws != "" {
		c.insertCharacters(ws, pos, len(ws))
	}
	return t.Data != ""
}

func (c *HTMLTreeConstructor) templateOnStack() bool {
	return c.onStack(a.Template)
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
func (c *HTMLTreeConstructor) initialModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if !c.leadingWhitespace(t, false) {
			return false, initial, noError
		}
	case commentToken:
		c.insertCommentAt(t, documentRoot)
		return false, initial, noError
	case docTypeToken:
		err := noError
		if isNonConformingDoctype(t) {
			err = nonConformingDoctype
		}
		c.quirksMode = quirksModeFor(t)
		c.flushText()
		c.handler.Doctype(t.doctype(), c.quirksMode, t.Pos)
		return false, beforeHTML, err
	}
	c.quirksMode = dom.Quirks
	return true, beforeHTML, missingDoctype
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-html-insertion-mode
func (c *HTMLTreeConstructor) beforeHTMLModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case docTypeToken:
		return false, beforeHTML, unexpectedDoctype
	case commentToken:
		c.insertCommentAt(t, documentRoot)
		return false, beforeHTML, noError
	case characterToken:
		if !c.leadingWhitespace(t, false) {
			return false, beforeHTML, noError
		}
	case startTagToken:
		if t.TagName == "html" {
			c.insertElementAt(documentRoot, c.newElement(dom.HTML, "html", t.Attributes), false, t.Pos)
			return false, beforeHead, noError
		}
	case endTagToken:
		switch t.TagName {
		case "head", "body", "html", "br":
		default:
			return false, beforeHTML, unexpectedEndTag
		}
	}
	c.insertElementAt(documentRoot, c.newElement(dom.HTML, "html", nil), false, t.Pos)
	return true, beforeHead, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-head-insertion-mode
func (c *HTMLTreeConstructor) beforeHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if !c.leadingWhitespace(t, false) {
			return false, beforeHead, noError
		}
	case commentToken:
		c.insertComment(t)
		return false, beforeHead, noError
	case docTypeToken:
		return false, beforeHead, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "head":
			c.setHeadPointer(c.insertHTMLElement(t))
			return false, inHead, noError
		}
	case endTagToken:
		switch t.TagName {
		case "head", "body", "html", "br":
		default:
			return false, beforeHead, unexpectedEndTag
		}
	}
	c.setHeadPointer(c.insertImplied("head", t.Pos))
	return true, inHead, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inhead
func (c *HTMLTreeConstructor) inHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if !c.leadingWhitespace(t, true) {
			return false, c.insertionMode, noError
		}
	case commentToken:
		c.insertComment(t)
		return false, c.insertionMode, noError
	case docTypeToken:
		return false, c.insertionMode, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "base", "basefont", "bgsound", "link", "meta":
			c.insertVoidHTMLElement(t)
			return false, c.insertionMode, noError
		case "title":
			return false, c.genericRCDATAElement(t), noError
		case "noscript":
			if !c.config.scripting {
				c.insertHTMLElement(t)
				return false, inHeadNoScript, noError
			}
			return false, c.genericRawTextElement(t), noError
		case "noframes", "style":
			return false, c.genericRawTextElement(t), noError
		case "script":
			c.insertHTMLElement(t)
			c.setTokenizerState(scriptDataState)
			c.originalInsertionMode = c.insertionMode
			return false, text, noError
		case "template":
			c.insertHTMLElement(t)
			c.insertMarker()
			c.framesetOK = false
			c.pushTemplateMode(inTemplate)
			return false, inTemplate, noError
		case "head":
			return false, c.insertionMode, unexpectedStartTag
		}
	case endTagToken:
		switch t.TagName {
		case "head":
			c.pop(t.Pos)
			return false, afterHead, noError
		case "body", "html", "br":
		case "template":
			if !c.templateOnStack() {
				return false, c.insertionMode, unexpectedEndTag
			}
			err := noError
			c.generateAllImpliedEndTagsThoroughly(t.Pos)
			if !c.currentIs(a.Template) {
				err = endTagTooEarly
			}
			c.popUntil(t.Pos, a.Template)
			c.clearActiveFormattingElementsToLastMarker()
			c.popTemplateMode()
			return false, c.resetInsertionMode(), err
		default:
			return false, c.insertionMode, unexpectedEndTag
		}
	}
	c.pop(t.Pos)
	return true, afterHead, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inheadnoscript
func (c *HTMLTreeConstructor) inHeadNoScriptModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case docTypeToken:
		return false, inHeadNoScript, unexpectedDoctype
	case commentToken:
		return c.useRulesFor(t, inHead)
	case characterToken:
		if !c.leadingWhitespace(t, true) {
			return false, inHeadNoScript, noError
		}
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "basefont", "bgsound", "link", "meta", "noframes", "style":
			return c.useRulesFor(t, inHead)
		case "head", "noscript":
			return false, inHeadNoScript, unexpectedStartTag
		}
	case endTagToken:
		switch t.TagName {
		case "noscript":
			c.pop(t.Pos)
			return false, inHead, noError
		case "br":
		default:
			return false, inHeadNoScript, unexpectedEndTag
		}
	}
	c.pop(t.Pos)
	return true, inHead, unexpectedToken(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-head-insertion-mode
func (c *HTMLTreeConstructor) afterHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if !c.leadingWhitespace(t, true) {
			return false, afterHead, noError
		}
	case commentToken:
		c.insertComment(t)
		return false, afterHead, noError
	case docTypeToken:
		return false, afterHead, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "body":
			c.endHead(t.Pos)
			c.insertHTMLElement(t)
			c.framesetOK = false
			return false, inBody, noError
		case "frameset":
			c.endHead(t.Pos)
			c.insertHTMLElement(t)
			return false, inFrameset, noError
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			head := c.headElementPointer
			c.push(head)
			reprocess, next, _ := c.useRulesFor(t, inHead)
			if k := c.stackIndex(head); k >= 0 {
				c.removeFromStack(k)
			}
			return reprocess, next, unexpectedStartTag
		case "head":
			return false, afterHead, unexpectedStartTag
		}
	case endTagToken:
		switch t.TagName {
		case "template":
			return c.useRulesFor(t, inHead)
		case "body", "html", "br":
		default:
			return false, afterHead, unexpectedEndTag
		}
	}
	c.endHead(t.Pos)
	c.insertImplied("body", t.Pos)
	return true, inBody, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incdata
func (c *HTMLTreeConstructor) textModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		c.insertCharacterToken(t)
		return false, text, noError
	case endOfFileToken:
		c.pop(t.Pos)
		return true, c.originalInsertionMode, eofInElement
	case endTagToken:
		c.pop(t.Pos)
		return false, c.originalInsertionMode, noError
	}
	return false, text, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterbody
func (c *HTMLTreeConstructor) afterBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if isWhitespace(t.Data) {
			return c.useRulesFor(t, inBody)
		}
	case commentToken:
		c.insertCommentAt(t, location{prep: dom.Under, ref: c.stackOfOpenElements[0]})
		return false, afterBody, noError
	case docTypeToken:
		return false, afterBody, unexpectedDoctype
	case startTagToken:
		if t.TagName == "html" {
			return c.useRulesFor(t, inBody)
		}
	case endTagToken:
		if t.TagName == "html" {
			if c.context != none {
				return false, afterBody, unexpectedEndTag
			}
			return false, afterAfterBody, noError
		}
	case endOfFileToken:
		return false, afterBody, noError
	}
	return true, inBody, unexpectedToken(t)
}

func unexpectedContentAfterBody(t *Token) parseError {
	switch t.TokenType {
	case startTagToken:
		return unexpectedStartTag
	case endTagToken:
		return unexpectedEndTag
	}
	return unexpectedCharacter
}

// keepWhitespace drops everything but whitespace from a character token
// and reports whether anything was dropped.
func keepWhitespace(t *Token) bool {
	ws := strings.Map(func(r rune) rune {
		if strings.ContainsRune(whitespace, r) {
			return r
		}
		return -1
	}, t.Data)
	dropped := len(ws) != len(t.Data)
	t.Data = ws
	return dropped
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inframeset
func (c *HTMLTreeConstructor) inFramesetModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		err := noError
		if keepWhitespace(t) {
			err = unexpectedContentInFrame
		}
		c.insertCharacters(t.Data, t.Pos, t.Len)
		return false, inFrameset, err
	case commentToken:
		c.insertComment(t)
	case docTypeToken:
		return false, inFrameset, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "frameset":
			c.insertHTMLElement(t)
		case "frame":
			c.insertVoidHTMLElement(t)
		case "noframes":
			return c.useRulesFor(t, inHead)
		default:
			return false, inFrameset, unexpectedStartTag
		}
	case endTagToken:
		if t.TagName != "frameset" {
			return false, inFrameset, unexpectedEndTag
		}
		if len(c.stackOfOpenElements) == 1 {
			return false, inFrameset, unexpectedEndTag
		}
		c.pop(t.Pos)
		if c.context == none && !c.currentIs(a.Frameset) {
			return false, afterFrameset, noError
		}
	case endOfFileToken:
		if len(c.stackOfOpenElements) > 1 {
			return false, inFrameset, eofInElement
		}
	}
	return false, inFrameset, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterframeset
func (c *HTMLTreeConstructor) afterFramesetModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		err := noError
		if keepWhitespace(t) {
			err = unexpectedContentInFrame
		}
		c.insertCharacters(t.Data, t.Pos, t.Len)
		return false, afterFrameset, err
	case commentToken:
		c.insertComment(t)
	case docTypeToken:
		return false, afterFrameset, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "noframes":
			return c.useRulesFor(t, inHead)
		}
		return false, afterFrameset, unexpectedStartTag
	case endTagToken:
		if t.TagName == "html" {
			return false, afterAfterFrameset, noError
		}
		return false, afterFrameset, unexpectedEndTag
	}
	return false, afterFrameset, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-body-insertion-mode
func (c *HTMLTreeConstructor) afterAfterBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case commentToken:
		c.insertCommentAt(t, documentRoot)
		return false, afterAfterBody, noError
	case docTypeToken:
		return c.useRulesFor(t, inBody)
	case characterToken:
		if isWhitespace(t.Data) {
			return c.useRulesFor(t, inBody)
		}
	case startTagToken:
		if t.TagName == "html" {
			return c.useRulesFor(t, inBody)
		}
	case endOfFileToken:
		return false, afterAfterBody, noError
	}
	return true, inBody, unexpectedToken(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-frameset-insertion-mode
func (c *HTMLTreeConstructor) afterAfterFramesetModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case commentToken:
		c.insertCommentAt(t, documentRoot)
	case docTypeToken:
		return c.useRulesFor(t, inBody)
	case characterToken:
		err := noError
		if keepWhitespace(t) {
			err = unexpectedContentInFrame
		}
		if t.Data != "" {
			return c.inBodyWhitespace(t, err)
		}
		return false, afterAfterFrameset, err
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "noframes":
			return c.useRulesFor(t, inHead)
		}
		return false, afterAfterFrameset, unexpectedStartTag
	case endTagToken:
		return false, afterAfterFrameset, unexpectedEndTag
	}
	return false, afterAfterFrameset, noError
}

// inBodyWhitespace processes a whitespace-only token with the in body rules
// and keeps err, which those rules never set for whitespace.
func (c *HTMLTreeConstructor) inBodyWhitespace(t *Token, err parseError) (bool, insertionMode, parseError) {
	reprocess, next, _ := c.useRulesFor(t, inBody)
	return reprocess, next, err
}

package parser

import (
	a "golang.org/x/net/html/atom"
)

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intable
func (c *HTMLTreeConstructor) inTableModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if c.currentIs(a.Table, a.Tbody, a.Template, a.Tfoot, a.Thead, a.Tr) {
			c.pendingTableText = c.pendingTableText[:0]
			c.originalInsertionMode = c.insertionMode
			return true, inTableText, noError
		}
	case commentToken:
		c.insertComment(t)
		return false, c.insertionMode, noError
	case docTypeToken:
		return false, c.insertionMode, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "caption":
			c.clearStackBackToTableContext(t.Pos)
			c.insertMarker()
			c.insertHTMLElement(t)
			return false, inCaption, noError
		case "colgroup":
			c.clearStackBackToTableContext(t.Pos)
			c.insertHTMLElement(t)
			return false, inColumnGroup, noError
		case "col":
			c.clearStackBackToTableContext(t.Pos)
			c.insertImplied("colgroup", t.Pos)
			return true, inColumnGroup, noError
		case "tbody", "tfoot", "thead":
			c.clearStackBackToTableContext(t.Pos)
			c.insertHTMLElement(t)
			return false, inTableBody, noError
		case "td", "th", "tr":
			c.clearStackBackToTableContext(t.Pos)
			c.insertImplied("tbody", t.Pos)
			return true, inTableBody, noError
		case "table":
			if !c.inScope(tableScope, a.Table) {
				return false, c.insertionMode, unexpectedStartTag
			}
			c.popUntil(t.Pos, a.Table)
			return true, c.resetInsertionMode(), unexpectedStartTag
		case "style", "script", "template":
			return c.useRulesFor(t, inHead)
		case "input":
			if !isHiddenInput(t) {
				break
			}
			c.insertVoidHTMLElement(t)
			return false, c.insertionMode, unexpectedStartTag
		case "form":
			if c.templateOnStack() || c.formElementPointer != none {
				return false, c.insertionMode, unexpectedFormInTable
			}
			c.setFormPointer(c.insertHTMLElement(t))
			c.pop(t.Pos)
			return false, c.insertionMode, unexpectedFormInTable
		}
	case endTagToken:
		switch t.TagName {
		case "table":
			if !c.inScope(tableScope, a.Table) {
				return false, c.insertionMode, unexpectedEndTag
			}
			c.popUntil(t.Pos, a.Table)
			return false, c.resetInsertionMode(), noError
		case "body", "caption", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			return false, c.insertionMode, unexpectedEndTag
		case "template":
			return c.useRulesFor(t, inHead)
		}
	case endOfFileToken:
		return c.useRulesFor(t, inBody)
	}

	c.fosterParenting = true
	reprocess, next, _ := c.useRulesFor(t, inBody)
	c.fosterParenting = false
	return reprocess, next, fosterParentedContent
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intabletext
func (c *HTMLTreeConstructor) inTableTextModeHandler(t *Token) (bool, insertionMode, parseError) {
	if t.TokenType == characterToken {
		c.stripNulls(t)
		if t.Data != "" {
			c.pendingTableText = append(c.pendingTableText, *t)
		}
		return false, inTableText, noError
	}

	err := noError
	for _, p := range c.pendingTableText {
		if !isWhitespace(p.Data) {
			err = fosterParentedContent
			break
		}
	}
	for k := range c.pendingTableText {
		p := &c.pendingTableText[k]
		if err == noError {
			c.insertCharacterToken(p)
			continue
		}
		c.fosterParenting = true
		c.useRulesFor(p, inBody)
		c.fosterParenting = false
	}
	c.pendingTableText = c.pendingTableText[:0]
	return true, c.originalInsertionMode, err
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incaption
func (c *HTMLTreeConstructor) inCaptionModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case startTagToken:
		switch t.TagName {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if !c.inScope(tableScope, a.Caption) {
				return false, inCaption, unexpectedStartTag
			}
			c.closeCaption(t.Pos)
			return true, inTable, unexpectedStartTag
		}
	case endTagToken:
		switch t.TagName {
		case "caption":
			if !c.inScope(tableScope, a.Caption) {
				return false, inCaption, unexpectedEndTag
			}
			return false, inTable, c.closeCaption(t.Pos)
		case "table":
			if !c.inScope(tableScope, a.Caption) {
				return false, inCaption, unexpectedEndTag
			}
			c.closeCaption(t.Pos)
			return true, inTable, noError
		case "body", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			return false, inCaption, unexpectedEndTag
		}
	}
	return c.useRulesFor(t, inBody)
}

func (c *HTMLTreeConstructor) closeCaption(pos int) parseError {
	err := noError
	c.generateImpliedEndTags(pos)
	if !c.currentIs(a.Caption) {
		err = endTagTooEarly
	}
	c.popUntil(pos, a.Caption)
	c.clearActiveFormattingElementsToLastMarker()
	return err
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incolgroup
func (c *HTMLTreeConstructor) inColumnGroupModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		if !c.leadingWhitespace(t, true) {
			return false, inColumnGroup, noError
		}
	case commentToken:
		c.insertComment(t)
		return false, inColumnGroup, noError
	case docTypeToken:
		return false, inColumnGroup, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "col":
			c.insertVoidHTMLElement(t)
			return false, inColumnGroup, noError
		case "template":
			return c.useRulesFor(t, inHead)
		}
	case endTagToken:
		switch t.TagName {
		case "colgroup":
			if !c.currentIs(a.Colgroup) {
				return false, inColumnGroup, unexpectedEndTag
			}
			c.pop(t.Pos)
			return false, inTable, noError
		case "col":
			return false, inColumnGroup, unexpectedEndTag
		case "template":
			return c.useRulesFor(t, inHead)
		}
	case endOfFileToken:
		return c.useRulesFor(t, inBody)
	}
	if !c.currentIs(a.Colgroup) {
		return false, inColumnGroup, unexpectedToken(t)
	}
	c.pop(t.Pos)
	return true, inTable, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intbody
func (c *HTMLTreeConstructor) inTableBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case startTagToken:
		switch t.TagName {
		case "tr":
			c.clearStackBackToTableBodyContext(t.Pos)
			c.insertHTMLElement(t)
			return false, inRow, noError
		case "th", "td":
			c.clearStackBackToTableBodyContext(t.Pos)
			c.insertImplied("tr", t.Pos)
			return true, inRow, unexpectedStartTag
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead":
			if !c.inScope(tableScope, a.Tbody, a.Thead, a.Tfoot) {
				return false, inTableBody, unexpectedStartTag
			}
			c.clearStackBackToTableBodyContext(t.Pos)
			c.pop(t.Pos)
			return true, inTable, noError
		}
	case endTagToken:
		switch t.TagName {
		case "tbody", "tfoot", "thead":
			if !c.inScope(tableScope, t.Atom) {
				return false, inTableBody, unexpectedEndTag
			}
			c.clearStackBackToTableBodyContext(t.Pos)
			c.pop(t.Pos)
			return false, inTable, noError
		case "table":
			if !c.inScope(tableScope, a.Tbody, a.Thead, a.Tfoot) {
				return false, inTableBody, unexpectedEndTag
			}
			c.clearStackBackToTableBodyContext(t.Pos)
			c.pop(t.Pos)
			return true, inTable, noError
		case "body", "caption", "col", "colgroup", "html", "td", "th", "tr":
			return false, inTableBody, unexpectedEndTag
		}
	}
	return c.useRulesFor(t, inTable)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intr
func (c *HTMLTreeConstructor) inRowModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case startTagToken:
		switch t.TagName {
		case "th", "td":
			c.clearStackBackToTableRowContext(t.Pos)
			c.insertHTMLElement(t)
			c.insertMarker()
			return false, inCell, noError
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead", "tr":
			if !c.inScope(tableScope, a.Tr) {
				return false, inRow, unexpectedStartTag
			}
			c.closeRow(t.Pos)
			return true, inTableBody, noError
		}
	case endTagToken:
		switch t.TagName {
		case "tr":
			if !c.inScope(tableScope, a.Tr) {
				return false, inRow, unexpectedEndTag
			}
			c.closeRow(t.Pos)
			return false, inTableBody, noError
		case "table":
			if !c.inScope(tableScope, a.Tr) {
				return false, inRow, unexpectedEndTag
			}
			c.closeRow(t.Pos)
			return true, inTableBody, noError
		case "tbody", "tfoot", "thead":
			if !c.inScope(tableScope, t.Atom) {
				return false, inRow, unexpectedEndTag
			}
			if !c.inScope(tableScope, a.Tr) {
				return false, inRow, noError
			}
			c.closeRow(t.Pos)
			return true, inTableBody, noError
		case "body", "caption", "col", "colgroup", "html", "td", "th":
			return false, inRow, unexpectedEndTag
		}
	}
	return c.useRulesFor(t, inTable)
}

func (c *HTMLTreeConstructor) closeRow(pos int) {
	c.clearStackBackToTableRowContext(pos)
	c.pop(pos)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intd
func (c *HTMLTreeConstructor) inCellModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case startTagToken:
		switch t.TagName {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if !c.inScope(tableScope, a.Td, a.Th) {
				return false, inCell, unexpectedStartTag
			}
			return true, c.closeTheCell(t.Pos), noError
		}
	case endTagToken:
		switch t.TagName {
		case "td", "th":
			if !c.inScope(tableScope, t.Atom) {
				return false, inCell, unexpectedEndTag
			}
			err := noError
			c.generateImpliedEndTags(t.Pos)
			if !c.currentIs(t.Atom) {
				err = endTagTooEarly
			}
			c.popUntil(t.Pos, t.Atom)
			c.clearActiveFormattingElementsToLastMarker()
			return false, inRow, err
		case "body", "caption", "col", "colgroup", "html":
			return false, inCell, unexpectedEndTag
		case "table", "tbody", "tfoot", "thead", "tr":
			if !c.inScope(tableScope, t.Atom) {
				return false, inCell, unexpectedEndTag
			}
			return true, c.closeTheCell(t.Pos), noError
		}
	}
	return c.useRulesFor(t, inBody)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inselect
func (c *HTMLTreeConstructor) inSelectModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken:
		c.stripNulls(t)
		c.insertCharacterToken(t)
	case commentToken:
		c.insertComment(t)
	case docTypeToken:
		return false, c.insertionMode, unexpectedDoctype
	case startTagToken:
		switch t.TagName {
		case "html":
			return c.useRulesFor(t, inBody)
		case "option":
			if c.currentIs(a.Option) {
				c.pop(t.Pos)
			}
			c.insertHTMLElement(t)
		case "optgroup":
			if c.currentIs(a.Option) {
				c.pop(t.Pos)
			}
			if c.currentIs(a.Optgroup) {
				c.pop(t.Pos)
			}
			c.insertHTMLElement(t)
		case "hr":
			if c.currentIs(a.Option) {
				c.pop(t.Pos)
			}
			if c.currentIs(a.Optgroup) {
				c.pop(t.Pos)
			}
			c.insertVoidHTMLElement(t)
		case "select":
			if !c.inScope(selectScope, a.Select) {
				return false, c.insertionMode, unexpectedStartTag
			}
			c.popUntil(t.Pos, a.Select)
			return false, c.resetInsertionMode(), unexpectedStartTag
		case "input", "keygen", "textarea":
			if !c.inScope(selectScope, a.Select) {
				return false, c.insertionMode, unexpectedStartTag
			}
			c.popUntil(t.Pos, a.Select)
			return true, c.resetInsertionMode(), unexpectedStartTag
		case "script", "template":
			return c.useRulesFor(t, inHead)
		default:
			return false, c.insertionMode, unexpectedStartTag
		}
	case endTagToken:
		switch t.TagName {
		case "optgroup":
			if n := len(c.stackOfOpenElements); c.currentIs(a.Option) && n > 1 && c.el(c.stackOfOpenElements[n-2]).Is(a.Optgroup) {
				c.pop(t.Pos)
			}
			if !c.currentIs(a.Optgroup) {
				return false, c.insertionMode, unexpectedEndTag
			}
			c.pop(t.Pos)
		case "option":
			if !c.currentIs(a.Option) {
				return false, c.insertionMode, unexpectedEndTag
			}
			c.pop(t.Pos)
		case "select":
			if !c.inScope(selectScope, a.Select) {
				return false, c.insertionMode, unexpectedEndTag
			}
			c.popUntil(t.Pos, a.Select)
			return false, c.resetInsertionMode(), noError
		case "template":
			return c.useRulesFor(t, inHead)
		default:
			return false, c.insertionMode, unexpectedEndTag
		}
	case endOfFileToken:
		return c.useRulesFor(t, inBody)
	}
	return false, c.insertionMode, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inselectintable
func (c *HTMLTreeConstructor) inSelectInTableModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TagName {
	case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
		switch t.TokenType {
		case startTagToken:
			c.popUntil(t.Pos, a.Select)
			return true, c.resetInsertionMode(), unexpectedStartTag
		case endTagToken:
			if !c.inScope(tableScope, t.Atom) {
				return false, inSelectInTable, unexpectedEndTag
			}
			c.popUntil(t.Pos, a.Select)
			return true, c.resetInsertionMode(), unexpectedEndTag
		}
	}
	return c.useRulesFor(t, inSelect)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intemplate
func (c *HTMLTreeConstructor) inTemplateModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.TokenType {
	case characterToken, commentToken, docTypeToken:
		return c.useRulesFor(t, inBody)
	case startTagToken:
		switch t.TagName {
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			return c.useRulesFor(t, inHead)
		case "caption", "colgroup", "tbody", "tfoot", "thead":
			return true, c.switchTemplateMode(inTable), noError
		case "col":
			return true, c.switchTemplateMode(inColumnGroup), noError
		case "tr":
			return true, c.switchTemplateMode(inTableBody), noError
		case "td", "th":
			return true, c.switchTemplateMode(inRow), noError
		}
		return true, c.switchTemplateMode(inBody), noError
	case endTagToken:
		if t.TagName == "template" {
			return c.useRulesFor(t, inHead)
		}
		return false, inTemplate, unexpectedEndTag
	case endOfFileToken:
		if !c.templateOnStack() {
			return false, inTemplate, noError
		}
		c.popUntil(t.Pos, a.Template)
		c.clearActiveFormattingElementsToLastMarker()
		c.popTemplateMode()
		return true, c.resetInsertionMode(), eofInElement
	}
	return false, inTemplate, noError
}

func (c *HTMLTreeConstructor) switchTemplateMode(m insertionMode) insertionMode {
	c.popTemplateMode()
	c.pushTemplateMode(m)
	return m
}

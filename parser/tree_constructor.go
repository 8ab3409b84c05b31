package parser

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
	"github.com/sirupsen/logrus"
	a "golang.org/x/net/html/atom"
)

// none marks an unset record index. In the list of active formatting
// elements the same value is a scope marker.
const (
	none   = -1
	marker = -1
)

// record is one arena slot. The stack of open elements and the list of
// active formatting elements hold indices into the arena; a slot is reused
// once neither of them nor a head, form or context pointer refers to it.
type record struct {
	el      *dom.Element
	onStack bool
	inAFE   bool
	pinned  bool
}

// location is an insertion point: under ref, before ref, or at the root of
// the document when ref is none.
type location struct {
	prep dom.Preposition
	ref  int
}

var documentRoot = location{prep: dom.Root, ref: none}

type pendingText struct {
	prep     dom.Preposition
	ref      *dom.Element
	data     strings.Builder
	pos, end int
}

// HTMLTreeConstructor holds the state for various state of the tree construction phase.
type HTMLTreeConstructor struct {
	config  *htmlParserConfig
	handler dom.TreeHandler
	report  func(code parseError, pos int, detail string)
	log     *logrus.Logger
	trace   bool

	insertionMode, originalInsertionMode insertionMode
	templateModes                        []insertionMode

	records                                       []record
	free                                          []int
	stackOfOpenElements, activeFormattingElements []int
	headElementPointer, formElementPointer        int
	context, root                                 int
	headEnded                                     bool
	// openCount counts the HTML elements on the stack by tag, so lookups
	// for a tag that is not open skip the walk.
	openCount map[a.Atom]int

	quirksMode       dom.QuirksMode
	framesetOK       bool
	fosterParenting  bool
	skipNewline      bool
	acknowledged     bool
	pendingTableText []Token
	text             pendingText
	nextID           int
	tokenizerState   *tokenizerState
	mappings         map[insertionMode]treeConstructionModeHandler
}

// NewHTMLTreeConstructor creates an HTMLTreeConstructor that sends tree
// mutations to h.
func NewHTMLTreeConstructor(cfg *htmlParserConfig, h dom.TreeHandler, report func(parseError, int, string)) *HTMLTreeConstructor {
	if report == nil {
		report = func(parseError, int, string) {}
	}
	c := &HTMLTreeConstructor{
		config:             cfg,
		handler:            h,
		report:             report,
		log:                cfg.logger,
		trace:              cfg.logger.IsLevelEnabled(logrus.TraceLevel),
		headElementPointer: none,
		formElementPointer: none,
		context:            none,
		root:               none,
		framesetOK:         true,
		openCount:          make(map[a.Atom]int),
	}
	c.createMappings()
	return c
}

func (c *HTMLTreeConstructor) createMappings() {
	c.mappings = map[insertionMode]treeConstructionModeHandler{
		initial:            c.initialModeHandler,
		beforeHTML:         c.beforeHTMLModeHandler,
		beforeHead:         c.beforeHeadModeHandler,
		inHead:             c.inHeadModeHandler,
		inHeadNoScript:     c.inHeadNoScriptModeHandler,
		afterHead:          c.afterHeadModeHandler,
		inBody:             c.inBodyModeHandler,
		text:               c.textModeHandler,
		inTable:            c.inTableModeHandler,
		inTableText:        c.inTableTextModeHandler,
		inCaption:          c.inCaptionModeHandler,
		inColumnGroup:      c.inColumnGroupModeHandler,
		inTableBody:        c.inTableBodyModeHandler,
		inRow:              c.inRowModeHandler,
		inCell:             c.inCellModeHandler,
		inSelect:           c.inSelectModeHandler,
		inSelectInTable:    c.inSelectInTableModeHandler,
		inTemplate:         c.inTemplateModeHandler,
		afterBody:          c.afterBodyModeHandler,
		inFrameset:         c.inFramesetModeHandler,
		afterFrameset:      c.afterFramesetModeHandler,
		afterAfterBody:     c.afterAfterBodyModeHandler,
		afterAfterFrameset: c.afterAfterFramesetModeHandler,
	}
}

// Start begins a document, or a fragment when a fragment context is
// configured, and returns the progress for the first token.
func (c *HTMLTreeConstructor) Start() *Progress {
	if c.config.fragment != nil {
		c.startFragment(c.config.fragment)
		return c.progress()
	}
	c.handler.StartDocument(nil)
	return c.progress()
}

// ProcessToken runs one token through tree construction and tells the
// tokenizer how to continue.
func (c *HTMLTreeConstructor) ProcessToken(t *Token) *Progress {
	c.tokenizerState = nil
	c.acknowledged = false
	if c.skipNewline {
		c.skipNewline = false
		if t.TokenType == characterToken && strings.HasPrefix(t.Data, "\n") {
			trimToken(t, 1)
			if t.Data == "" {
				return c.progress()
			}
		}
	}
	if c.tooDeep(t) {
		c.parseError(nestingTooDeep, t.Pos, t.TagName)
		return c.progress()
	}

	for reprocess := true; reprocess; {
		handler := c.mappings[c.insertionMode]
		if c.inForeignContent(t) {
			handler = c.foreignContentHandler
		}
		var (
			next insertionMode
			err  parseError
		)
		reprocess, next, err = handler(t)
		c.setInsertionMode(next)
		if err != noError {
			c.parseError(err, t.Pos, t.TagName)
		}
	}

	if t.TokenType == startTagToken && t.SelfClosing && !c.acknowledged {
		c.parseError(nonVoidSelfClosingTag, t.Pos, t.TagName)
	}
	if t.TokenType == endOfFileToken {
		c.stopParsing(t.Pos)
	}
	return c.progress()
}

func (c *HTMLTreeConstructor) progress() *Progress {
	return &Progress{
		TokenizerState: c.tokenizerState,
		AllowCDATA:     c.allowCDATA(),
	}
}

func (c *HTMLTreeConstructor) allowCDATA() bool {
	acn := c.adjustedCurrentNode()
	return acn != none && c.el(acn).Namespace != dom.HTML
}

func (c *HTMLTreeConstructor) setTokenizerState(s tokenizerState) {
	c.tokenizerState = &s
}

func (c *HTMLTreeConstructor) setInsertionMode(m insertionMode) {
	if c.trace && m != c.insertionMode {
		c.log.WithFields(logrus.Fields{
			"from": c.insertionMode,
			"to":   m,
		}).Trace("insertion mode")
	}
	c.insertionMode = m
}

func (c *HTMLTreeConstructor) parseError(code parseError, pos int, detail string) {
	c.report(code, pos, detail)
}

// tooDeep reports whether t is a start tag that would push the stack of
// open elements past the configured limit.
func (c *HTMLTreeConstructor) tooDeep(t *Token) bool {
	if c.config.maxDepth == 0 || t.TokenType != startTagToken {
		return false
	}
	switch t.TagName {
	case "html", "head", "body", "frameset":
		return false
	}
	return len(c.stackOfOpenElements) >= c.config.maxDepth && !dom.IsVoid(t.TagName)
}

// stopParsing pops everything that is still open and ends the document.
func (c *HTMLTreeConstructor) stopParsing(pos int) {
	for len(c.stackOfOpenElements) > 0 {
		if len(c.stackOfOpenElements) == 1 {
			c.endHead(pos)
		}
		c.pop(pos)
	}
	c.endHead(pos)
	c.flushText()
	c.handler.EndDocument(pos)
}

// trimToken drops the first n bytes of a character token.
func trimToken(t *Token, n int) {
	t.Data = t.Data[n:]
	t.Pos += n
	t.Len -= n
	if t.Len < 0 {
		t.Len = 0
	}
}

const whitespace = "\t\n\f\r "

// splitLeadingWhitespace removes the leading whitespace of a character
// token and returns it.
func splitLeadingWhitespace(t *Token) string {
	rest := strings.TrimLeft(t.Data, whitespace)
	ws := t.Data[:len(t.Data)-len(rest)]
	trimToken(t, len(ws))
	return ws
}

func isWhitespace(s string) bool {
	return strings.TrimLeft(s, whitespace) == ""
}

// Arena

func (c *HTMLTreeConstructor) el(i int) *dom.Element {
	return c.records[i].el
}

func (c *HTMLTreeConstructor) alloc(el *dom.Element) int {
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		c.records[i] = record{el: el}
		return i
	}
	c.records = append(c.records, record{el: el})
	return len(c.records) - 1
}

func (c *HTMLTreeConstructor) release(i int) {
	r := &c.records[i]
	if r.el == nil || r.onStack || r.inAFE || r.pinned {
		return
	}
	*r = record{}
	c.free = append(c.free, i)
}

func (c *HTMLTreeConstructor) newElement(ns dom.Namespace, name string, attrs *dom.Attributes) int {
	c.nextID++
	return c.alloc(dom.NewElement(c.nextID, ns, name, attrs))
}

func (c *HTMLTreeConstructor) cloneElement(i int) int {
	c.nextID++
	return c.alloc(c.el(i).Clone(c.nextID))
}

func (c *HTMLTreeConstructor) pin(i int) {
	c.records[i].pinned = true
}

func (c *HTMLTreeConstructor) unpin(i int) {
	if i == none {
		return
	}
	c.records[i].pinned = false
	c.release(i)
}

// Events

func (c *HTMLTreeConstructor) resolve(loc location) (dom.Preposition, *dom.Element) {
	if loc.ref == none || (loc.ref == c.root && loc.prep == dom.Under) {
		return dom.Root, nil
	}
	return loc.prep, c.el(loc.ref)
}

func (c *HTMLTreeConstructor) flushText() {
	if c.text.data.Len() == 0 {
		return
	}
	c.handler.Characters(c.text.prep, c.text.ref, c.text.data.String(), c.text.pos, c.text.end-c.text.pos)
	c.text.data.Reset()
	c.text.ref = nil
}

func (c *HTMLTreeConstructor) emitInsert(loc location, i int, void bool, pos int) {
	c.flushText()
	prep, ref := c.resolve(loc)
	c.handler.InsertElement(prep, ref, c.el(i), void, pos)
}

func (c *HTMLTreeConstructor) emitEndTag(i int, pos int) {
	if i == c.root || i == c.headElementPointer {
		return
	}
	c.flushText()
	c.handler.EndTag(c.el(i), pos)
}

// endHead ends the head element. Its end tag is held back until the body
// or frameset starts, since content after </head> can still land in it.
func (c *HTMLTreeConstructor) endHead(pos int) {
	if c.headElementPointer == none || c.headEnded {
		return
	}
	c.headEnded = true
	c.flushText()
	c.handler.EndTag(c.el(c.headElementPointer), pos)
}

// insertCharacters inserts text at the appropriate place. Adjacent runs
// for the same place are merged into one event.
func (c *HTMLTreeConstructor) insertCharacters(s string, pos, length int) {
	if s == "" {
		return
	}
	loc := c.appropriatePlace(none)
	if loc.ref == none {
		return
	}
	prep, ref := c.resolve(loc)
	if c.text.data.Len() > 0 && (c.text.prep != prep || c.text.ref != ref) {
		c.flushText()
	}
	if c.text.data.Len() == 0 {
		c.text.prep, c.text.ref, c.text.pos = prep, ref, pos
	}
	c.text.data.WriteString(s)
	c.text.end = pos + length
}

func (c *HTMLTreeConstructor) insertCharacterToken(t *Token) {
	c.insertCharacters(t.Data, t.Pos, t.Len)
}

func (c *HTMLTreeConstructor) insertCommentAt(t *Token, loc location) {
	c.flushText()
	prep, ref := c.resolve(loc)
	c.handler.Comment(prep, ref, t.Data, t.Pos)
}

func (c *HTMLTreeConstructor) insertComment(t *Token) {
	c.insertCommentAt(t, c.appropriatePlace(none))
}

func (c *HTMLTreeConstructor) mergeAttributes(i int, t *Token) {
	el := c.el(i)
	added := el.Attrs.Missing(t.Attributes)
	if len(added) == 0 {
		return
	}
	el.Attrs = el.Attrs.Merge(t.Attributes)
	if i == c.root {
		return
	}
	c.flushText()
	c.handler.MergeAttributes(el, added, t.Pos)
}

// Stack of open elements

func (c *HTMLTreeConstructor) currentNode() int {
	if len(c.stackOfOpenElements) == 0 {
		return none
	}
	return c.stackOfOpenElements[len(c.stackOfOpenElements)-1]
}

func (c *HTMLTreeConstructor) current() *dom.Element {
	i := c.currentNode()
	if i == none {
		return nil
	}
	return c.el(i)
}

func (c *HTMLTreeConstructor) currentIs(tags ...a.Atom) bool {
	cur := c.current()
	if cur == nil {
		return false
	}
	for _, tag := range tags {
		if cur.Is(tag) {
			return true
		}
	}
	return false
}

// adjustedCurrentNode is the context element when parsing a fragment and
// only the root is open, the current node otherwise.
func (c *HTMLTreeConstructor) adjustedCurrentNode() int {
	if c.context != none && len(c.stackOfOpenElements) == 1 {
		return c.context
	}
	return c.currentNode()
}

func (c *HTMLTreeConstructor) tally(i int, delta int) {
	if el := c.el(i); el.Namespace == dom.HTML && el.Atom != 0 {
		c.openCount[el.Atom] += delta
	}
}

// anyOpen reports whether an HTML element with one of the tags may be on
// the stack.
func (c *HTMLTreeConstructor) anyOpen(tags []a.Atom) bool {
	for _, tag := range tags {
		if c.openCount[tag] > 0 {
			return true
		}
	}
	return false
}

func (c *HTMLTreeConstructor) push(i int) {
	c.records[i].onStack = true
	c.stackOfOpenElements = append(c.stackOfOpenElements, i)
	c.tally(i, 1)
}

func (c *HTMLTreeConstructor) pop(pos int) *dom.Element {
	n := len(c.stackOfOpenElements)
	i := c.stackOfOpenElements[n-1]
	c.stackOfOpenElements = c.stackOfOpenElements[:n-1]
	c.records[i].onStack = false
	c.tally(i, -1)
	el := c.el(i)
	c.emitEndTag(i, pos)
	c.release(i)
	return el
}

// popUntil pops elements until an HTML element with one of the given tags
// has been popped.
func (c *HTMLTreeConstructor) popUntil(pos int, tags ...a.Atom) {
	for len(c.stackOfOpenElements) > 0 {
		el := c.pop(pos)
		for _, tag := range tags {
			if el.Is(tag) {
				return
			}
		}
	}
}

// popUntilElement pops elements until the element in slot i has been popped.
func (c *HTMLTreeConstructor) popUntilElement(i int, pos int) {
	for len(c.stackOfOpenElements) > 0 {
		top := c.currentNode()
		c.pop(pos)
		if top == i {
			return
		}
	}
}

func (c *HTMLTreeConstructor) stackIndex(i int) int {
	for k := len(c.stackOfOpenElements) - 1; k >= 0; k-- {
		if c.stackOfOpenElements[k] == i {
			return k
		}
	}
	return -1
}

// removeFromStack takes the element at stack position k off the stack
// without ending it.
func (c *HTMLTreeConstructor) removeFromStack(k int) int {
	i := c.stackOfOpenElements[k]
	c.stackOfOpenElements = append(c.stackOfOpenElements[:k], c.stackOfOpenElements[k+1:]...)
	c.records[i].onStack = false
	c.tally(i, -1)
	return i
}

func (c *HTMLTreeConstructor) insertIntoStack(k int, i int) {
	c.stackOfOpenElements = append(c.stackOfOpenElements, none)
	copy(c.stackOfOpenElements[k+1:], c.stackOfOpenElements[k:])
	c.stackOfOpenElements[k] = i
	c.records[i].onStack = true
	c.tally(i, 1)
}

func (c *HTMLTreeConstructor) onStack(tags ...a.Atom) bool {
	if !c.anyOpen(tags) {
		return false
	}
	for k := len(c.stackOfOpenElements) - 1; k >= 0; k-- {
		el := c.el(c.stackOfOpenElements[k])
		for _, tag := range tags {
			if el.Is(tag) {
				return true
			}
		}
	}
	return false
}

// clearStackBackTo pops until the current node is one of tags, or html.
func (c *HTMLTreeConstructor) clearStackBackTo(pos int, tags ...a.Atom) {
	for len(c.stackOfOpenElements) > 1 && !c.currentIs(tags...) && !c.currentIs(a.Html) {
		c.pop(pos)
	}
}

func (c *HTMLTreeConstructor) clearStackBackToTableContext(pos int) {
	c.clearStackBackTo(pos, a.Table, a.Template)
}

func (c *HTMLTreeConstructor) clearStackBackToTableBodyContext(pos int) {
	c.clearStackBackTo(pos, a.Tbody, a.Tfoot, a.Thead, a.Template)
}

func (c *HTMLTreeConstructor) clearStackBackToTableRowContext(pos int) {
	c.clearStackBackTo(pos, a.Tr, a.Template)
}

// Scopes

type scope uint

const (
	defaultScope scope = iota
	listItemScope
	buttonScope
	tableScope
	selectScope
)

func isScopeBoundary(el *dom.Element, s scope) bool {
	switch s {
	case tableScope:
		return el.Is(a.Html) || el.Is(a.Table) || el.Is(a.Template)
	case selectScope:
		return !el.Is(a.Optgroup) && !el.Is(a.Option)
	}
	switch el.Namespace {
	case dom.HTML:
		switch el.Atom {
		case a.Applet, a.Caption, a.Html, a.Table, a.Td, a.Th, a.Marquee, a.Object, a.Template:
			return true
		case a.Ol, a.Ul:
			return s == listItemScope
		case a.Button:
			return s == buttonScope
		}
	case dom.MathML:
		switch el.Name {
		case "mi", "mo", "mn", "ms", "mtext", "annotation-xml":
			return true
		}
	case dom.SVG:
		switch el.Name {
		case "foreignObject", "desc", "title":
			return true
		}
	}
	return false
}

// indexInScope returns the stack position of the topmost element accepted
// by match, or -1 when a scope boundary comes first.
func (c *HTMLTreeConstructor) indexInScope(s scope, match func(*dom.Element) bool) int {
	for k := len(c.stackOfOpenElements) - 1; k >= 0; k-- {
		el := c.el(c.stackOfOpenElements[k])
		if match(el) {
			return k
		}
		if isScopeBoundary(el, s) {
			return -1
		}
	}
	return -1
}

func (c *HTMLTreeConstructor) inScope(s scope, tags ...a.Atom) bool {
	if !c.anyOpen(tags) {
		return false
	}
	return c.indexInScope(s, func(el *dom.Element) bool {
		for _, tag := range tags {
			if el.Is(tag) {
				return true
			}
		}
		return false
	}) >= 0
}

func (c *HTMLTreeConstructor) elementInScope(s scope, i int) bool {
	target := c.el(i)
	return c.indexInScope(s, func(el *dom.Element) bool { return el == target }) >= 0
}

func isSpecial(el *dom.Element) bool {
	switch el.Namespace {
	case dom.HTML:
		switch el.Name {
		case "address", "applet", "area", "article", "aside", "base", "basefont", "bgsound", "blockquote", "body", "br", "button", "caption", "center", "col", "colgroup", "dd", "details", "dir", "div", "dl", "dt", "embed", "fieldset", "figcaption", "figure", "footer", "form", "frame", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head", "header", "hgroup", "hr", "html", "iframe", "img", "input", "keygen", "li", "link", "listing", "main", "marquee", "menu", "meta", "nav", "noembed", "noframes", "noscript", "object", "ol", "p", "param", "plaintext", "pre", "script", "search", "section", "select", "source", "style", "summary", "table", "tbody", "td", "template", "textarea", "tfoot", "th", "thead", "title", "tr", "track", "ul", "wbr", "xmp":
			return true
		}
	case dom.MathML:
		switch el.Name {
		case "mi", "mo", "mn", "ms", "mtext", "annotation-xml":
			return true
		}
	case dom.SVG:
		switch el.Name {
		case "foreignObject", "desc", "title":
			return true
		}
	}
	return false
}

// generateImpliedEndTags pops elements whose end tag may be omitted,
// stopping at except.
func (c *HTMLTreeConstructor) generateImpliedEndTags(pos int, except ...a.Atom) {
	for {
		cur := c.current()
		if cur == nil || cur.Namespace != dom.HTML {
			return
		}
		switch cur.Atom {
		case a.Dd, a.Dt, a.Li, a.Optgroup, a.Option, a.P, a.Rb, a.Rp, a.Rt, a.Rtc:
			for _, e := range except {
				if cur.Atom == e {
					return
				}
			}
			c.pop(pos)
		default:
			return
		}
	}
}

func (c *HTMLTreeConstructor) generateAllImpliedEndTagsThoroughly(pos int) {
	for {
		cur := c.current()
		if cur == nil || cur.Namespace != dom.HTML {
			return
		}
		switch cur.Atom {
		case a.Caption, a.Colgroup, a.Dd, a.Dt, a.Li, a.Optgroup, a.Option, a.P, a.Rb, a.Rp, a.Rt, a.Rtc,
			a.Tbody, a.Td, a.Tfoot, a.Th, a.Thead, a.Tr:
			c.pop(pos)
		default:
			return
		}
	}
}

func (c *HTMLTreeConstructor) closePElement(pos int) {
	c.generateImpliedEndTags(pos, a.P)
	if !c.currentIs(a.P) {
		c.parseError(endTagTooEarly, pos, "p")
	}
	c.popUntil(pos, a.P)
}

func (c *HTMLTreeConstructor) closePInButtonScope(pos int) {
	if c.inScope(buttonScope, a.P) {
		c.closePElement(pos)
	}
}

func (c *HTMLTreeConstructor) closeTheCell(pos int) insertionMode {
	c.generateImpliedEndTags(pos)
	if !c.currentIs(a.Td, a.Th) {
		c.parseError(endTagTooEarly, pos, c.current().Name)
	}
	c.popUntil(pos, a.Td, a.Th)
	c.clearActiveFormattingElementsToLastMarker()
	return inRow
}

// resetInsertionMode implements "reset the insertion mode appropriately".
func (c *HTMLTreeConstructor) resetInsertionMode() insertionMode {
	for k := len(c.stackOfOpenElements) - 1; k >= 0; k-- {
		i := c.stackOfOpenElements[k]
		last := k == 0
		if last && c.context != none {
			i = c.context
		}
		el := c.el(i)
		if el.Namespace == dom.HTML {
			switch el.Atom {
			case a.Select:
				if !last {
					for j := k - 1; j >= 0; j-- {
						anc := c.el(c.stackOfOpenElements[j])
						if anc.Is(a.Template) {
							break
						}
						if anc.Is(a.Table) {
							return c.switchTo(inSelectInTable)
						}
					}
				}
				return c.switchTo(inSelect)
			case a.Td, a.Th:
				if !last {
					return c.switchTo(inCell)
				}
			case a.Tr:
				return c.switchTo(inRow)
			case a.Tbody, a.Thead, a.Tfoot:
				return c.switchTo(inTableBody)
			case a.Caption:
				return c.switchTo(inCaption)
			case a.Colgroup:
				return c.switchTo(inColumnGroup)
			case a.Table:
				return c.switchTo(inTable)
			case a.Template:
				return c.switchTo(c.currentTemplateMode())
			case a.Head:
				if !last {
					return c.switchTo(inHead)
				}
			case a.Body:
				return c.switchTo(inBody)
			case a.Frameset:
				return c.switchTo(inFrameset)
			case a.Html:
				if c.headElementPointer == none {
					return c.switchTo(beforeHead)
				}
				return c.switchTo(afterHead)
			}
		}
		if last {
			break
		}
	}
	return c.switchTo(inBody)
}

func (c *HTMLTreeConstructor) switchTo(m insertionMode) insertionMode {
	c.setInsertionMode(m)
	return m
}

func (c *HTMLTreeConstructor) currentTemplateMode() insertionMode {
	if n := len(c.templateModes); n > 0 {
		return c.templateModes[n-1]
	}
	return inBody
}

func (c *HTMLTreeConstructor) pushTemplateMode(m insertionMode) {
	c.templateModes = append(c.templateModes, m)
}

func (c *HTMLTreeConstructor) popTemplateMode() {
	if n := len(c.templateModes); n > 0 {
		c.templateModes = c.templateModes[:n-1]
	}
}

// Insertion

// appropriatePlace finds where a node goes, inside override or the
// current node, diverted before the last table while foster parenting.
func (c *HTMLTreeConstructor) appropriatePlace(override int) location {
	target := override
	if target == none {
		target = c.currentNode()
	}
	if target == none {
		return documentRoot
	}
	if el := c.el(target); c.fosterParenting && el.Namespace == dom.HTML {
		switch el.Atom {
		case a.Table, a.Tbody, a.Tfoot, a.Thead, a.Tr:
			return c.fosterParentLocation()
		}
	}
	return location{prep: dom.Under, ref: target}
}

func (c *HTMLTreeConstructor) fosterParentLocation() location {
	lastTemplate, lastTable := -1, -1
	wantTemplate, wantTable := c.openCount[a.Template] > 0, c.openCount[a.Table] > 0
	for k := len(c.stackOfOpenElements) - 1; k >= 0 && (wantTemplate || wantTable); k-- {
		el := c.el(c.stackOfOpenElements[k])
		if wantTemplate && el.Is(a.Template) {
			lastTemplate, wantTemplate = k, false
		}
		if wantTable && el.Is(a.Table) {
			lastTable, wantTable = k, false
		}
	}
	if lastTemplate >= 0 && (lastTable < 0 || lastTemplate > lastTable) {
		return location{prep: dom.Under, ref: c.stackOfOpenElements[lastTemplate]}
	}
	if lastTable < 0 {
		return location{prep: dom.Under, ref: c.stackOfOpenElements[0]}
	}
	return location{prep: dom.Before, ref: c.stackOfOpenElements[lastTable]}
}

func (c *HTMLTreeConstructor) insertElementAt(loc location, i int, void bool, pos int) {
	c.emitInsert(loc, i, void, pos)
	if void {
		c.release(i)
		return
	}
	c.push(i)
}

// insertHTMLElement inserts an HTML element for t at the appropriate place
// and pushes it.
func (c *HTMLTreeConstructor) insertHTMLElement(t *Token) int {
	i := c.newElement(dom.HTML, t.TagName, t.Attributes)
	c.insertElementAt(c.appropriatePlace(none), i, false, t.Pos)
	return i
}

// insertVoidHTMLElement inserts an element that is popped right away and
// acknowledges the self-closing flag.
func (c *HTMLTreeConstructor) insertVoidHTMLElement(t *Token) {
	i := c.newElement(dom.HTML, t.TagName, t.Attributes)
	c.insertElementAt(c.appropriatePlace(none), i, true, t.Pos)
	c.acknowledged = true
}

// insertImplied inserts an HTML element for a start tag that has no token.
func (c *HTMLTreeConstructor) insertImplied(name string, pos int) int {
	i := c.newElement(dom.HTML, name, nil)
	c.insertElementAt(c.appropriatePlace(none), i, false, pos)
	return i
}

func (c *HTMLTreeConstructor) insertForeignElement(t *Token, ns dom.Namespace, name string, attrs *dom.Attributes) {
	i := c.newElement(ns, name, attrs)
	void := t.SelfClosing
	if void {
		c.acknowledged = true
	}
	c.insertElementAt(c.appropriatePlace(none), i, void, t.Pos)
}

// Active formatting elements

func sameElement(x, y *dom.Element) bool {
	if x.Namespace != y.Namespace || x.Name != y.Name || x.Attrs.Len() != y.Attrs.Len() {
		return false
	}
	for k := 0; k < x.Attrs.Len(); k++ {
		attr := x.Attrs.At(k)
		if v, ok := y.Attrs.Get(attr.Name); !ok || v != attr.Value {
			return false
		}
	}
	return true
}

// pushActiveFormattingElement appends i, first dropping the earliest of
// three identical entries after the last marker.
func (c *HTMLTreeConstructor) pushActiveFormattingElement(i int) {
	el := c.el(i)
	matches, earliest := 0, -1
	for k := len(c.activeFormattingElements) - 1; k >= 0; k-- {
		e := c.activeFormattingElements[k]
		if e == marker {
			break
		}
		if sameElement(c.el(e), el) {
			matches++
			earliest = k
		}
	}
	if matches >= 3 {
		c.removeActiveFormattingElement(earliest)
	}
	c.activeFormattingElements = append(c.activeFormattingElements, i)
	c.records[i].inAFE = true
}

func (c *HTMLTreeConstructor) insertMarker() {
	c.activeFormattingElements = append(c.activeFormattingElements, marker)
}

func (c *HTMLTreeConstructor) removeActiveFormattingElement(k int) {
	e := c.activeFormattingElements[k]
	c.activeFormattingElements = append(c.activeFormattingElements[:k], c.activeFormattingElements[k+1:]...)
	if e != marker {
		c.records[e].inAFE = false
		c.release(e)
	}
}

func (c *HTMLTreeConstructor) indexInActiveFormattingElements(i int) int {
	for k := len(c.activeFormattingElements) - 1; k >= 0; k-- {
		if c.activeFormattingElements[k] == i {
			return k
		}
	}
	return -1
}

// formattingElementAfterLastMarker finds the last HTML entry named name
// after the last marker.
func (c *HTMLTreeConstructor) formattingElementAfterLastMarker(name string) int {
	for k := len(c.activeFormattingElements) - 1; k >= 0; k-- {
		e := c.activeFormattingElements[k]
		if e == marker {
			break
		}
		if el := c.el(e); el.Namespace == dom.HTML && el.Name == name {
			return k
		}
	}
	return -1
}

func (c *HTMLTreeConstructor) clearActiveFormattingElementsToLastMarker() {
	for n := len(c.activeFormattingElements); n > 0; n = len(c.activeFormattingElements) {
		e := c.activeFormattingElements[n-1]
		c.removeActiveFormattingElement(n - 1)
		if e == marker {
			return
		}
	}
}

// reconstructActiveFormattingElements reopens the formatting elements that
// were closed implicitly. A reconstruction guard can hold this back while
// it returns true; the entries stay listed and are reopened later.
func (c *HTMLTreeConstructor) reconstructActiveFormattingElements(pos int) {
	n := len(c.activeFormattingElements)
	if n == 0 {
		return
	}
	if last := c.activeFormattingElements[n-1]; last == marker || c.records[last].onStack {
		return
	}
	if c.config.guard != nil && c.config.guard(openElements{c}) {
		return
	}

	k := n - 1
	for k > 0 {
		e := c.activeFormattingElements[k-1]
		if e == marker || c.records[e].onStack {
			break
		}
		k--
	}

	for ; k < len(c.activeFormattingElements); k++ {
		if c.config.maxDepth > 0 && len(c.stackOfOpenElements) >= c.config.maxDepth {
			return
		}
		old := c.activeFormattingElements[k]
		clone := c.cloneElement(old)
		c.insertElementAt(c.appropriatePlace(none), clone, false, pos)
		c.activeFormattingElements[k] = clone
		c.records[clone].inAFE = true
		c.records[old].inAFE = false
		c.release(old)
	}
}

// adoptionAgency runs the adoption agency algorithm for an end tag. It
// returns false when the tag should get the "any other end tag" treatment.
func (c *HTMLTreeConstructor) adoptionAgency(t *Token) bool {
	subject, pos := t.TagName, t.Pos
	if cur := c.currentNode(); cur != none {
		if el := c.el(cur); el.Namespace == dom.HTML && el.Name == subject && c.indexInActiveFormattingElements(cur) < 0 {
			c.pop(pos)
			return true
		}
	}

	for outer := 0; outer < 8; outer++ {
		fi := c.formattingElementAfterLastMarker(subject)
		if fi < 0 {
			return false
		}
		fe := c.activeFormattingElements[fi]
		fs := c.stackIndex(fe)
		if fs < 0 {
			c.parseError(misnestedTag, pos, subject)
			c.removeActiveFormattingElement(fi)
			return true
		}
		if !c.elementInScope(defaultScope, fe) {
			c.parseError(misnestedTag, pos, subject)
			return true
		}
		if fe != c.currentNode() {
			c.parseError(misnestedTag, pos, subject)
		}

		fb := -1
		for k := fs + 1; k < len(c.stackOfOpenElements); k++ {
			if isSpecial(c.el(c.stackOfOpenElements[k])) {
				fb = k
				break
			}
		}
		if fb < 0 {
			c.popUntilElement(fe, pos)
			c.removeActiveFormattingElement(c.indexInActiveFormattingElements(fe))
			return true
		}

		furthestBlock := c.stackOfOpenElements[fb]
		commonAncestor := c.stackOfOpenElements[fs-1]
		bookmark := fi
		lastNode := furthestBlock
		var chain, closed []int

		nodePos := fb
		for inner := 1; ; inner++ {
			nodePos--
			node := c.stackOfOpenElements[nodePos]
			if node == fe {
				break
			}
			ai := c.indexInActiveFormattingElements(node)
			if inner > 3 && ai >= 0 {
				c.activeFormattingElements = append(c.activeFormattingElements[:ai], c.activeFormattingElements[ai+1:]...)
				c.records[node].inAFE = false
				if ai < bookmark {
					bookmark--
				}
				ai = -1
			}
			if ai < 0 {
				c.removeFromStack(nodePos)
				closed = append(closed, node)
				continue
			}

			clone := c.cloneElement(node)
			c.activeFormattingElements[ai] = clone
			c.records[clone].inAFE = true
			c.records[node].inAFE = false
			c.stackOfOpenElements[nodePos] = clone
			c.records[clone].onStack = true
			c.records[node].onStack = false
			closed = append(closed, node)
			if lastNode == furthestBlock {
				bookmark = ai + 1
			}
			chain = append(chain, clone)
			lastNode = clone
		}

		// The chain of clones is emitted top down so every parent exists
		// before its children move in.
		loc := c.appropriatePlace(commonAncestor)
		for j := len(chain) - 1; j >= 0; j-- {
			c.emitInsert(loc, chain[j], false, pos)
			loc = location{prep: dom.Under, ref: chain[j]}
		}
		c.emitInsert(loc, furthestBlock, false, pos)

		clone := c.cloneElement(fe)
		c.flushText()
		c.handler.ReparentChildren(c.el(furthestBlock), c.el(clone), pos)

		fi = c.indexInActiveFormattingElements(fe)
		c.activeFormattingElements = append(c.activeFormattingElements[:fi], c.activeFormattingElements[fi+1:]...)
		c.records[fe].inAFE = false
		if fi < bookmark {
			bookmark--
		}
		if bookmark > len(c.activeFormattingElements) {
			bookmark = len(c.activeFormattingElements)
		}
		c.activeFormattingElements = append(c.activeFormattingElements, none)
		copy(c.activeFormattingElements[bookmark+1:], c.activeFormattingElements[bookmark:])
		c.activeFormattingElements[bookmark] = clone
		c.records[clone].inAFE = true

		c.removeFromStack(c.stackIndex(fe))
		c.insertIntoStack(c.stackIndex(furthestBlock)+1, clone)

		closed = append(closed, fe)
		for _, i := range closed {
			c.emitEndTag(i, pos)
		}
		for _, i := range closed {
			c.release(i)
		}
	}
	return true
}

//go:generate stringer -type=insertionMode
type insertionMode uint

const (
	initial insertionMode = iota
	beforeHTML
	beforeHead
	inHead
	inHeadNoScript
	afterHead
	inBody
	text
	inTable
	inTableText
	inCaption
	inColumnGroup
	inTableBody
	inRow
	inCell
	inSelect
	inSelectInTable
	inTemplate
	afterBody
	inFrameset
	afterFrameset
	afterAfterBody
	afterAfterFrameset
)

// treeConstructionModeHandler processes a token in one insertion mode. It
// returns whether the token must be reprocessed, the mode to continue in
// and an optional parse error. A handler that stays in the current mode
// returns c.insertionMode, so modes can borrow each other's rules.
type treeConstructionModeHandler func(t *Token) (bool, insertionMode, parseError)

func (c *HTMLTreeConstructor) useRulesFor(t *Token, mode insertionMode) (bool, insertionMode, parseError) {
	return c.mappings[mode](t)
}

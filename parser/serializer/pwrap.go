package serializer

import (
	"github.com/heathj/gotidy/parser/dom"
)

// DefaultWrapContainers are the elements whose inline content is wrapped
// when no containers are configured.
var DefaultWrapContainers = []string{"body", "blockquote"}

// IsBlock reports whether an element ends the paragraph wrapper it would
// otherwise be placed in.
func IsBlock(ns dom.Namespace, name string) bool {
	if ns != dom.HTML {
		return false
	}
	switch name {
	case "address", "article", "aside", "blockquote", "center", "dd", "details", "dialog", "dir", "div",
		"dl", "dt", "fieldset", "figcaption", "figure", "footer", "form", "frameset", "h1", "h2", "h3",
		"h4", "h5", "h6", "header", "hgroup", "hr", "li", "listing", "main", "menu", "nav", "ol", "p",
		"plaintext", "pre", "search", "section", "summary", "table", "caption", "colgroup", "tbody",
		"thead", "tfoot", "tr", "td", "th", "ul", "xmp":
		return true
	}
	return false
}

// isNeutral reports elements that join an open wrapper but never open one.
func isNeutral(ns dom.Namespace, name string) bool {
	if ns != dom.HTML {
		return false
	}
	switch name {
	case "base", "link", "meta", "noframes", "script", "style", "template", "title":
		return true
	}
	return false
}

// PWrapHandler sits in front of another TreeHandler and puts runs of inline
// content of the configured containers into paragraph wrapper elements. A
// wrapper is a p element with Wrapper set. A block element closes it for
// new content; it ends together with its container. Content foster
// parented in front of a table that sits directly in a container gets a
// wrapper of its own in front of the table.
type PWrapHandler struct {
	next       dom.TreeHandler
	containers map[string]bool
	rootWraps  bool
	// open is the wrapper taking content, per container. The document root
	// uses the nil key.
	open map[*dom.Element]*dom.Element
	// fostered is the wrapper taking content in front of a table.
	fostered map[*dom.Element]*dom.Element
	// pending lists the wrappers of each container that have not ended.
	pending map[*dom.Element][]*dom.Element
	// tables maps each open table to its parent, nil for the root.
	tables map[*dom.Element]*dom.Element
	nextID int
}

// NewPWrapHandler wraps next. With no containers, DefaultWrapContainers is
// used.
func NewPWrapHandler(next dom.TreeHandler, containers ...string) *PWrapHandler {
	if len(containers) == 0 {
		containers = DefaultWrapContainers
	}
	h := &PWrapHandler{
		next:       next,
		containers: make(map[string]bool, len(containers)),
		open:       make(map[*dom.Element]*dom.Element),
		fostered:   make(map[*dom.Element]*dom.Element),
		pending:    make(map[*dom.Element][]*dom.Element),
		tables:     make(map[*dom.Element]*dom.Element),
	}
	for _, c := range containers {
		h.containers[c] = true
	}
	return h
}

// site is a place in a container where inline content gets wrapped:
// the end of the container, or in front of a table in it.
type site struct {
	container *dom.Element
	before    *dom.Element
}

func (h *PWrapHandler) isContainer(el *dom.Element) bool {
	return el != nil && el.Namespace == dom.HTML && h.containers[el.Name]
}

// siteOf returns the site an insertion lands on when it lands directly in
// a container.
func (h *PWrapHandler) siteOf(prep dom.Preposition, ref *dom.Element) (site, bool) {
	switch prep {
	case dom.Root:
		return site{}, h.rootWraps
	case dom.Under:
		return site{container: ref}, h.isContainer(ref)
	case dom.Before:
		parent, ok := h.tables[ref]
		if !ok {
			return site{}, false
		}
		if parent == nil {
			return site{before: ref}, h.rootWraps
		}
		return site{container: parent, before: ref}, h.isContainer(parent)
	}
	return site{}, false
}

func (h *PWrapHandler) wrapperAt(s site) (*dom.Element, bool) {
	if s.before != nil {
		w, ok := h.fostered[s.before]
		return w, ok
	}
	w, ok := h.open[s.container]
	return w, ok
}

func (h *PWrapHandler) openWrapper(s site, pos int) *dom.Element {
	if w, ok := h.wrapperAt(s); ok {
		return w
	}
	h.nextID--
	w := dom.NewElement(h.nextID, dom.HTML, "p", nil)
	w.Wrapper = true
	switch {
	case s.before != nil:
		h.next.InsertElement(dom.Before, s.before, w, false, pos)
		h.fostered[s.before] = w
	case s.container == nil:
		h.next.InsertElement(dom.Root, nil, w, false, pos)
		h.open[nil] = w
	default:
		h.next.InsertElement(dom.Under, s.container, w, false, pos)
		h.open[s.container] = w
	}
	h.pending[s.container] = append(h.pending[s.container], w)
	return w
}

// closeWrapper stops the wrapper at s from taking more content.
func (h *PWrapHandler) closeWrapper(s site) {
	if s.before != nil {
		delete(h.fostered, s.before)
		return
	}
	delete(h.open, s.container)
}

// endWrappers ends every wrapper of container.
func (h *PWrapHandler) endWrappers(container *dom.Element, pos int) {
	ws, ok := h.pending[container]
	if !ok {
		return
	}
	delete(h.pending, container)
	delete(h.open, container)
	for _, w := range ws {
		h.next.EndTag(w, pos)
	}
}

// track records the parent of a table as it is inserted or moved.
func (h *PWrapHandler) track(prep dom.Preposition, ref *dom.Element, el *dom.Element) {
	if !el.IsNamed(dom.HTML, "table") {
		return
	}
	switch prep {
	case dom.Root:
		h.tables[el] = nil
	case dom.Under:
		h.tables[el] = ref
	case dom.Before:
		if parent, ok := h.tables[ref]; ok {
			h.tables[el] = parent
		}
	}
}

func (h *PWrapHandler) StartDocument(fragment *dom.Element) {
	h.rootWraps = h.isContainer(fragment)
	h.next.StartDocument(fragment)
}

func (h *PWrapHandler) EndDocument(pos int) {
	h.endWrappers(nil, pos)
	h.next.EndDocument(pos)
}

func (h *PWrapHandler) Doctype(dt *dom.Doctype, quirks dom.QuirksMode, pos int) {
	h.next.Doctype(dt, quirks, pos)
}

func (h *PWrapHandler) InsertElement(prep dom.Preposition, ref *dom.Element, el *dom.Element, void bool, pos int) {
	if s, ok := h.siteOf(prep, ref); ok {
		switch {
		case IsBlock(el.Namespace, el.Name):
			h.closeWrapper(s)
		case isNeutral(el.Namespace, el.Name):
			if w, open := h.wrapperAt(s); open {
				h.next.InsertElement(dom.Under, w, el, void, pos)
				return
			}
		default:
			w := h.openWrapper(s, pos)
			h.next.InsertElement(dom.Under, w, el, void, pos)
			return
		}
	}
	if !void {
		h.track(prep, ref, el)
	}
	h.next.InsertElement(prep, ref, el, void, pos)
}

func (h *PWrapHandler) EndTag(el *dom.Element, pos int) {
	h.endWrappers(el, pos)
	delete(h.tables, el)
	delete(h.fostered, el)
	h.next.EndTag(el, pos)
}

func (h *PWrapHandler) Characters(prep dom.Preposition, ref *dom.Element, text string, pos, length int) {
	s, ok := h.siteOf(prep, ref)
	if !ok {
		h.next.Characters(prep, ref, text, pos, length)
		return
	}
	w, open := h.wrapperAt(s)
	if !open {
		if isBlank(text) {
			h.next.Characters(prep, ref, text, pos, length)
			return
		}
		w = h.openWrapper(s, pos)
	}
	h.next.Characters(dom.Under, w, text, pos, length)
}

func (h *PWrapHandler) Comment(prep dom.Preposition, ref *dom.Element, text string, pos int) {
	if s, ok := h.siteOf(prep, ref); ok {
		if w, open := h.wrapperAt(s); open {
			h.next.Comment(dom.Under, w, text, pos)
			return
		}
	}
	h.next.Comment(prep, ref, text, pos)
}

func (h *PWrapHandler) MergeAttributes(el *dom.Element, added []dom.Attr, pos int) {
	h.next.MergeAttributes(el, added, pos)
}

func (h *PWrapHandler) RemoveNode(el *dom.Element, pos int) {
	h.endWrappers(el, pos)
	h.next.RemoveNode(el, pos)
}

// ReparentChildren moves the children of el into newParent. When el is a
// container and newParent is not, the wrappers of el are unwrapped on the
// way and newParent, which takes their place, is wrapped instead.
func (h *PWrapHandler) ReparentChildren(el *dom.Element, newParent *dom.Element, pos int) {
	for table, parent := range h.tables {
		if parent == el {
			h.tables[table] = newParent
		}
	}
	if !h.isContainer(el) {
		h.next.ReparentChildren(el, newParent, pos)
		return
	}
	unwrap := !h.isContainer(newParent)
	if unwrap {
		for _, w := range h.pending[el] {
			w.Unwrapped = true
		}
	}
	h.endWrappers(el, pos)
	h.next.ReparentChildren(el, newParent, pos)
	if unwrap && !IsBlock(newParent.Namespace, newParent.Name) && !isNeutral(newParent.Namespace, newParent.Name) {
		w := h.openWrapper(site{container: el}, pos)
		h.next.InsertElement(dom.Under, w, newParent, false, pos)
	}
}

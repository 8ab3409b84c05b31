// Package xmltree builds an etree document from the tree-mutation events of
// a parse, for callers that post-process the result with XML tooling.
package xmltree

import (
	"github.com/beevik/etree"
	"github.com/heathj/gotidy/parser/dom"
)

// Handler is a dom.TreeHandler that materializes the parse as an
// etree.Document. Elements carry an xmlns attribute wherever their
// namespace differs from their parent's.
type Handler struct {
	doc    *etree.Document
	rootNS dom.Namespace
	nodes  map[*dom.Element]*etree.Element
	spaces map[*etree.Element]dom.Namespace
}

func New() *Handler {
	return &Handler{}
}

// Document returns the document built so far.
func (h *Handler) Document() *etree.Document {
	return h.doc
}

// String writes the document as XML.
func (h *Handler) String() (string, error) {
	return h.doc.WriteToString()
}

func (h *Handler) StartDocument(fragment *dom.Element) {
	h.doc = etree.NewDocument()
	h.rootNS = dom.NoNamespace
	if fragment != nil {
		h.rootNS = fragment.Namespace
	}
	h.nodes = make(map[*dom.Element]*etree.Element)
	h.spaces = make(map[*etree.Element]dom.Namespace)
}

func (h *Handler) EndDocument(pos int) {
	h.nodes, h.spaces = nil, nil
}

func (h *Handler) Doctype(dt *dom.Doctype, quirks dom.QuirksMode, pos int) {
	d := "DOCTYPE " + dt.Name
	if dt.HasPublicID {
		d += ` PUBLIC "` + dt.PublicID + `"`
	}
	if dt.HasSystemID {
		if !dt.HasPublicID {
			d += " SYSTEM"
		}
		d += ` "` + dt.SystemID + `"`
	}
	h.doc.CreateDirective(d)
}

func (h *Handler) element(el *dom.Element) *etree.Element {
	if e, ok := h.nodes[el]; ok {
		return e
	}
	e := etree.NewElement(el.Name)
	for i := 0; i < el.Attrs.Len(); i++ {
		attr := el.Attrs.At(i)
		switch attr.Prefix {
		case "":
			if attr.Name != "xmlns" {
				e.CreateAttr(attr.Name, attr.Value)
			}
		case "xml", "xmlns":
			e.CreateAttr(attr.Prefix+":"+attr.LocalName, attr.Value)
		default:
			e.CreateAttr(attr.Prefix+":"+attr.LocalName, attr.Value)
			e.CreateAttr("xmlns:"+attr.Prefix, attr.Namespace.URI())
		}
	}
	h.nodes[el] = e
	h.spaces[e] = el.Namespace
	return e
}

// parent returns the element an insertion goes into and the child index
// to insert at, or -1 to append.
func (h *Handler) parent(prep dom.Preposition, ref *dom.Element) (*etree.Element, int) {
	r, ok := h.nodes[ref]
	if prep == dom.Root || !ok {
		return &h.doc.Element, -1
	}
	if prep == dom.Before {
		if p := r.Parent(); p != nil {
			return p, r.Index()
		}
		return &h.doc.Element, -1
	}
	return r, -1
}

func place(parent *etree.Element, i int, t etree.Token) {
	if i < 0 {
		parent.AddChild(t)
		return
	}
	parent.InsertChildAt(i, t)
}

// declare sets xmlns on e when its namespace is not inherited from parent.
func (h *Handler) declare(parent *etree.Element, e *etree.Element, el *dom.Element) {
	e.RemoveAttr("xmlns")
	inherited, ok := h.spaces[parent]
	if !ok {
		inherited = h.rootNS
	}
	if inherited != el.Namespace {
		e.CreateAttr("xmlns", el.Namespace.URI())
	}
}

func (h *Handler) InsertElement(prep dom.Preposition, ref *dom.Element, el *dom.Element, void bool, pos int) {
	e := h.element(el)
	parent, i := h.parent(prep, ref)
	h.declare(parent, e, el)
	place(parent, i, e)
}

func (h *Handler) EndTag(el *dom.Element, pos int) {}

func (h *Handler) Characters(prep dom.Preposition, ref *dom.Element, text string, pos, length int) {
	parent, i := h.parent(prep, ref)
	place(parent, i, etree.NewText(text))
}

func (h *Handler) Comment(prep dom.Preposition, ref *dom.Element, text string, pos int) {
	parent, i := h.parent(prep, ref)
	place(parent, i, etree.NewComment(text))
}

func (h *Handler) MergeAttributes(el *dom.Element, added []dom.Attr, pos int) {
	e, ok := h.nodes[el]
	if !ok {
		return
	}
	for _, attr := range added {
		e.CreateAttr(attr.Name, attr.Value)
	}
}

func (h *Handler) RemoveNode(el *dom.Element, pos int) {
	e, ok := h.nodes[el]
	if !ok {
		return
	}
	if p := e.Parent(); p != nil {
		p.RemoveChild(e)
	}
}

func (h *Handler) ReparentChildren(el *dom.Element, newParent *dom.Element, pos int) {
	from := h.element(el)
	to := h.element(newParent)
	children := append([]etree.Token(nil), from.Child...)
	for _, c := range children {
		to.AddChild(c)
	}
	h.declare(from, to, newParent)
	from.AddChild(to)
}

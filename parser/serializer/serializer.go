// Package serializer turns the tree-mutation events of a parse into HTML
// text without building the whole tree. Only elements that are still open,
// or have open descendants, can change; everything else is already
// rendered.
package serializer

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
)

// Node is an element as the formatter sees it.
type Node struct {
	Namespace dom.Namespace
	Name      string
	Attrs     *dom.Attributes
	// Void is set for elements that were popped as soon as they were
	// inserted: HTML void elements and self-closing foreign elements.
	Void    bool
	Element *dom.Element

	// Data is free for the formatter to use, e.g. to carry facts about the
	// descendants of a node up to its ancestors.
	Data any

	parent     *Node
	children   []child
	ended      bool
	rendered   bool
	open       int
	start, end string
}

// Parent returns the nearest enclosing node, or nil at the top.
func (n *Node) Parent() *Node {
	return n.parent
}

// Empty reports whether n has no content at all.
func (n *Node) Empty() bool {
	for _, c := range n.children {
		if c.node != nil || c.text != "" {
			return false
		}
	}
	return true
}

// Blank reports whether n holds nothing but whitespace text.
func (n *Node) Blank() bool {
	for _, c := range n.children {
		if c.node != nil || !isBlank(c.text) {
			return false
		}
	}
	return true
}

// LeadingNewline reports whether the contents of n start with a line feed.
func (n *Node) LeadingNewline() bool {
	for _, c := range n.children {
		if c.node != nil {
			return false
		}
		if c.text != "" {
			return c.text[0] == '\n'
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.Trim(s, "\t\n\f\r ") == ""
}

// child is a piece of rendered text or a node.
type child struct {
	text string
	node *Node
}

func newNode(el *dom.Element) *Node {
	return &Node{
		Namespace: el.Namespace,
		Name:      el.Name,
		Attrs:     el.Attrs,
		Element:   el,
	}
}

func (n *Node) indexOf(c *Node) int {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].node == c {
			return i
		}
	}
	return -1
}

func (n *Node) insert(i int, c child) {
	if c.node != nil {
		c.node.parent = n
		if !c.node.rendered {
			n.open++
		}
	}
	if i < 0 || i >= len(n.children) {
		n.children = append(n.children, c)
		return
	}
	n.children = append(n.children, child{})
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

func (n *Node) detach(c *Node) {
	if i := n.indexOf(c); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
		if !c.rendered {
			n.open--
		}
	}
	c.parent = nil
}

// Serializer is a dom.TreeHandler that writes HTML through a Formatter.
// An element is rendered once it has ended and none of its children is
// still open. Rendering fixes its tags; the text is joined once, when the
// document ends.
type Serializer struct {
	f     Formatter
	root  *Node
	nodes map[*dom.Element]*Node
	out   string
}

// New returns a Serializer that renders with f.
func New(f Formatter) *Serializer {
	return &Serializer{f: f}
}

// String returns the serialized output. It is complete once EndDocument
// has been called.
func (s *Serializer) String() string {
	return s.out
}

func (s *Serializer) StartDocument(fragment *dom.Element) {
	s.root = &Node{}
	if fragment != nil {
		s.root = newNode(fragment)
	}
	s.nodes = make(map[*dom.Element]*Node)
	s.out = ""
	s.f.StartDocument(fragment)
}

// EndDocument ends every node that is still open, innermost first, and
// collects the output.
func (s *Serializer) EndDocument(pos int) {
	type frame struct {
		node *Node
		seen bool
	}
	stack := []frame{{node: s.root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.seen {
			n := top.node
			stack = stack[:len(stack)-1]
			if n != s.root {
				n.ended = true
				s.complete(n)
			}
			continue
		}
		top.seen = true
		n := top.node
		for i := len(n.children) - 1; i >= 0; i-- {
			if c := n.children[i].node; c != nil && !c.rendered {
				stack = append(stack, frame{node: c})
			}
		}
	}
	s.out = s.root.text()
	s.root.children = nil
	s.nodes = nil
}

// text writes the contents of n with every rendered descendant in place.
func (n *Node) text() string {
	type frame struct {
		node *Node
		next int
	}
	var sb strings.Builder
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.node.children) {
			if top.node != n {
				sb.WriteString(top.node.end)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		c := top.node.children[top.next]
		top.next++
		if c.node == nil {
			sb.WriteString(c.text)
			continue
		}
		sb.WriteString(c.node.start)
		stack = append(stack, frame{node: c.node})
	}
	return sb.String()
}

func (s *Serializer) Doctype(dt *dom.Doctype, quirks dom.QuirksMode, pos int) {
	s.root.insert(-1, child{text: s.f.Doctype(dt)})
}

// place finds the parent and child index an insertion event refers to.
// An index of -1 appends.
func (s *Serializer) place(prep dom.Preposition, ref *dom.Element) (*Node, int) {
	if prep == dom.Root || ref == nil {
		return s.root, -1
	}
	r, ok := s.nodes[ref]
	if !ok {
		return s.root, -1
	}
	if prep == dom.Under {
		return r, -1
	}
	if r.parent == nil {
		return s.root, -1
	}
	return r.parent, r.parent.indexOf(r)
}

func (s *Serializer) InsertElement(prep dom.Preposition, ref *dom.Element, el *dom.Element, void bool, pos int) {
	n, ok := s.nodes[el]
	if ok {
		if old := n.parent; old != nil {
			old.detach(n)
			s.complete(old)
		}
	} else {
		n = newNode(el)
		s.nodes[el] = n
	}
	parent, i := s.place(prep, ref)
	parent.insert(i, child{node: n})
	if void {
		n.Void = true
		n.ended = true
		s.complete(n)
	}
}

func (s *Serializer) EndTag(el *dom.Element, pos int) {
	n, ok := s.nodes[el]
	if !ok {
		return
	}
	n.ended = true
	s.complete(n)
}

func (s *Serializer) Characters(prep dom.Preposition, ref *dom.Element, text string, pos, length int) {
	parent, i := s.place(prep, ref)
	parent.insert(i, child{text: s.f.Characters(parent, text)})
}

func (s *Serializer) Comment(prep dom.Preposition, ref *dom.Element, text string, pos int) {
	parent, i := s.place(prep, ref)
	parent.insert(i, child{text: s.f.Comment(parent, text)})
}

func (s *Serializer) MergeAttributes(el *dom.Element, added []dom.Attr, pos int) {
	if n, ok := s.nodes[el]; ok {
		n.Attrs = el.Attrs
	}
}

// RemoveNode detaches el. Whatever it renders to later is dropped.
func (s *Serializer) RemoveNode(el *dom.Element, pos int) {
	n, ok := s.nodes[el]
	if !ok || n.parent == nil {
		return
	}
	old := n.parent
	old.detach(n)
	s.complete(old)
}

func (s *Serializer) ReparentChildren(el *dom.Element, newParent *dom.Element, pos int) {
	from, ok := s.nodes[el]
	if !ok {
		return
	}
	to, ok := s.nodes[newParent]
	if !ok {
		to = newNode(newParent)
		s.nodes[newParent] = to
	}
	for _, c := range from.children {
		to.insert(-1, c)
	}
	from.children = nil
	from.open = 0
	from.insert(-1, child{node: to})
}

// complete renders n and then each ancestor that became complete because
// of it.
func (s *Serializer) complete(n *Node) {
	for n != s.root && n.ended && n.open == 0 && !n.rendered {
		delete(s.nodes, n.Element)
		p := n.parent
		if p == nil {
			n.children = nil
			return
		}
		n.start, n.end = s.f.Element(p, n)
		n.rendered = true
		p.open--
		n = p
	}
}

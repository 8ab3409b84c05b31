package dom

import "golang.org/x/net/html/atom"

// Element is the record the tree builder hands to a TreeHandler. The same
// pointer identifies the element in every later event for it.
type Element struct {
	// ID is unique within one parse and increases in creation order.
	// Paragraph wrappers use negative IDs.
	ID        int
	Name      string
	Namespace Namespace
	Atom      atom.Atom
	Attrs     *Attributes

	// Wrapper marks a synthetic paragraph wrapper that has no source tag.
	Wrapper bool
	// Unwrapped marks a wrapper that ended up outside its container. Only
	// its contents are written.
	Unwrapped bool

	// UserData belongs to the TreeHandler.
	UserData any
}

// NewElement creates an element. Atom is only resolved for HTML elements.
func NewElement(id int, ns Namespace, name string, attrs *Attributes) *Element {
	e := &Element{ID: id, Name: name, Namespace: ns, Attrs: attrs}
	if ns == HTML {
		e.Atom = atom.Lookup([]byte(name))
	}
	return e
}

// Clone returns a fresh element with the same name and a shared attribute set.
func (e *Element) Clone(id int) *Element {
	return &Element{
		ID:        id,
		Name:      e.Name,
		Namespace: e.Namespace,
		Atom:      e.Atom,
		Attrs:     e.Attrs,
		Wrapper:   e.Wrapper,
	}
}

// Is reports whether e is the HTML element a.
func (e *Element) Is(a atom.Atom) bool {
	return e.Namespace == HTML && e.Atom == a
}

// IsNamed reports whether e has the given namespace and local name.
func (e *Element) IsNamed(ns Namespace, name string) bool {
	return e.Namespace == ns && e.Name == name
}

// IsVoid reports whether e can never have children.
func (e *Element) IsVoid() bool {
	return e.Namespace == HTML && IsVoid(e.Name)
}

// IsVoid reports whether an HTML element name is a void element.
func IsVoid(name string) bool {
	switch name {
	case "area", "base", "basefont", "bgsound", "br", "col", "embed", "frame",
		"hr", "image", "img", "input", "keygen", "link", "meta", "param",
		"source", "track", "wbr":
		return true
	}
	return false
}

// IsRawText reports whether the text children of an HTML element named
// name are serialized without escaping.
func IsRawText(name string, scripting bool) bool {
	switch name {
	case "script", "style", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	case "noscript":
		return scripting
	}
	return false
}

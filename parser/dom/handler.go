package dom

// Preposition says where a node goes relative to the reference element of
// an insertion event.
type Preposition uint8

const (
	// Under appends the node as the last child of the reference element.
	Under Preposition = iota
	// Before inserts the node immediately before the reference element.
	// Only foster parenting produces it.
	Before
	// Root appends the node to the document (or fragment) itself; the
	// reference element is nil.
	Root
)

func (p Preposition) String() string {
	switch p {
	case Under:
		return "under"
	case Before:
		return "before"
	case Root:
		return "root"
	}
	return "unknown"
}

// QuirksMode is the document compatibility mode picked from the DOCTYPE.
type QuirksMode uint8

const (
	NoQuirks QuirksMode = iota
	LimitedQuirks
	Quirks
)

// Doctype is the payload of a DOCTYPE token. HasPublicID and HasSystemID
// distinguish a missing identifier from an empty one.
type Doctype struct {
	Name        string
	PublicID    string
	SystemID    string
	HasPublicID bool
	HasSystemID bool
	ForceQuirks bool
}

// TreeHandler receives the tree-mutation events of one parse, in document
// order. Positions are byte offsets into the (preprocessed) input.
//
// An element that is removed from the stack of open elements gets EndTag.
// It only receives further children through ReparentChildren or foster
// parenting while one of its descendants is still open, so a handler may
// finalize an element once it has ended and none of its children is open.
type TreeHandler interface {
	// StartDocument is called once. fragment is the context element of a
	// fragment parse and nil for a full document.
	StartDocument(fragment *Element)
	EndDocument(pos int)
	Doctype(dt *Doctype, quirks QuirksMode, pos int)

	// InsertElement inserts el relative to ref. el may already be in the
	// tree, in which case it is moved. When void is true el was popped at
	// once: it has no children and no EndTag will follow.
	InsertElement(prep Preposition, ref *Element, el *Element, void bool, pos int)
	EndTag(el *Element, pos int)

	// Characters inserts text. Adjacent text from one run arrives as a
	// single call.
	Characters(prep Preposition, ref *Element, text string, pos, length int)
	Comment(prep Preposition, ref *Element, text string, pos int)

	// MergeAttributes is called after el.Attrs has been replaced by a set
	// that also holds the attributes of a repeated <html> or <body> tag.
	MergeAttributes(el *Element, added []Attr, pos int)

	// RemoveNode detaches el from its parent.
	RemoveNode(el *Element, pos int)

	// ReparentChildren moves every child of el into newParent, then
	// appends newParent to el. newParent may not have been seen before.
	ReparentChildren(el *Element, newParent *Element, pos int)
}

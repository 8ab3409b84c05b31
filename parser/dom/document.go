package dom

// Builder is a TreeHandler that materializes the event stream into a Node
// tree. Use it when the caller wants a tree instead of serialized text.
type Builder struct {
	Document *Node
	nodes    map[*Element]*Node
}

func NewBuilder() *Builder {
	return &Builder{nodes: make(map[*Element]*Node)}
}

func (b *Builder) node(el *Element) *Node {
	n, ok := b.nodes[el]
	if !ok {
		n = &Node{Type: ElementNode, Element: el}
		b.nodes[el] = n
	}
	return n
}

func (b *Builder) place(prep Preposition, ref *Element, n *Node) {
	switch prep {
	case Root:
		b.Document.AppendChild(n)
	case Before:
		r := b.node(ref)
		if r.Parent == nil {
			b.Document.AppendChild(n)
			return
		}
		r.Parent.InsertBefore(n, r)
	default:
		b.node(ref).AppendChild(n)
	}
}

func (b *Builder) StartDocument(fragment *Element) {
	b.Document = &Node{Type: DocumentNode}
	if fragment != nil {
		b.Document.Type = DocumentFragmentNode
	}
}

func (b *Builder) EndDocument(pos int) {
	b.nodes = make(map[*Element]*Node)
}

func (b *Builder) Doctype(dt *Doctype, quirks QuirksMode, pos int) {
	b.Document.Quirks = quirks
	b.Document.AppendChild(&Node{Type: DocumentTypeNode, Doctype: dt})
}

func (b *Builder) InsertElement(prep Preposition, ref *Element, el *Element, void bool, pos int) {
	b.place(prep, ref, b.node(el))
	if void {
		delete(b.nodes, el)
	}
}

func (b *Builder) EndTag(el *Element, pos int) {}

func (b *Builder) Characters(prep Preposition, ref *Element, text string, pos, length int) {
	b.place(prep, ref, &Node{Type: TextNode, Data: text})
}

func (b *Builder) Comment(prep Preposition, ref *Element, text string, pos int) {
	b.place(prep, ref, &Node{Type: CommentNode, Data: text})
}

func (b *Builder) MergeAttributes(el *Element, added []Attr, pos int) {}

func (b *Builder) RemoveNode(el *Element, pos int) {
	n := b.node(el)
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (b *Builder) ReparentChildren(el *Element, newParent *Element, pos int) {
	from, to := b.node(el), b.node(newParent)
	children := from.Children
	from.Children = nil
	for _, c := range children {
		c.Parent = nil
		to.AppendChild(c)
	}
	from.AppendChild(to)
}

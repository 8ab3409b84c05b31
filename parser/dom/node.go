package dom

import (
	"sort"
	"strings"
)

type NodeType uint16

const (
	DocumentNode NodeType = iota + 1
	DocumentFragmentNode
	DocumentTypeNode
	ElementNode
	TextNode
	CommentNode
)

// Node is a materialized tree node built by Builder.
type Node struct {
	Type     NodeType
	Element  *Element // ElementNode
	Data     string   // TextNode, CommentNode
	Doctype  *Doctype // DocumentTypeNode
	Quirks   QuirksMode
	Parent   *Node
	Children []*Node
}

func (n *Node) AppendChild(c *Node) {
	n.InsertBefore(c, nil)
}

// InsertBefore inserts c before ref, or appends it when ref is nil. A text
// node that lands next to another text node is merged into it.
func (n *Node) InsertBefore(c *Node, ref *Node) {
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	i := len(n.Children)
	if ref != nil {
		i = n.indexOf(ref)
		if i < 0 {
			i = len(n.Children)
		}
	}
	if c.Type == TextNode && i > 0 && n.Children[i-1].Type == TextNode {
		n.Children[i-1].Data += c.Data
		return
	}
	c.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
}

func (n *Node) RemoveChild(c *Node) {
	if i := n.indexOf(c); i >= 0 {
		n.Children = append(n.Children[:i], n.Children[i+1:]...)
	}
	c.Parent = nil
}

func (n *Node) indexOf(c *Node) int {
	for i, v := range n.Children {
		if v == c {
			return i
		}
	}
	return -1
}

func (n *Node) describe(depth int) string {
	switch n.Type {
	case ElementNode:
		e := n.Element
		var sb strings.Builder
		sb.WriteByte('<')
		if e.Namespace == SVG || e.Namespace == MathML {
			sb.WriteString(e.Namespace.String())
			sb.WriteByte(' ')
		}
		sb.WriteString(e.Name)
		sb.WriteByte('>')
		attrs := e.Attrs.Records()
		sort.Slice(attrs, func(i, j int) bool {
			return attrs[i].Name < attrs[j].Name
		})
		pad := linePrefix(depth + 1)
		for _, a := range attrs {
			sb.WriteByte('\n')
			sb.WriteString(pad)
			if a.Namespace != NoNamespace {
				sb.WriteString(a.Namespace.String())
				sb.WriteByte(' ')
				sb.WriteString(a.LocalName)
			} else {
				sb.WriteString(a.Name)
			}
			sb.WriteString(`="`)
			sb.WriteString(a.Value)
			sb.WriteByte('"')
		}
		return sb.String()
	case TextNode:
		return `"` + n.Data + `"`
	case CommentNode:
		return "<!-- " + n.Data + " -->"
	case DocumentTypeNode:
		d := "<!DOCTYPE " + n.Doctype.Name
		if n.Doctype.HasPublicID || n.Doctype.HasSystemID {
			d += ` "` + n.Doctype.PublicID + `" "` + n.Doctype.SystemID + `"`
		}
		return d + ">"
	case DocumentFragmentNode:
		return "#document-fragment"
	default:
		return "#document"
	}
}

func linePrefix(depth int) string {
	return "| " + strings.Repeat("  ", depth)
}

// String dumps the subtree in the html5lib tree-construction test format.
// The walk uses an explicit stack so deep trees do not grow the Go stack.
func (n *Node) String() string {
	type frame struct {
		node  *Node
		depth int
	}
	var sb strings.Builder
	var stack []frame
	if n.Type == DocumentNode || n.Type == DocumentFragmentNode {
		sb.WriteString(n.describe(0))
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{n.Children[i], 0})
		}
	} else {
		stack = append(stack, frame{n, 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(linePrefix(f.depth))
		sb.WriteString(f.node.describe(f.depth))
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return sb.String()
}

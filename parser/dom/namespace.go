package dom

import "strings"

// Namespace identifies the namespace of an element or attribute.
type Namespace uint8

const (
	NoNamespace Namespace = iota
	HTML
	MathML
	SVG
	XLink
	XML
	XMLNS
)

const (
	HTMLNamespaceURI   = "http://www.w3.org/1999/xhtml"
	MathMLNamespaceURI = "http://www.w3.org/1998/Math/MathML"
	SVGNamespaceURI    = "http://www.w3.org/2000/svg"
	XLinkNamespaceURI  = "http://www.w3.org/1999/xlink"
	XMLNamespaceURI    = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespaceURI  = "http://www.w3.org/2000/xmlns/"
)

// URI returns the namespace URI, or "" for NoNamespace.
func (n Namespace) URI() string {
	switch n {
	case HTML:
		return HTMLNamespaceURI
	case MathML:
		return MathMLNamespaceURI
	case SVG:
		return SVGNamespaceURI
	case XLink:
		return XLinkNamespaceURI
	case XML:
		return XMLNamespaceURI
	case XMLNS:
		return XMLNSNamespaceURI
	}
	return ""
}

// String returns the short name used in tree dumps ("svg", "math", ...).
func (n Namespace) String() string {
	switch n {
	case HTML:
		return "html"
	case MathML:
		return "math"
	case SVG:
		return "svg"
	case XLink:
		return "xlink"
	case XML:
		return "xml"
	case XMLNS:
		return "xmlns"
	}
	return ""
}

// ParseNamespace accepts either a short name or a namespace URI.
func ParseNamespace(s string) (Namespace, bool) {
	switch strings.TrimSpace(s) {
	case "", "html", HTMLNamespaceURI:
		return HTML, true
	case "math", "mathml", MathMLNamespaceURI:
		return MathML, true
	case "svg", SVGNamespaceURI:
		return SVG, true
	}
	return NoNamespace, false
}

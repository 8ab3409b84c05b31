package parser

import (
	"github.com/heathj/gotidy/parser/dom"
	a "golang.org/x/net/html/atom"
)

// OpenElements is a read-only view of the stack of open elements. At(0) is
// the root; Current is the top of the stack.
type OpenElements interface {
	Len() int
	At(i int) *dom.Element
	Current() *dom.Element
	Contains(ns dom.Namespace, name string) bool
}

// ReconstructionGuard is asked before active formatting elements are
// reconstructed. Returning true skips reconstruction for that token only;
// the formatting elements stay active and are reopened once the guard
// allows it.
type ReconstructionGuard func(OpenElements) bool

// SuppressInside returns a guard that holds reconstruction back while any
// HTML element with one of the given names is open.
func SuppressInside(names ...string) ReconstructionGuard {
	return func(open OpenElements) bool {
		for _, n := range names {
			if open.Contains(dom.HTML, n) {
				return true
			}
		}
		return false
	}
}

// openElements exposes the stack of open elements to a ReconstructionGuard.
type openElements struct {
	c *HTMLTreeConstructor
}

func (o openElements) Len() int {
	return len(o.c.stackOfOpenElements)
}

func (o openElements) At(i int) *dom.Element {
	return o.c.el(o.c.stackOfOpenElements[i])
}

func (o openElements) Current() *dom.Element {
	return o.c.current()
}

func (o openElements) Contains(ns dom.Namespace, name string) bool {
	if ns == dom.HTML {
		if tag := a.Lookup([]byte(name)); tag != 0 && o.c.openCount[tag] == 0 {
			return false
		}
	}
	for _, i := range o.c.stackOfOpenElements {
		if o.c.el(i).IsNamed(ns, name) {
			return true
		}
	}
	return false
}

package dom

import "strings"

// Attr is a single attribute record. Name is the qualified name as it will
// be serialized; Prefix, LocalName and Namespace are only set for the
// foreign attributes that get adjusted (xlink:href, xml:lang, xmlns, ...).
type Attr struct {
	Name      string
	Value     string
	Namespace Namespace
	Prefix    string
	LocalName string
}

// Attributes is an ordered attribute set. The first occurrence of a name
// wins; later duplicates are rejected by Set. A set is never modified once
// the tag that produced it has been emitted, so elements cloned during
// reconstruction and the adoption agency share the same *Attributes.
//
// A nil *Attributes behaves as an empty set.
type Attributes struct {
	list  []Attr
	index map[string]int
}

// NewAttributes returns an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{index: make(map[string]int)}
}

// AttributesFrom builds a set from name/value pairs, applying first-wins.
func AttributesFrom(pairs ...string) *Attributes {
	a := NewAttributes()
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	return a
}

// Set appends name=value and reports whether it was added. It returns false,
// leaving the existing value in place, when name is already present.
func (a *Attributes) Set(name, value string) bool {
	if _, ok := a.index[name]; ok {
		return false
	}
	a.index[name] = len(a.list)
	a.list = append(a.list, Attr{Name: name, Value: value, LocalName: name})
	return true
}

func (a *Attributes) Get(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	i, ok := a.index[name]
	if !ok {
		return "", false
	}
	return a.list[i].Value, true
}

func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// At returns the i'th attribute in source order.
func (a *Attributes) At(i int) Attr {
	return a.list[i]
}

// Map exposes the set as plain name/value pairs.
func (a *Attributes) Map() map[string]string {
	m := make(map[string]string, a.Len())
	for i := 0; i < a.Len(); i++ {
		m[a.list[i].Name] = a.list[i].Value
	}
	return m
}

// Records returns a copy of the namespace-resolved records in source order.
func (a *Attributes) Records() []Attr {
	if a.Len() == 0 {
		return nil
	}
	out := make([]Attr, len(a.list))
	copy(out, a.list)
	return out
}

// Merge returns a set holding every attribute of a followed by the
// attributes of other whose names a does not already have. Neither input is
// modified. When nothing new would be added, a itself is returned.
func (a *Attributes) Merge(other *Attributes) *Attributes {
	added := false
	for i := 0; i < other.Len(); i++ {
		if !a.Has(other.list[i].Name) {
			added = true
			break
		}
	}
	if !added {
		return a
	}
	merged := a.clone()
	for i := 0; i < other.Len(); i++ {
		attr := other.list[i]
		if _, ok := merged.index[attr.Name]; ok {
			continue
		}
		merged.index[attr.Name] = len(merged.list)
		merged.list = append(merged.list, attr)
	}
	return merged
}

// Missing returns the attributes of other that a does not have, in order.
func (a *Attributes) Missing(other *Attributes) []Attr {
	var out []Attr
	for i := 0; i < other.Len(); i++ {
		if !a.Has(other.list[i].Name) {
			out = append(out, other.list[i])
		}
	}
	return out
}

// Rename returns a set with names rewritten through table. Used for the
// SVG and MathML attribute case fixes. Returns a when nothing matches.
func (a *Attributes) Rename(table map[string]string) *Attributes {
	hit := false
	for i := 0; i < a.Len(); i++ {
		if _, ok := table[a.list[i].Name]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return a
	}
	out := NewAttributes()
	for _, attr := range a.list {
		if n, ok := table[attr.Name]; ok {
			attr.Name, attr.LocalName = n, n
		}
		if _, dup := out.index[attr.Name]; dup {
			continue
		}
		out.index[attr.Name] = len(out.list)
		out.list = append(out.list, attr)
	}
	return out
}

var foreignAttributes = map[string]Attr{
	"xlink:actuate": {Prefix: "xlink", LocalName: "actuate", Namespace: XLink},
	"xlink:arcrole": {Prefix: "xlink", LocalName: "arcrole", Namespace: XLink},
	"xlink:href":    {Prefix: "xlink", LocalName: "href", Namespace: XLink},
	"xlink:role":    {Prefix: "xlink", LocalName: "role", Namespace: XLink},
	"xlink:show":    {Prefix: "xlink", LocalName: "show", Namespace: XLink},
	"xlink:title":   {Prefix: "xlink", LocalName: "title", Namespace: XLink},
	"xlink:type":    {Prefix: "xlink", LocalName: "type", Namespace: XLink},
	"xml:lang":      {Prefix: "xml", LocalName: "lang", Namespace: XML},
	"xml:space":     {Prefix: "xml", LocalName: "space", Namespace: XML},
	"xmlns":         {LocalName: "xmlns", Namespace: XMLNS},
	"xmlns:xlink":   {Prefix: "xmlns", LocalName: "xlink", Namespace: XMLNS},
}

// AdjustForeign returns a set whose xlink:, xml: and xmlns attributes carry
// their namespace, prefix and local name. Returns a when nothing matches.
func (a *Attributes) AdjustForeign() *Attributes {
	hit := false
	for i := 0; i < a.Len(); i++ {
		if _, ok := foreignAttributes[a.list[i].Name]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return a
	}
	out := a.clone()
	for i, attr := range out.list {
		if rec, ok := foreignAttributes[attr.Name]; ok {
			out.list[i].Namespace = rec.Namespace
			out.list[i].Prefix = rec.Prefix
			out.list[i].LocalName = rec.LocalName
		}
	}
	return out
}

// String renders the set the way it appears inside a start tag, for logs.
func (a *Attributes) String() string {
	var sb strings.Builder
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(a.list[i].Name)
		sb.WriteString(`="`)
		sb.WriteString(a.list[i].Value)
		sb.WriteByte('"')
	}
	return sb.String()
}

func (a *Attributes) clone() *Attributes {
	out := &Attributes{
		list:  make([]Attr, a.Len(), a.Len()+4),
		index: make(map[string]int, a.Len()+4),
	}
	if a != nil {
		copy(out.list, a.list)
		for k, v := range a.index {
			out.index[k] = v
		}
	}
	return out
}

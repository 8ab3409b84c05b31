package parser

import (
	"strings"

	"github.com/heathj/gotidy/parser/dom"
	"golang.org/x/net/html/atom"
)

type tokenType uint

const (
	characterToken tokenType = iota
	startTagToken
	endTagToken
	endOfFileToken
	commentToken
	docTypeToken
)

func (t tokenType) String() string {
	switch t {
	case characterToken:
		return "Character"
	case startTagToken:
		return "StartTag"
	case endTagToken:
		return "EndTag"
	case endOfFileToken:
		return "EndOfFile"
	case commentToken:
		return "Comment"
	case docTypeToken:
		return "Doctype"
	}
	return "Unknown"
}

type tagType uint

const (
	startTag tagType = iota
	endTag
)

// Token is a concrete token that is ready to be emitted. Pos and Len give
// the byte range of the token in the preprocessed input.
type Token struct {
	TokenType        tokenType
	Attributes       *dom.Attributes
	TagName          string
	Atom             atom.Atom
	PublicIdentifier string
	SystemIdentifier string
	HasPublicID      bool
	HasSystemID      bool
	ForceQuirks      bool
	SelfClosing      bool
	Data             string
	Pos, Len         int
}

func (t *Token) doctype() *dom.Doctype {
	return &dom.Doctype{
		Name:        t.TagName,
		PublicID:    t.PublicIdentifier,
		SystemID:    t.SystemIdentifier,
		HasPublicID: t.HasPublicID,
		HasSystemID: t.HasSystemID,
		ForceQuirks: t.ForceQuirks,
	}
}

// TokenBuilder builds various tokens up during the tokenization
// phase.
type TokenBuilder struct {
	attributes             *dom.Attributes
	attributeKey           strings.Builder
	attributeValue         strings.Builder
	name                   strings.Builder
	data                   strings.Builder
	tempBuffer             strings.Builder
	publicID               strings.Builder
	systemID               strings.Builder
	hasPublicID            bool
	hasSystemID            bool
	selfClosing            bool
	forceQuirks            bool
	removeNextAttr         bool
	curTagType             tagType
	characterReferenceCode int
	start                  int
}

func newTokenBuilder() *TokenBuilder {
	return &TokenBuilder{attributes: dom.NewAttributes()}
}

// Reset clears everything but the temporary buffer, which outlives tags in
// the script data states. start is the offset of the construct's first byte.
func (t *TokenBuilder) Reset(start int) {
	t.attributes = dom.NewAttributes()
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.publicID.Reset()
	t.systemID.Reset()
	t.hasPublicID = false
	t.hasSystemID = false
	t.data.Reset()
	t.name.Reset()
	t.selfClosing = false
	t.forceQuirks = false
	t.removeNextAttr = false
	t.start = start
}

// EnableSelfClosing changes to the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.selfClosing = true
}

// EnableForceQuirks changes to the force-quirks flag to "set".
func (t *TokenBuilder) EnableForceQuirks() {
	t.forceQuirks = true
}

// StartPublicIdentifier marks the public identifier as present but empty.
func (t *TokenBuilder) StartPublicIdentifier() {
	t.publicID.Reset()
	t.hasPublicID = true
}

// StartSystemIdentifier marks the system identifier as present but empty.
func (t *TokenBuilder) StartSystemIdentifier() {
	t.systemID.Reset()
	t.hasSystemID = true
}

func (t *TokenBuilder) WritePublicIdentifier(r rune) {
	t.publicID.WriteRune(r)
}

func (t *TokenBuilder) WriteSystemIdentifier(r rune) {
	t.systemID.WriteRune(r)
}

// WriteAttributeName appends a character to the current
// attribute's name.
func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.attributeKey.WriteRune(r)
}

// WriteData appends a character to the current data section.
func (t *TokenBuilder) WriteData(r rune) {
	t.data.WriteRune(r)
}

// WriteAttributeValue appends a character to the current
// attribute's value.
func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.attributeValue.WriteRune(r)
}

// WriteAttributeValueString appends a decoded character reference to the
// current attribute's value.
func (t *TokenBuilder) WriteAttributeValueString(s string) {
	t.attributeValue.WriteString(s)
}

// RemoveDuplicateAttributeName checks if the current name is already
// in the list of committed attributes. If so, the attribute is dropped
// when it gets committed.
func (t *TokenBuilder) RemoveDuplicateAttributeName() bool {
	if t.attributes.Has(t.attributeKey.String()) {
		t.removeNextAttr = true
		return true
	}
	return false
}

// WriteName appends a character to the current name value.
func (t *TokenBuilder) WriteName(r rune) {
	t.name.WriteRune(r)
}

// CommitAttribute ends the creation of a key/value pair by copying the name
// and value fields into the attribute set and clearing the name and value
// fields.
func (t *TokenBuilder) CommitAttribute() {
	if !t.removeNextAttr {
		if k := t.attributeKey.String(); k != "" {
			t.attributes.Set(k, t.attributeValue.String())
		}
	}
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.removeNextAttr = false
}

// WriteTempBuffer appends a character to the temporary buffer of the current
// state.
func (t *TokenBuilder) WriteTempBuffer(r rune) {
	t.tempBuffer.WriteRune(r)
}

// ResetTempBuffer clears the temporary buffer to be used by some other state.
func (t *TokenBuilder) ResetTempBuffer() {
	t.tempBuffer.Reset()
}

// TempBuffer just returns the string version of the current buffer contents.
func (t *TokenBuilder) TempBuffer() string {
	return t.tempBuffer.String()
}

// SetCharRef sets the character reference code.
func (t *TokenBuilder) SetCharRef(i int) {
	t.characterReferenceCode = i
}

// GetCharRef returns the character reference code.
func (t *TokenBuilder) GetCharRef() int {
	return t.characterReferenceCode
}

// AccumulateCharRef shifts a digit into the character reference code. The
// code saturates above the Unicode range so long digit runs cannot overflow.
func (t *TokenBuilder) AccumulateCharRef(base, digit int) {
	if t.characterReferenceCode > 0x10FFFF {
		return
	}
	t.characterReferenceCode = t.characterReferenceCode*base + digit
}

// StartTagToken creates a start tag token from the builder
// contents.
func (t *TokenBuilder) StartTagToken(end int) Token {
	name := t.name.String()
	return Token{
		TokenType:   startTagToken,
		TagName:     name,
		Atom:        atom.Lookup([]byte(name)),
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
		Pos:         t.start,
		Len:         end - t.start,
	}
}

// EndTagToken creates an end tag token from the builder contents. End tags
// never carry attributes or the self-closing flag.
func (t *TokenBuilder) EndTagToken(end int) Token {
	name := t.name.String()
	return Token{
		TokenType: endTagToken,
		TagName:   name,
		Atom:      atom.Lookup([]byte(name)),
		Pos:       t.start,
		Len:       end - t.start,
	}
}

// EndOfFileToken create an end of file token.
func (t *TokenBuilder) EndOfFileToken(pos int) Token {
	return Token{
		TokenType: endOfFileToken,
		Pos:       pos,
	}
}

// CommentToken creates a comment token from the builder contents.
func (t *TokenBuilder) CommentToken(end int) Token {
	return Token{
		TokenType: commentToken,
		Data:      t.data.String(),
		Pos:       t.start,
		Len:       end - t.start,
	}
}

// DocTypeToken creates a doc type token from the builder contents.
func (t *TokenBuilder) DocTypeToken(end int) Token {
	return Token{
		TokenType:        docTypeToken,
		TagName:          t.name.String(),
		ForceQuirks:      t.forceQuirks,
		PublicIdentifier: t.publicID.String(),
		SystemIdentifier: t.systemID.String(),
		HasPublicID:      t.hasPublicID,
		HasSystemID:      t.hasSystemID,
		Pos:              t.start,
		Len:              end - t.start,
	}
}

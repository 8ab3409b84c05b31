package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is the cause of every configuration error returned by
// NewParser and Normalize.
var ErrInvalidConfig = errors.New("invalid parser configuration")

var (
	ErrNilHandler    = errors.New("nil tree handler")
	ErrAlreadyParsed = errors.New("parser already used")
)

type parseError string

const noError parseError = ""

// Tokenizer errors use the names from the HTML standard.
const (
	abruptClosingOfEmptyComment                     parseError = "abrupt-closing-of-empty-comment"
	abruptDoctypePublicIdentifier                   parseError = "abrupt-doctype-public-identifier"
	abruptDoctypeSystemIdentifier                   parseError = "abrupt-doctype-system-identifier"
	absenceOfDigitsInNumericCharacterReference      parseError = "absence-of-digits-in-numeric-character-reference"
	cdataInHTMLContent                              parseError = "cdata-in-html-content"
	characterReferenceOutsideUnicodeRange           parseError = "character-reference-outside-unicode-range"
	controlCharacterReference                       parseError = "control-character-reference"
	duplicateAttribute                              parseError = "duplicate-attribute"
	endTagWithAttributes                            parseError = "end-tag-with-attributes"
	endTagWithTrailingSolidus                       parseError = "end-tag-with-trailing-solidus"
	eofBeforeTagName                                parseError = "eof-before-tag-name"
	eofInCdata                                      parseError = "eof-in-cdata"
	eofInComment                                    parseError = "eof-in-comment"
	eofInDoctype                                    parseError = "eof-in-doctype"
	eofInScriptHTMLCommentLikeText                  parseError = "eof-in-script-html-comment-like-text"
	eofInTag                                        parseError = "eof-in-tag"
	incorrectlyClosedComment                        parseError = "incorrectly-closed-comment"
	incorrectlyOpenedComment                        parseError = "incorrectly-opened-comment"
	invalidCharacterSequenceAfterDoctypeName        parseError = "invalid-character-sequence-after-doctype-name"
	invalidFirstCharacterOfTagName                  parseError = "invalid-first-character-of-tag-name"
	missingAttributeValue                           parseError = "missing-attribute-value"
	missingDoctypeName                              parseError = "missing-doctype-name"
	missingDoctypePublicIdentifier                  parseError = "missing-doctype-public-identifier"
	missingDoctypeSystemIdentifier                  parseError = "missing-doctype-system-identifier"
	missingEndTagName                               parseError = "missing-end-tag-name"
	missingQuoteBeforeDoctypePublicIdentifier       parseError = "missing-quote-before-doctype-public-identifier"
	missingQuoteBeforeDoctypeSystemIdentifier       parseError = "missing-quote-before-doctype-system-identifier"
	missingSemicolonAfterCharacterReference         parseError = "missing-semicolon-after-character-reference"
	missingWhitespaceAfterDoctypePublicKeyword      parseError = "missing-whitespace-after-doctype-public-keyword"
	missingWhitespaceAfterDoctypeSystemKeyword      parseError = "missing-whitespace-after-doctype-system-keyword"
	missingWhitespaceBeforeDoctypeName              parseError = "missing-whitespace-before-doctype-name"
	missingWhitespaceBetweenAttributes              parseError = "missing-whitespace-between-attributes"
	missingWhitespaceBetweenDoctypeIdentifiers      parseError = "missing-whitespace-between-doctype-public-and-system-identifiers"
	nestedComment                                   parseError = "nested-comment"
	noncharacterCharacterReference                  parseError = "noncharacter-character-reference"
	nullCharacterReference                          parseError = "null-character-reference"
	surrogateCharacterReference                     parseError = "surrogate-character-reference"
	unexpectedCharacterAfterDoctypeSystemIdentifier parseError = "unexpected-character-after-doctype-system-identifier"
	unexpectedCharacterInAttributeName              parseError = "unexpected-character-in-attribute-name"
	unexpectedCharacterInUnquotedAttributeValue     parseError = "unexpected-character-in-unquoted-attribute-value"
	unexpectedEqualsSignBeforeAttributeName         parseError = "unexpected-equals-sign-before-attribute-name"
	unexpectedNullCharacter                         parseError = "unexpected-null-character"
	unexpectedQuestionMarkInsteadOfTagName          parseError = "unexpected-question-mark-instead-of-tag-name"
	unexpectedSolidusInTag                          parseError = "unexpected-solidus-in-tag"
	unknownNamedCharacterReference                  parseError = "unknown-named-character-reference"
)

// Tree construction errors. The standard does not name these.
const (
	unexpectedDoctype        parseError = "unexpected-doctype"
	missingDoctype           parseError = "missing-doctype"
	nonConformingDoctype     parseError = "non-conforming-doctype"
	unexpectedStartTag       parseError = "unexpected-start-tag"
	unexpectedEndTag         parseError = "unexpected-end-tag"
	unexpectedCharacter      parseError = "unexpected-character"
	unexpectedComment        parseError = "unexpected-comment"
	endTagTooEarly           parseError = "end-tag-too-early"
	misnestedTag             parseError = "misnested-tag"
	eofInElement             parseError = "eof-in-element"
	fosterParentedContent    parseError = "foster-parented-content"
	nonVoidSelfClosingTag    parseError = "non-void-html-element-start-tag-with-trailing-solidus"
	nestingTooDeep           parseError = "nesting-too-deep"
	unexpectedNullInTree     parseError = "unexpected-null-in-tree"
	unexpectedFormInTable    parseError = "unexpected-form-in-table"
	unexpectedEndOfTemplate  parseError = "unexpected-end-of-template"
	unexpectedContentInFrame parseError = "unexpected-content-in-frameset"
)

// unexpectedToken picks the tree construction error for a token that a
// mode has no place for.
func unexpectedToken(t *Token) parseError {
	switch t.TokenType {
	case startTagToken:
		return unexpectedStartTag
	case endTagToken:
		return unexpectedEndTag
	case characterToken:
		return unexpectedCharacter
	case commentToken:
		return unexpectedComment
	case docTypeToken:
		return unexpectedDoctype
	}
	return noError
}

// Diagnostic is one non-fatal parse error. Pos is a byte offset into the
// preprocessed input.
type Diagnostic struct {
	Code    string
	Message string
	Pos     int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s", d.Pos, d.Message)
}

func newDiagnostic(code parseError, pos int, detail string) Diagnostic {
	msg := string(code)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return Diagnostic{Code: string(code), Message: msg, Pos: pos}
}

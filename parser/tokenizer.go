package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// HTMLTokenizer holds state for the various state of the tokenizer.
type HTMLTokenizer struct {
	input                     string
	pos, cur, ltPos, refPos   int
	done                      bool
	returnState, currentState tokenizerState
	allowCDATA                bool
	emittedTokens             []Token
	tokenBuilder              *TokenBuilder
	lastEmittedStartTagName   string
	text                      strings.Builder
	textStart                 int
	ignoreNulls               bool
	ignoreCharRefs            bool
	report                    func(code parseError, pos int)
	log                       *logrus.Logger
	trace                     bool
}

// NewHTMLTokenizer creates an HTML tokenizer over a fully buffered input.
// report receives every tokenizer parse error; it may be nil.
func NewHTMLTokenizer(input string, cfg *htmlParserConfig, report func(parseError, int)) *HTMLTokenizer {
	if cfg == nil {
		c := newConfig(nil)
		cfg = &c
	}
	if !cfg.skipPreprocess {
		input = preprocess(input)
	}
	if report == nil {
		report = func(parseError, int) {}
	}
	return &HTMLTokenizer{
		input:          input,
		tokenBuilder:   newTokenBuilder(),
		ignoreNulls:    cfg.ignoreNulls,
		ignoreCharRefs: cfg.ignoreCharRefs,
		report:         report,
		log:            cfg.logger,
		trace:          cfg.logger.IsLevelEnabled(logrus.TraceLevel),
	}
}

// preprocess strips a leading byte order mark and normalizes CR and CRLF
// to LF.
func preprocess(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SetState switches the content model, e.g. to RCDATA after <textarea>.
func (p *HTMLTokenizer) SetState(s tokenizerState) {
	p.currentState = s
}

func (p *HTMLTokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case rcDataState:
		return p.rcDataStateParser
	case rawTextState:
		return p.rawTextStateParser
	case scriptDataState:
		return p.scriptDataStateParser
	case plaintextState:
		return p.plaintextStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case rcDataLessThanSignState:
		return p.rcDataLessThanSignStateParser
	case rcDataEndTagOpenState:
		return p.rcDataEndTagOpenStateParser
	case rcDataEndTagNameState:
		return p.rcDataEndTagNameStateParser
	case rawTextLessThanSignState:
		return p.rawTextLessThanSignStateParser
	case rawTextEndTagOpenState:
		return p.rawTextEndTagOpenStateParser
	case rawTextEndTagNameState:
		return p.rawTextEndTagNameStateParser
	case scriptDataLessThanSignState:
		return p.scriptDataLessThanSignStateParser
	case scriptDataEndTagOpenState:
		return p.scriptDataEndTagOpenStateParser
	case scriptDataEndTagNameState:
		return p.scriptDataEndTagNameStateParser
	case scriptDataEscapeStartState:
		return p.scriptDataEscapeStartStateParser
	case scriptDataEscapeStartDashState:
		return p.scriptDataEscapeStartDashStateParser
	case scriptDataEscapedState:
		return p.scriptDataEscapedStateParser
	case scriptDataEscapedDashState:
		return p.scriptDataEscapedDashStateParser
	case scriptDataEscapedDashDashState:
		return p.scriptDataEscapedDashDashStateParser
	case scriptDataEscapedLessThanSignState:
		return p.scriptDataEscapedLessThanSignStateParser
	case scriptDataEscapedEndTagOpenState:
		return p.scriptDataEscapedEndTagOpenStateParser
	case scriptDataEscapedEndTagNameState:
		return p.scriptDataEscapedEndTagNameStateParser
	case scriptDataDoubleEscapeStartState:
		return p.scriptDataDoubleEscapeStartStateParser
	case scriptDataDoubleEscapedState:
		return p.scriptDataDoubleEscapedStateParser
	case scriptDataDoubleEscapedDashState:
		return p.scriptDataDoubleEscapedDashStateParser
	case scriptDataDoubleEscapedDashDashState:
		return p.scriptDataDoubleEscapedDashDashStateParser
	case scriptDataDoubleEscapedLessThanSignState:
		return p.scriptDataDoubleEscapedLessThanSignStateParser
	case scriptDataDoubleEscapeEndState:
		return p.scriptDataDoubleEscapeEndStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case bogusCommentState:
		return p.bogusCommentStateParser
	case markupDeclarationOpenState:
		return p.markupDeclarationOpenStateParser
	case commentStartState:
		return p.commentStartStateParser
	case commentStartDashState:
		return p.commentStartDashStateParser
	case commentState:
		return p.commentStateParser
	case commentLessThanSignState:
		return p.commentLessThanSignStateParser
	case commentLessThanSignBangState:
		return p.commentLessThanSignBangStateParser
	case commentLessThanSignBangDashState:
		return p.commentLessThanSignBangDashStateParser
	case commentLessThanSignBangDashDashState:
		return p.commentLessThanSignBangDashDashStateParser
	case commentEndDashState:
		return p.commentEndDashStateParser
	case commentEndState:
		return p.commentEndStateParser
	case commentEndBangState:
		return p.commentEndBangStateParser
	case doctypeState:
		return p.doctypeStateParser
	case beforeDoctypeNameState:
		return p.beforeDoctypeNameStateParser
	case doctypeNameState:
		return p.doctypeNameStateParser
	case afterDoctypeNameState:
		return p.afterDoctypeNameStateParser
	case afterDoctypePublicKeywordState:
		return p.afterDoctypePublicKeywordStateParser
	case beforeDoctypePublicIdentifierState:
		return p.beforeDoctypePublicIdentifierStateParser
	case doctypePublicIdentifierDoubleQuotedState:
		return p.doctypePublicIdentifierDoubleQuotedStateParser
	case doctypePublicIdentifierSingleQuotedState:
		return p.doctypePublicIdentifierSingleQuotedStateParser
	case afterDoctypePublicIdentifierState:
		return p.afterDoctypePublicIdentifierStateParser
	case betweenDoctypePublicAndSystemIdentifiersState:
		return p.betweenDoctypePublicAndSystemIdentifiersStateParser
	case afterDoctypeSystemKeywordState:
		return p.afterDoctypeSystemKeywordStateParser
	case beforeDoctypeSystemIdentifierState:
		return p.beforeDoctypeSystemIdentifierStateParser
	case doctypeSystemIdentifierDoubleQuotedState:
		return p.doctypeSystemIdentifierDoubleQuotedStateParser
	case doctypeSystemIdentifierSingleQuotedState:
		return p.doctypeSystemIdentifierSingleQuotedStateParser
	case afterDoctypeSystemIdentifierState:
		return p.afterDoctypeSystemIdentifierStateParser
	case bogusDoctypeState:
		return p.bogusDoctypeStateParser
	case cdataSectionState:
		return p.cdataSectionStateParser
	case cdataSectionBracketState:
		return p.cdataSectionBracketStateParser
	case cdataSectionEndState:
		return p.cdataSectionEndStateParser
	case characterReferenceState:
		return p.characterReferenceStateParser
	case namedCharacterReferenceState:
		return p.namedCharacterReferenceStateParser
	case ambiguousAmpersandState:
		return p.ambiguousAmpersandStateParser
	case numericCharacterReferenceState:
		return p.numericCharacterReferenceStateParser
	case hexadecimalCharacterReferenceStartState:
		return p.hexadecimalCharacterReferenceStartStateParser
	case decimalCharacterReferenceStartState:
		return p.decimalCharacterReferenceStartStateParser
	case hexadecimalCharacterReferenceState:
		return p.hexadecimalCharacterReferenceStateParser
	case decimalCharacterReferenceState:
		return p.decimalCharacterReferenceStateParser
	}

	return nil
}

func isASCIIUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isASCIILower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isASCIIAlpha(r rune) bool {
	return isASCIIUpper(r) || isASCIILower(r)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIIAlphanumeric(r rune) bool {
	return isASCIIAlpha(r) || isASCIIDigit(r)
}

func isASCIIHexDigit(r rune) bool {
	return isASCIIDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func toLower(r rune) rune {
	if isASCIIUpper(r) {
		return r + 0x20
	}
	return r
}

func isTokenizerWhitespace(r rune) bool {
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return true
	}
	return false
}

func (p *HTMLTokenizer) err(code parseError) {
	p.report(code, p.cur)
}

// lookahead reports whether the input at the current rune starts with s,
// optionally ignoring ASCII case.
func (p *HTMLTokenizer) lookahead(s string, fold bool) bool {
	if len(p.input)-p.cur < len(s) {
		return false
	}
	got := p.input[p.cur : p.cur+len(s)]
	if fold {
		return strings.EqualFold(got, s)
	}
	return got == s
}

// consume skips n bytes starting at the current rune. The current rune
// counts as the first of them.
func (p *HTMLTokenizer) consume(n int) {
	p.pos = p.cur + n
}

func (p *HTMLTokenizer) isApprEndTagToken() bool {
	return p.lastEmittedStartTagName != "" && p.lastEmittedStartTagName == p.tokenBuilder.name.String()
}

// emitChar adds a character to the pending text run. Runs are emitted as
// one character token as soon as any other token is emitted.
func (p *HTMLTokenizer) emitChar(r rune) {
	if p.text.Len() == 0 {
		p.textStart = p.cur
	}
	p.text.WriteRune(r)
}

func (p *HTMLTokenizer) emitString(s string) {
	if s == "" {
		return
	}
	if p.text.Len() == 0 {
		p.textStart = p.cur
	}
	p.text.WriteString(s)
}

func (p *HTMLTokenizer) flushText(end int) {
	if p.text.Len() == 0 {
		return
	}
	n := end - p.textStart
	if n < 0 {
		n = 0
	}
	p.emittedTokens = append(p.emittedTokens, Token{
		TokenType: characterToken,
		Data:      p.text.String(),
		Pos:       p.textStart,
		Len:       n,
	})
	p.text.Reset()
}

func (p *HTMLTokenizer) emit(tokens ...Token) {
	for _, token := range tokens {
		p.flushText(token.Pos)
		if token.TokenType == startTagToken {
			p.lastEmittedStartTagName = token.TagName
		}
		p.emittedTokens = append(p.emittedTokens, token)
	}
}

func (p *HTMLTokenizer) emitEOF() {
	p.emit(p.tokenBuilder.EndOfFileToken(len(p.input)))
}

func (p *HTMLTokenizer) emitComment() {
	p.emit(p.tokenBuilder.CommentToken(p.pos))
}

func (p *HTMLTokenizer) emitDoctype() {
	p.emit(p.tokenBuilder.DocTypeToken(p.pos))
}

func (p *HTMLTokenizer) emitCurrentTag() tokenizerState {
	p.tokenBuilder.CommitAttribute()
	switch p.tokenBuilder.curTagType {
	case startTag:
		p.emit(p.tokenBuilder.StartTagToken(p.pos))
	case endTag:
		if p.tokenBuilder.attributes.Len() > 0 {
			p.err(endTagWithAttributes)
		}
		if p.tokenBuilder.selfClosing {
			p.err(endTagWithTrailingSolidus)
		}
		p.emit(p.tokenBuilder.EndTagToken(p.pos))
	}

	return dataState
}

// startAttribute commits the attribute in progress and begins a new one.
func (p *HTMLTokenizer) startAttribute() {
	p.tokenBuilder.CommitAttribute()
}

func (p *HTMLTokenizer) checkDuplicateAttribute() {
	if p.tokenBuilder.RemoveDuplicateAttributeName() {
		p.err(duplicateAttribute)
	}
}

func (p *HTMLTokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '&':
		if p.ignoreCharRefs {
			p.emitChar(r)
			return false, dataState
		}
		p.returnState = dataState
		p.refPos = p.cur
		return false, characterReferenceState
	case '<':
		p.ltPos = p.cur
		return false, tagOpenState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar(r)
		return false, dataState
	default:
		p.emitChar(r)
		return false, dataState
	}
}

func (p *HTMLTokenizer) rcDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitEOF()
		return false, rcDataState
	}
	switch r {
	case '&':
		if p.ignoreCharRefs {
			p.emitChar(r)
			return false, rcDataState
		}
		p.returnState = rcDataState
		p.refPos = p.cur
		return false, characterReferenceState
	case '<':
		p.ltPos = p.cur
		return false, rcDataLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, rcDataState
	default:
		p.emitChar(r)
		return false, rcDataState
	}
}

func (p *HTMLTokenizer) rawTextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitEOF()
		return false, rawTextState
	}
	switch r {
	case '<':
		p.ltPos = p.cur
		return false, rawTextLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, rawTextState
	default:
		p.emitChar(r)
		return false, rawTextState
	}
}

func (p *HTMLTokenizer) scriptDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitEOF()
		return false, scriptDataState
	}
	switch r {
	case '<':
		p.ltPos = p.cur
		return false, scriptDataLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataState
	default:
		p.emitChar(r)
		return false, scriptDataState
	}
}

func (p *HTMLTokenizer) plaintextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitEOF()
		return false, plaintextState
	}
	switch r {
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, plaintextState
	default:
		p.emitChar(r)
		return false, plaintextState
	}
}

func (p *HTMLTokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofBeforeTagName)
		p.emitChar('<')
		p.emitEOF()
		return false, dataState
	}
	switch {
	case r == '!':
		return false, markupDeclarationOpenState
	case r == '/':
		return false, endTagOpenState
	case isASCIIAlpha(r):
		p.tokenBuilder.Reset(p.ltPos)
		p.tokenBuilder.curTagType = startTag
		return true, tagNameState
	case r == '?':
		p.err(unexpectedQuestionMarkInsteadOfTagName)
		p.tokenBuilder.Reset(p.ltPos)
		return true, bogusCommentState
	default:
		p.err(invalidFirstCharacterOfTagName)
		p.emitChar('<')
		return true, dataState
	}
}

func (p *HTMLTokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofBeforeTagName)
		p.emitString("</")
		p.emitEOF()
		return false, dataState
	}
	switch {
	case isASCIIAlpha(r):
		p.tokenBuilder.Reset(p.ltPos)
		p.tokenBuilder.curTagType = endTag
		return true, tagNameState
	case r == '>':
		p.err(missingEndTagName)
		return false, dataState
	default:
		p.err(invalidFirstCharacterOfTagName)
		p.tokenBuilder.Reset(p.ltPos)
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInTag)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteName('\uFFFD')
		return false, tagNameState
	default:
		p.tokenBuilder.WriteName(toLower(r))
		return false, tagNameState
	}
}

// The RCDATA, RAWTEXT and script data end tag states only differ in the
// state they fall back to, so they share these helpers.

func (p *HTMLTokenizer) lessThanSign(r rune, eof bool, endTagOpen, fallback tokenizerState) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		return false, endTagOpen
	}
	p.emitChar('<')
	return true, fallback
}

func (p *HTMLTokenizer) endTagOpen(r rune, eof bool, endTagName, fallback tokenizerState) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.tokenBuilder.Reset(p.ltPos)
		p.tokenBuilder.curTagType = endTag
		return true, endTagName
	}
	p.emitString("</")
	return true, fallback
}

func (p *HTMLTokenizer) endTagName(r rune, eof bool, self, fallback tokenizerState) (bool, tokenizerState) {
	if !eof {
		switch {
		case isTokenizerWhitespace(r):
			if p.isApprEndTagToken() {
				return false, beforeAttributeNameState
			}
		case r == '/':
			if p.isApprEndTagToken() {
				return false, selfClosingStartTagState
			}
		case r == '>':
			if p.isApprEndTagToken() {
				return false, p.emitCurrentTag()
			}
		case isASCIIAlpha(r):
			p.tokenBuilder.WriteName(toLower(r))
			p.tokenBuilder.WriteTempBuffer(r)
			return false, self
		}
	}
	p.emitString("</")
	p.emitString(p.tokenBuilder.TempBuffer())
	return true, fallback
}

func (p *HTMLTokenizer) rcDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.lessThanSign(r, eof, rcDataEndTagOpenState, rcDataState)
}

func (p *HTMLTokenizer) rcDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpen(r, eof, rcDataEndTagNameState, rcDataState)
}

func (p *HTMLTokenizer) rcDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagName(r, eof, rcDataEndTagNameState, rcDataState)
}

func (p *HTMLTokenizer) rawTextLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.lessThanSign(r, eof, rawTextEndTagOpenState, rawTextState)
}

func (p *HTMLTokenizer) rawTextEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpen(r, eof, rawTextEndTagNameState, rawTextState)
}

func (p *HTMLTokenizer) rawTextEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagName(r, eof, rawTextEndTagNameState, rawTextState)
}

func (p *HTMLTokenizer) scriptDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '!' {
		p.emitString("<!")
		return false, scriptDataEscapeStartState
	}
	return p.lessThanSign(r, eof, scriptDataEndTagOpenState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpen(r, eof, scriptDataEndTagNameState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagName(r, eof, scriptDataEndTagNameState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEscapeStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		p.emitChar('-')
		return false, scriptDataEscapeStartDashState
	}
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEscapeStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		p.emitChar('-')
		return false, scriptDataEscapedDashDashState
	}
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEscapedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInScriptHTMLCommentLikeText)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataEscapedDashState
	case '<':
		p.ltPos = p.cur
		return false, scriptDataEscapedLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInScriptHTMLCommentLikeText)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataEscapedDashDashState
	case '<':
		p.ltPos = p.cur
		return false, scriptDataEscapedLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInScriptHTMLCommentLikeText)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataEscapedDashDashState
	case '<':
		p.ltPos = p.cur
		return false, scriptDataEscapedLessThanSignState
	case '>':
		p.emitChar('>')
		return false, scriptDataState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.tokenBuilder.ResetTempBuffer()
		p.emitChar('<')
		return true, scriptDataDoubleEscapeStartState
	}
	return p.lessThanSign(r, eof, scriptDataEscapedEndTagOpenState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataEscapedEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagOpen(r, eof, scriptDataEscapedEndTagNameState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataEscapedEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.endTagName(r, eof, scriptDataEscapedEndTagNameState, scriptDataEscapedState)
}

// doubleEscapeBoundary handles the shared logic of the double escape start
// and end states: "script" in the temporary buffer toggles between the two
// escape levels.
func (p *HTMLTokenizer) doubleEscapeBoundary(r rune, eof bool, self, onScript, otherwise tokenizerState) (bool, tokenizerState) {
	if eof {
		return true, otherwise
	}
	switch {
	case isTokenizerWhitespace(r) || r == '/' || r == '>':
		p.emitChar(r)
		if p.tokenBuilder.TempBuffer() == "script" {
			return false, onScript
		}
		return false, otherwise
	case isASCIIAlpha(r):
		p.tokenBuilder.WriteTempBuffer(toLower(r))
		p.emitChar(r)
		return false, self
	default:
		return true, otherwise
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapeStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doubleEscapeBoundary(r, eof, scriptDataDoubleEscapeStartState, scriptDataDoubleEscapedState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInScriptHTMLCommentLikeText)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataDoubleEscapedDashState
	case '<':
		p.emitChar('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInScriptHTMLCommentLikeText)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataDoubleEscapedDashDashState
	case '<':
		p.emitChar('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInScriptHTMLCommentLikeText)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		p.emitChar('-')
		return false, scriptDataDoubleEscapedDashDashState
	case '<':
		p.emitChar('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '>':
		p.emitChar('>')
		return false, scriptDataState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.emitChar('\uFFFD')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitChar(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		p.emitChar('/')
		return false, scriptDataDoubleEscapeEndState
	}
	return true, scriptDataDoubleEscapedState
}

func (p *HTMLTokenizer) scriptDataDoubleEscapeEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doubleEscapeBoundary(r, eof, scriptDataDoubleEscapeEndState, scriptDataEscapedState, scriptDataDoubleEscapedState)
}

func (p *HTMLTokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/', '>':
		return true, afterAttributeNameState
	case '=':
		p.err(unexpectedEqualsSignBeforeAttributeName)
		p.startAttribute()
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.startAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.checkDuplicateAttribute()
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ', '/', '>':
		p.checkDuplicateAttribute()
		return true, afterAttributeNameState
	case '=':
		p.checkDuplicateAttribute()
		return false, beforeAttributeValueState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeName('\uFFFD')
		return false, attributeNameState
	case '"', '\'', '<':
		p.err(unexpectedCharacterInAttributeName)
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.tokenBuilder.WriteAttributeName(toLower(r))
		return false, attributeNameState
	}
}

func (p *HTMLTokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInTag)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '=':
		return false, beforeAttributeValueState
	case '>':
		return false, p.emitCurrentTag()
	default:
		p.startAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, attributeValueUnquotedState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeValueState
	case '"':
		return false, attributeValueDoubleQuotedState
	case '\'':
		return false, attributeValueSingleQuotedState
	case '>':
		p.err(missingAttributeValue)
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) quotedAttributeValue(r rune, eof bool, quote rune, self tokenizerState) (bool, tokenizerState) {
	if eof {
		p.err(eofInTag)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case quote:
		return false, afterAttributeValueQuotedState
	case '&':
		if p.ignoreCharRefs {
			p.tokenBuilder.WriteAttributeValue(r)
			return false, self
		}
		p.returnState = self
		p.refPos = p.cur
		return false, characterReferenceState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, self
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, self
	}
}

func (p *HTMLTokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.quotedAttributeValue(r, eof, '"', attributeValueDoubleQuotedState)
}

func (p *HTMLTokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.quotedAttributeValue(r, eof, '\'', attributeValueSingleQuotedState)
}

func (p *HTMLTokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInTag)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '&':
		if p.ignoreCharRefs {
			p.tokenBuilder.WriteAttributeValue(r)
			return false, attributeValueUnquotedState
		}
		p.returnState = attributeValueUnquotedState
		p.refPos = p.cur
		return false, characterReferenceState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueUnquotedState
	case '"', '\'', '<', '=', '`':
		p.err(unexpectedCharacterInUnquotedAttributeValue)
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInTag)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	default:
		p.err(missingWhitespaceBetweenAttributes)
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInTag)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '>':
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	default:
		p.err(unexpectedSolidusInTag)
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) bogusCommentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitComment()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '>':
		p.emitComment()
		return false, dataState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteData('\uFFFD')
		return false, bogusCommentState
	default:
		p.tokenBuilder.WriteData(r)
		return false, bogusCommentState
	}
}

func (p *HTMLTokenizer) markupDeclarationOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case p.lookahead("--", false):
		p.consume(2)
		p.tokenBuilder.Reset(p.ltPos)
		return false, commentStartState
	case p.lookahead("DOCTYPE", true):
		p.consume(7)
		p.tokenBuilder.Reset(p.ltPos)
		return false, doctypeState
	case p.lookahead("[CDATA[", false):
		p.consume(7)
		if p.allowCDATA {
			return false, cdataSectionState
		}
		p.err(cdataInHTMLContent)
		p.tokenBuilder.Reset(p.ltPos)
		for _, c := range "[CDATA[" {
			p.tokenBuilder.WriteData(c)
		}
		return false, bogusCommentState
	default:
		p.err(incorrectlyOpenedComment)
		p.tokenBuilder.Reset(p.ltPos)
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) commentStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '-':
		return false, commentStartDashState
	case '>':
		p.err(abruptClosingOfEmptyComment)
		p.emitComment()
		return false, dataState
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInComment)
		p.emitComment()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		return false, commentEndState
	case '>':
		p.err(abruptClosingOfEmptyComment)
		p.emitComment()
		return false, dataState
	default:
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInComment)
		p.emitComment()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	case '-':
		return false, commentEndDashState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteData('\uFFFD')
		return false, commentState
	default:
		p.tokenBuilder.WriteData(r)
		return false, commentState
	}
}

func (p *HTMLTokenizer) commentLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '!':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignBangState
	case '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentLessThanSignBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashState
	}
	return true, commentState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashDashState
	}
	return true, commentEndDashState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r != '>' {
		p.err(nestedComment)
	}
	return true, commentEndState
}

func (p *HTMLTokenizer) commentEndDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInComment)
		p.emitComment()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		return false, commentEndState
	default:
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInComment)
		p.emitComment()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '>':
		p.emitComment()
		return false, dataState
	case '!':
		return false, commentEndBangState
	case '-':
		p.tokenBuilder.WriteData('-')
		return false, commentEndState
	default:
		p.tokenBuilder.WriteData('-')
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentEndBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInComment)
		p.emitComment()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '-':
		for _, c := range "--!" {
			p.tokenBuilder.WriteData(c)
		}
		return false, commentEndDashState
	case '>':
		p.err(incorrectlyClosedComment)
		p.emitComment()
		return false, dataState
	default:
		for _, c := range "--!" {
			p.tokenBuilder.WriteData(c)
		}
		return true, commentState
	}
}

// eofInDoctypeToken emits the DOCTYPE in progress with force-quirks set,
// followed by end of file.
func (p *HTMLTokenizer) eofInDoctypeToken() (bool, tokenizerState) {
	p.err(eofInDoctype)
	p.tokenBuilder.EnableForceQuirks()
	p.emitDoctype()
	p.emitEOF()
	return false, dataState
}

func (p *HTMLTokenizer) doctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeNameState
	case '>':
		return true, beforeDoctypeNameState
	default:
		p.err(missingWhitespaceBeforeDoctypeName)
		return true, beforeDoctypeNameState
	}
}

func (p *HTMLTokenizer) beforeDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeNameState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteName('\uFFFD')
		return false, doctypeNameState
	case '>':
		p.err(missingDoctypeName)
		p.tokenBuilder.EnableForceQuirks()
		p.emitDoctype()
		return false, dataState
	default:
		p.tokenBuilder.WriteName(toLower(r))
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) doctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeNameState
	case '>':
		p.emitDoctype()
		return false, dataState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		p.tokenBuilder.WriteName('\uFFFD')
		return false, doctypeNameState
	default:
		p.tokenBuilder.WriteName(toLower(r))
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) afterDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch {
	case isTokenizerWhitespace(r):
		return false, afterDoctypeNameState
	case r == '>':
		p.emitDoctype()
		return false, dataState
	case p.lookahead("PUBLIC", true):
		p.consume(6)
		return false, afterDoctypePublicKeywordState
	case p.lookahead("SYSTEM", true):
		p.consume(6)
		return false, afterDoctypeSystemKeywordState
	default:
		p.err(invalidCharacterSequenceAfterDoctypeName)
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

// doctypeIdentifierStart covers the states that expect an opening quote
// for the public or system identifier. keyword is set for the states right
// after the PUBLIC or SYSTEM keyword, where whitespace moves on to before.
func (p *HTMLTokenizer) doctypeIdentifierStart(r rune, eof bool, public, keyword bool, before tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	dq, sq := doctypeSystemIdentifierDoubleQuotedState, doctypeSystemIdentifierSingleQuotedState
	missingWS, missingID, missingQuote := missingWhitespaceAfterDoctypeSystemKeyword, missingDoctypeSystemIdentifier, missingQuoteBeforeDoctypeSystemIdentifier
	start := p.tokenBuilder.StartSystemIdentifier
	if public {
		dq, sq = doctypePublicIdentifierDoubleQuotedState, doctypePublicIdentifierSingleQuotedState
		missingWS, missingID, missingQuote = missingWhitespaceAfterDoctypePublicKeyword, missingDoctypePublicIdentifier, missingQuoteBeforeDoctypePublicIdentifier
		start = p.tokenBuilder.StartPublicIdentifier
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, before
	case '"', '\'':
		if keyword {
			p.err(missingWS)
		}
		start()
		if r == '"' {
			return false, dq
		}
		return false, sq
	case '>':
		p.err(missingID)
		p.tokenBuilder.EnableForceQuirks()
		p.emitDoctype()
		return false, dataState
	default:
		p.err(missingQuote)
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) afterDoctypePublicKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierStart(r, eof, true, true, beforeDoctypePublicIdentifierState)
}

func (p *HTMLTokenizer) beforeDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierStart(r, eof, true, false, beforeDoctypePublicIdentifierState)
}

func (p *HTMLTokenizer) afterDoctypeSystemKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierStart(r, eof, false, true, beforeDoctypeSystemIdentifierState)
}

func (p *HTMLTokenizer) beforeDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierStart(r, eof, false, false, beforeDoctypeSystemIdentifierState)
}

func (p *HTMLTokenizer) doctypeIdentifier(r rune, eof bool, public bool, quote rune, self, after tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	write, abrupt := p.tokenBuilder.WriteSystemIdentifier, abruptDoctypeSystemIdentifier
	if public {
		write, abrupt = p.tokenBuilder.WritePublicIdentifier, abruptDoctypePublicIdentifier
	}
	switch r {
	case quote:
		return false, after
	case '\u0000':
		p.err(unexpectedNullCharacter)
		write('\uFFFD')
		return false, self
	case '>':
		p.err(abrupt)
		p.tokenBuilder.EnableForceQuirks()
		p.emitDoctype()
		return false, dataState
	default:
		write(r)
		return false, self
	}
}

func (p *HTMLTokenizer) doctypePublicIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, true, '"', doctypePublicIdentifierDoubleQuotedState, afterDoctypePublicIdentifierState)
}

func (p *HTMLTokenizer) doctypePublicIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, true, '\'', doctypePublicIdentifierSingleQuotedState, afterDoctypePublicIdentifierState)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, false, '"', doctypeSystemIdentifierDoubleQuotedState, afterDoctypeSystemIdentifierState)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifier(r, eof, false, '\'', doctypeSystemIdentifierSingleQuotedState, afterDoctypeSystemIdentifierState)
}

func (p *HTMLTokenizer) afterDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case '>':
		p.emitDoctype()
		return false, dataState
	case '"', '\'':
		p.err(missingWhitespaceBetweenDoctypeIdentifiers)
		p.tokenBuilder.StartSystemIdentifier()
		if r == '"' {
			return false, doctypeSystemIdentifierDoubleQuotedState
		}
		return false, doctypeSystemIdentifierSingleQuotedState
	default:
		p.err(missingQuoteBeforeDoctypeSystemIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) betweenDoctypePublicAndSystemIdentifiersStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case '>':
		p.emitDoctype()
		return false, dataState
	case '"', '\'':
		p.tokenBuilder.StartSystemIdentifier()
		if r == '"' {
			return false, doctypeSystemIdentifierDoubleQuotedState
		}
		return false, doctypeSystemIdentifierSingleQuotedState
	default:
		p.err(missingQuoteBeforeDoctypeSystemIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) afterDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctypeToken()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeSystemIdentifierState
	case '>':
		p.emitDoctype()
		return false, dataState
	default:
		p.err(unexpectedCharacterAfterDoctypeSystemIdentifier)
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) bogusDoctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitDoctype()
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case '>':
		p.emitDoctype()
		return false, dataState
	case '\u0000':
		p.err(unexpectedNullCharacter)
		return false, bogusDoctypeState
	default:
		return false, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) cdataSectionStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.err(eofInCdata)
		p.emitEOF()
		return false, dataState
	}
	switch r {
	case ']':
		return false, cdataSectionBracketState
	default:
		p.emitChar(r)
		return false, cdataSectionState
	}
}

func (p *HTMLTokenizer) cdataSectionBracketStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == ']' {
		return false, cdataSectionEndState
	}
	p.emitChar(']')
	return true, cdataSectionState
}

func (p *HTMLTokenizer) cdataSectionEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof {
		switch r {
		case ']':
			p.emitChar(']')
			return false, cdataSectionEndState
		case '>':
			return false, dataState
		}
	}
	p.emitString("]]")
	return true, cdataSectionState
}

// a stateHandler is a func that takes in a rune and a bool representing the endoffile
// and returns whether to reconsume the rune and the next state to transition to.
type parserStateHandler func(in rune, eof bool) (bool, tokenizerState)

//go:generate stringer -type=tokenizerState
type tokenizerState uint

const (
	dataState tokenizerState = iota
	rcDataState
	rawTextState
	scriptDataState
	plaintextState
	tagOpenState
	endTagOpenState
	tagNameState
	rcDataLessThanSignState
	rcDataEndTagOpenState
	rcDataEndTagNameState
	rawTextLessThanSignState
	rawTextEndTagOpenState
	rawTextEndTagNameState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	scriptDataEscapeStartState
	scriptDataEscapeStartDashState
	scriptDataEscapedState
	scriptDataEscapedDashState
	scriptDataEscapedDashDashState
	scriptDataEscapedLessThanSignState
	scriptDataEscapedEndTagOpenState
	scriptDataEscapedEndTagNameState
	scriptDataDoubleEscapeStartState
	scriptDataDoubleEscapedState
	scriptDataDoubleEscapedDashState
	scriptDataDoubleEscapedDashDashState
	scriptDataDoubleEscapedLessThanSignState
	scriptDataDoubleEscapeEndState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	bogusCommentState
	markupDeclarationOpenState
	commentStartState
	commentStartDashState
	commentState
	commentLessThanSignState
	commentLessThanSignBangState
	commentLessThanSignBangDashState
	commentLessThanSignBangDashDashState
	commentEndDashState
	commentEndState
	commentEndBangState
	doctypeState
	beforeDoctypeNameState
	doctypeNameState
	afterDoctypeNameState
	afterDoctypePublicKeywordState
	beforeDoctypePublicIdentifierState
	doctypePublicIdentifierDoubleQuotedState
	doctypePublicIdentifierSingleQuotedState
	afterDoctypePublicIdentifierState
	betweenDoctypePublicAndSystemIdentifiersState
	afterDoctypeSystemKeywordState
	beforeDoctypeSystemIdentifierState
	doctypeSystemIdentifierDoubleQuotedState
	doctypeSystemIdentifierSingleQuotedState
	afterDoctypeSystemIdentifierState
	bogusDoctypeState
	cdataSectionState
	cdataSectionBracketState
	cdataSectionEndState
	characterReferenceState
	namedCharacterReferenceState
	ambiguousAmpersandState
	numericCharacterReferenceState
	hexadecimalCharacterReferenceStartState
	decimalCharacterReferenceStartState
	hexadecimalCharacterReferenceState
	decimalCharacterReferenceState
)

func (p *HTMLTokenizer) takeLastEmittedToken() *Token {
	if len(p.emittedTokens) > 0 {
		ret := p.emittedTokens[0]
		p.emittedTokens = p.emittedTokens[1:]
		if ret.TokenType == endOfFileToken {
			p.done = true
		}
		return &ret
	}
	return nil
}

// Next reports whether another token can be read.
func (p *HTMLTokenizer) Next() bool {
	return !p.done
}

// Token returns the next token. The tree constructor steers the tokenizer
// through progress: it switches the content model after elements such as
// <script> and decides whether CDATA sections are recognized.
func (p *HTMLTokenizer) Token(progress *Progress) *Token {
	if progress != nil {
		if progress.TokenizerState != nil {
			p.currentState = *progress.TokenizerState
		}
		p.allowCDATA = progress.AllowCDATA
	}

	// some states emit more than 1 token at a time and sometimes no tokens.
	// loop until at least 1 token is emitted and then take them.
	for {
		if token := p.takeLastEmittedToken(); token != nil {
			return token
		}
		if p.done {
			return nil
		}

		if p.pos >= len(p.input) {
			p.cur = len(p.input)
			p.processRune(utf8.RuneError, true)
			continue
		}
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		p.cur = p.pos
		p.pos += size
		p.processRune(r, false)
	}
}

func (p *HTMLTokenizer) processRune(r rune, eof bool) {
	if r == '\u0000' && !eof && p.ignoreNulls {
		return
	}
	reconsume := true
	for reconsume {
		prev := p.currentState
		reconsume, p.currentState = p.stateToParser(p.currentState)(r, eof)
		if p.trace && prev != p.currentState {
			p.log.WithFields(logrus.Fields{
				"pos":  p.cur,
				"from": prev,
				"to":   p.currentState,
			}).Trace("tokenizer state")
		}
	}
}

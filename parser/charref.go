package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// longestEntityName is the length of the longest named reference,
// CounterClockwiseContourIntegral; included.
const longestEntityName = 32

// longestLegacyEntityName is the length of the longest reference that may
// appear without a trailing semicolon, e.g. "middot".
const longestLegacyEntityName = 6

func isNonCharacter(code int) bool {
	if code >= 0xFDD0 && code <= 0xFDEF {
		return true
	}
	return code&0xFFFE == 0xFFFE && code <= 0x10FFFF
}

func isC0Control(code int) bool {
	return code >= 0x00 && code <= 0x1F
}

func isControl(code int) bool {
	return isC0Control(code) || (code >= 0x7F && code <= 0x9F)
}

func isASCIIWhitespace(code int) bool {
	switch code {
	case 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

func isSurrogate(code int) bool {
	return code >= 0xD800 && code <= 0xDFFF
}

func wasConsumedByAttribute(returnState tokenizerState) bool {
	switch returnState {
	case attributeValueDoubleQuotedState, attributeValueSingleQuotedState, attributeValueUnquotedState:
		return true
	}
	return false
}

// flushCodePointsAsCharacterReference sends decoded text to the attribute
// value or the text run, depending on where the reference started.
func (p *HTMLTokenizer) flushCodePointsAsCharacterReference(s string) {
	if wasConsumedByAttribute(p.returnState) {
		p.tokenBuilder.WriteAttributeValueString(s)
		return
	}
	if p.text.Len() == 0 {
		p.textStart = p.refPos
	}
	p.text.WriteString(s)
}

func (p *HTMLTokenizer) characterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.ResetTempBuffer()
	p.tokenBuilder.WriteTempBuffer('&')
	switch {
	case eof:
	case isASCIIAlphanumeric(r):
		return true, namedCharacterReferenceState
	case r == '#':
		p.tokenBuilder.WriteTempBuffer(r)
		return false, numericCharacterReferenceState
	}
	p.flushCodePointsAsCharacterReference(p.tokenBuilder.TempBuffer())
	return true, p.returnState
}

// decodesFully reports whether name, without its leading ampersand, is a
// complete named reference. A partial match leaves the tail of name
// undecoded, so the last byte survives unescaping.
func decodesFully(name string) (string, bool) {
	u := html.UnescapeString("&" + name)
	if u == "&"+name {
		return "", false
	}
	if name != "semi;" && u[len(u)-1] == name[len(name)-1] {
		return "", false
	}
	return u, true
}

// matchNamedReference finds the longest named reference at the start of s.
func matchNamedReference(s string) (name, decoded string) {
	end := 0
	for end < len(s) && isASCIIAlphanumeric(rune(s[end])) {
		end++
	}
	run := s[:end]
	if end < len(s) && s[end] == ';' && end+1 <= longestEntityName {
		if u, ok := decodesFully(run + ";"); ok {
			return run + ";", u
		}
	}
	j := len(run)
	if j > longestLegacyEntityName {
		j = longestLegacyEntityName
	}
	for ; j > 1; j-- {
		if u, ok := decodesFully(run[:j]); ok {
			return run[:j], u
		}
	}
	return "", ""
}

func (p *HTMLTokenizer) namedCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	name, decoded := matchNamedReference(p.input[p.cur:])
	if name == "" {
		p.flushCodePointsAsCharacterReference(p.tokenBuilder.TempBuffer())
		return true, ambiguousAmpersandState
	}

	p.consume(len(name))
	semicolon := strings.HasSuffix(name, ";")
	if !semicolon && wasConsumedByAttribute(p.returnState) && p.pos < len(p.input) {
		if next := rune(p.input[p.pos]); next == '=' || isASCIIAlphanumeric(next) {
			p.flushCodePointsAsCharacterReference("&" + name)
			return false, p.returnState
		}
	}
	if !semicolon {
		p.err(missingSemicolonAfterCharacterReference)
	}
	p.flushCodePointsAsCharacterReference(decoded)
	return false, p.returnState
}

func (p *HTMLTokenizer) ambiguousAmpersandStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
	case isASCIIAlphanumeric(r):
		p.flushCodePointsAsCharacterReference(string(r))
		return false, ambiguousAmpersandState
	case r == ';':
		p.err(unknownNamedCharacterReference)
	}
	return true, p.returnState
}

func (p *HTMLTokenizer) numericCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.SetCharRef(0)
	if !eof && (r == 'x' || r == 'X') {
		p.tokenBuilder.WriteTempBuffer(r)
		return false, hexadecimalCharacterReferenceStartState
	}
	return true, decimalCharacterReferenceStartState
}

func (p *HTMLTokenizer) hexadecimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIHexDigit(r) {
		return true, hexadecimalCharacterReferenceState
	}
	p.err(absenceOfDigitsInNumericCharacterReference)
	p.flushCodePointsAsCharacterReference(p.tokenBuilder.TempBuffer())
	return true, p.returnState
}

func (p *HTMLTokenizer) decimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIDigit(r) {
		return true, decimalCharacterReferenceState
	}
	p.err(absenceOfDigitsInNumericCharacterReference)
	p.flushCodePointsAsCharacterReference(p.tokenBuilder.TempBuffer())
	return true, p.returnState
}

func (p *HTMLTokenizer) hexadecimalCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
	case isASCIIDigit(r):
		p.tokenBuilder.AccumulateCharRef(16, int(r-'0'))
		return false, hexadecimalCharacterReferenceState
	case r >= 'a' && r <= 'f':
		p.tokenBuilder.AccumulateCharRef(16, int(r-'a'+10))
		return false, hexadecimalCharacterReferenceState
	case r >= 'A' && r <= 'F':
		p.tokenBuilder.AccumulateCharRef(16, int(r-'A'+10))
		return false, hexadecimalCharacterReferenceState
	case r == ';':
		p.finishNumericCharacterReference()
		return false, p.returnState
	}
	p.err(missingSemicolonAfterCharacterReference)
	p.finishNumericCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) decimalCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
	case isASCIIDigit(r):
		p.tokenBuilder.AccumulateCharRef(10, int(r-'0'))
		return false, decimalCharacterReferenceState
	case r == ';':
		p.finishNumericCharacterReference()
		return false, p.returnState
	}
	p.err(missingSemicolonAfterCharacterReference)
	p.finishNumericCharacterReference()
	return true, p.returnState
}

var numericCharacterReferenceEndStateTable = map[int]rune{
	0x80: 0x20AC,
	0x82: 0x201A,
	0x83: 0x0192,
	0x84: 0x201E,
	0x85: 0x2026,
	0x86: 0x2020,
	0x87: 0x2021,
	0x88: 0x02C6,
	0x89: 0x2030,
	0x8A: 0x0160,
	0x8B: 0x2039,
	0x8C: 0x0152,
	0x8E: 0x017D,
	0x91: 0x2018,
	0x92: 0x2019,
	0x93: 0x201C,
	0x94: 0x201D,
	0x95: 0x2022,
	0x96: 0x2013,
	0x97: 0x2014,
	0x98: 0x02DC,
	0x99: 0x2122,
	0x9A: 0x0161,
	0x9B: 0x203A,
	0x9C: 0x0153,
	0x9E: 0x017E,
	0x9F: 0x0178,
}

// finishNumericCharacterReference validates the accumulated code point and
// flushes it.
func (p *HTMLTokenizer) finishNumericCharacterReference() {
	code := p.tokenBuilder.GetCharRef()
	switch {
	case code == 0:
		p.err(nullCharacterReference)
		code = 0xFFFD
	case code > 0x10FFFF:
		p.err(characterReferenceOutsideUnicodeRange)
		code = 0xFFFD
	case isSurrogate(code):
		p.err(surrogateCharacterReference)
		code = 0xFFFD
	case isNonCharacter(code):
		p.err(noncharacterCharacterReference)
	case code == 0x0D || (isControl(code) && !isASCIIWhitespace(code)):
		p.err(controlCharacterReference)
		if mapped, ok := numericCharacterReferenceEndStateTable[code]; ok {
			code = int(mapped)
		}
	}
	p.flushCodePointsAsCharacterReference(string(rune(code)))
}

package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/heathj/gotidy/parser/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenize runs the tokenizer over in from the given state and returns every
// token, EOF included, plus the parse errors in the order they were raised.
func tokenize(t *testing.T, in string, state tokenizerState, lastStartTag string, opts ...Option) ([]Token, []parseError) {
	t.Helper()
	cfg := newConfig(opts)
	var errs []parseError
	p := NewHTMLTokenizer(in, &cfg, func(code parseError, pos int) {
		errs = append(errs, code)
	})
	p.SetState(state)
	p.lastEmittedStartTagName = lastStartTag
	var tokens []Token
	for p.Next() {
		tok := p.Token(nil)
		if tok == nil {
			break
		}
		tokens = append(tokens, *tok)
	}
	require.NotEmpty(t, tokens)
	require.Equal(t, endOfFileToken, tokens[len(tokens)-1].TokenType)
	return tokens, errs
}

var tokenCmp = cmp.Options{
	cmpopts.IgnoreFields(Token{}, "Pos", "Len", "Atom"),
	cmp.Comparer(func(a, b *dom.Attributes) bool {
		return cmp.Equal(a.Map(), b.Map())
	}),
}

type tokezinerAttributeAccuracyTestcase struct {
	inHTML string            // snippet of HTML to tokenize (should only be one element)
	attrs  map[string]string // expected attributes to collected from the first token that is produced
}

var tokenizerAttributeAccuracyTests = []tokezinerAttributeAccuracyTestcase{
	{"<head></head>", map[string]string{}},
	{"<script src='123' onload='test'></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<a href='https://google.com' onclick='alert(1)'>Click this</a>", map[string]string{
		"href":    "https://google.com",
		"onclick": "alert(1)",
	}},
	{"<script src='123' src='456'></script>", map[string]string{
		"src": "123",
	}},
	{"<script src=123 onload=test></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script src='123' onload='test' ></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script =src='123'onload='test' ></script>", map[string]string{
		"=src":   "123",
		"onload": "test",
	}},
	{"<script src></script>", map[string]string{
		"src": "",
	}},
	{"<script src test></script>", map[string]string{
		"src":  "",
		"test": "",
	}},
	{"<script 'asd></script>", map[string]string{
		"'asd": "",
	}},
	{"<script <asd></script>", map[string]string{
		"<asd": "",
	}},
	{"<script ABC=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<script abc='\u0000123'></script>", map[string]string{
		"abc": "\uFFFD123",
	}},
	{"<script abc=></script>", map[string]string{
		"abc": "",
	}},
	{"<script\tabc=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<a title='x &amp; y' alt=\"&lt;\">", map[string]string{
		"title": "x & y",
		"alt":   "<",
	}},
	{"<a href='?a=1&copy=2'>", map[string]string{
		"href": "?a=1&copy=2",
	}},
}

// TestTokenizerAttributeAccuracy just makes sure that we have the
// correct number attribute names and values
func TestTokenizerAttributeAccuracy(t *testing.T) {
	for _, tt := range tokenizerAttributeAccuracyTests {
		runTestTokenizerAttributeAccuracy(tt, t)
	}
}

// helper function to parallelize the above test case.
func runTestTokenizerAttributeAccuracy(tt tokezinerAttributeAccuracyTestcase, t *testing.T) {
	t.Run(tt.inHTML, func(t *testing.T) {
		t.Parallel()
		tokens, _ := tokenize(t, tt.inHTML, dataState, "")
		first := tokens[0]
		require.Equal(t, startTagToken, first.TokenType)
		assert.Equal(t, tt.attrs, first.Attributes.Map())
	})
}

type stateMachineTestCase struct {
	inRune            rune           // the rune to pass to the startingState
	startingState     tokenizerState // the state to start from
	shouldReconsume   bool           // the expectation if the next state should reconsume
	nextExpectedState tokenizerState // the next state
}

// TestStateParsers checks single transitions of the state machine.
func TestStateParsers(t *testing.T) {
	stateParserTests := []stateMachineTestCase{
		{'&', dataState, false, characterReferenceState},
		{'<', dataState, false, tagOpenState},
		{'\u0000', dataState, false, dataState},
		{'a', dataState, false, dataState},
		{'1', dataState, false, dataState},

		{'&', rcDataState, false, characterReferenceState},
		{'<', rcDataState, false, rcDataLessThanSignState},
		{'\u0000', rcDataState, false, rcDataState},
		{'#', rcDataState, false, rcDataState},

		{'<', rawTextState, false, rawTextLessThanSignState},
		{'&', rawTextState, false, rawTextState},
		{'a', rawTextState, false, rawTextState},

		{'<', scriptDataState, false, scriptDataLessThanSignState},
		{'\u0000', scriptDataState, false, scriptDataState},

		{'<', plaintextState, false, plaintextState},
		{'!', plaintextState, false, plaintextState},

		{'!', tagOpenState, false, markupDeclarationOpenState},
		{'/', tagOpenState, false, endTagOpenState},
		{'a', tagOpenState, true, tagNameState},
		{'Z', tagOpenState, true, tagNameState},
		{'?', tagOpenState, true, bogusCommentState},
		{'1', tagOpenState, true, dataState},

		{'a', endTagOpenState, true, tagNameState},
		{'>', endTagOpenState, false, dataState},
		{'1', endTagOpenState, true, bogusCommentState},

		{' ', tagNameState, false, beforeAttributeNameState},
		{'/', tagNameState, false, selfClosingStartTagState},
		{'a', tagNameState, false, tagNameState},

		{'/', rcDataLessThanSignState, false, rcDataEndTagOpenState},
		{'a', rcDataLessThanSignState, true, rcDataState},
		{'/', rawTextLessThanSignState, false, rawTextEndTagOpenState},
		{'a', rawTextLessThanSignState, true, rawTextState},

		{' ', beforeAttributeNameState, false, beforeAttributeNameState},
		{'/', beforeAttributeNameState, true, afterAttributeNameState},
		{'>', beforeAttributeNameState, true, afterAttributeNameState},
		{'=', beforeAttributeNameState, false, attributeNameState},
		{'a', beforeAttributeNameState, true, attributeNameState},

		{' ', attributeNameState, true, afterAttributeNameState},
		{'=', attributeNameState, false, beforeAttributeValueState},
		{'a', attributeNameState, false, attributeNameState},

		{' ', afterAttributeNameState, false, afterAttributeNameState},
		{'/', afterAttributeNameState, false, selfClosingStartTagState},
		{'=', afterAttributeNameState, false, beforeAttributeValueState},
		{'a', afterAttributeNameState, true, attributeNameState},

		{'"', beforeAttributeValueState, false, attributeValueDoubleQuotedState},
		{'\'', beforeAttributeValueState, false, attributeValueSingleQuotedState},
		{'a', beforeAttributeValueState, true, attributeValueUnquotedState},

		{'"', attributeValueDoubleQuotedState, false, afterAttributeValueQuotedState},
		{'&', attributeValueDoubleQuotedState, false, characterReferenceState},
		{'\'', attributeValueDoubleQuotedState, false, attributeValueDoubleQuotedState},
		{'\'', attributeValueSingleQuotedState, false, afterAttributeValueQuotedState},
		{' ', attributeValueUnquotedState, false, beforeAttributeNameState},
		{'&', attributeValueUnquotedState, false, characterReferenceState},

		{' ', afterAttributeValueQuotedState, false, beforeAttributeNameState},
		{'/', afterAttributeValueQuotedState, false, selfClosingStartTagState},
		{'a', afterAttributeValueQuotedState, true, beforeAttributeNameState},

		{'a', selfClosingStartTagState, true, beforeAttributeNameState},

		{'a', bogusCommentState, false, bogusCommentState},
		{'>', bogusCommentState, false, dataState},

		{'-', commentStartState, false, commentStartDashState},
		{'>', commentStartState, false, dataState},
		{'a', commentStartState, true, commentState},
		{'-', commentStartDashState, false, commentEndState},
		{'a', commentStartDashState, true, commentState},
		{'<', commentState, false, commentLessThanSignState},
		{'-', commentState, false, commentEndDashState},
		{'a', commentState, false, commentState},
		{'!', commentLessThanSignState, false, commentLessThanSignBangState},
		{'a', commentLessThanSignState, true, commentState},
		{'-', commentEndDashState, false, commentEndState},
		{'a', commentEndDashState, true, commentState},
		{'>', commentEndState, false, dataState},
		{'!', commentEndState, false, commentEndBangState},
		{'-', commentEndState, false, commentEndState},
		{'a', commentEndState, true, commentState},
		{'-', commentEndBangState, false, commentEndDashState},
		{'>', commentEndBangState, false, dataState},

		{'#', characterReferenceState, false, numericCharacterReferenceState},
		{'a', characterReferenceState, true, namedCharacterReferenceState},
		{'x', numericCharacterReferenceState, false, hexadecimalCharacterReferenceStartState},
		{'X', numericCharacterReferenceState, false, hexadecimalCharacterReferenceStartState},
		{'1', numericCharacterReferenceState, true, decimalCharacterReferenceStartState},
		{'1', decimalCharacterReferenceState, false, decimalCharacterReferenceState},
		{'f', hexadecimalCharacterReferenceState, false, hexadecimalCharacterReferenceState},
	}

	for _, tt := range stateParserTests {
		runStateParserTest(tt, t)
	}
}

// helper function to parallelize the above test case
func runStateParserTest(testcase stateMachineTestCase, t *testing.T) {
	testName := fmt.Sprintf("%s-%#U", testcase.startingState, testcase.inRune)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer("", nil, nil)
		p.returnState = dataState
		reconsume, state := p.stateToParser(testcase.startingState)(testcase.inRune, false)
		assert.Equal(t, testcase.nextExpectedState, state)
		assert.Equal(t, testcase.shouldReconsume, reconsume)
	})
}

type parserStatefulnessTestCase struct {
	inHTML     string                                // the HTML to tokenize
	startState tokenizerState                        // the starting state of the tokenizer
	testFunc   func(*HTMLTokenizer) (string, string) // since we are testing internal state, we need a function that can look inside the tokenizer
}

// TestParseStatefulness feeds a few runes to the state machine, without the
// EOF handlers, and checks what the token builder collected.
func TestParseStatefulness(t *testing.T) {
	parserStatefulnessTestCases := []parserStatefulnessTestCase{
		{"&", dataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), dataState.String() }},
		{"&", rcDataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), rcDataState.String() }},
		{"b", tagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "b" }},
		{"ba", tagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "ba" }},
		{"bAc", tagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "bac" }},
		{"bA\u0000c", tagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "ba\uFFFDc" }},
		{"P", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "p" }},
		{"1", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "1" }},
		{"\u0000", tagNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "\uFFFD" }},
		{"<", tagNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "<" }},
		{"\u0000", attributeValueDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "\uFFFD" }},
		{"A", attributeValueSingleQuotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "A" }},
		{"a`", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeValue.String(), "a`" }},
		{"&", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) {
			return p.returnState.String(), attributeValueUnquotedState.String()
		}},
		{"\u0000", bogusCommentState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "\uFFFD" }},
		{"3", commentStartDashState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "-3" }},
		{"<!", commentState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "<!" }},
		{"A", commentEndState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "--A" }},
		{"@", commentEndBangState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.data.String(), "--!@" }},
		{"A", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.name.String(), "a" }},
		{">", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return fmt.Sprintf("%t", p.tokenBuilder.forceQuirks), "true" }},
		{"22", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "34"
		}},
		{"FF", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "255"
		}},
		{"134", decimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "134"
		}},
		{"99999999999999999999", decimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%t", p.tokenBuilder.GetCharRef() > 0x10FFFF), "true"
		}},
	}

	for _, testcase := range parserStatefulnessTestCases {
		runParserStatefulnessTest(testcase, t)
	}
}

// helper function to paralleize the above tests
func runParserStatefulnessTest(testcase parserStatefulnessTestCase, t *testing.T) {
	testName := fmt.Sprintf("%s-%q", testcase.startState, testcase.inHTML)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer(testcase.inHTML, nil, nil)
		p.returnState = dataState
		state := testcase.startState
		for i, r := range testcase.inHTML {
			p.cur, p.pos = i, i+len(string(r))
			for reconsume := true; reconsume; {
				reconsume, state = p.stateToParser(state)(r, false)
			}
		}
		answer, expected := testcase.testFunc(p)
		assert.Equal(t, expected, answer)
	})
}

type tokenStreamTestCase struct {
	name         string
	in           string
	state        tokenizerState
	lastStartTag string
	opts         []Option
	want         []Token
	errs         []parseError
}

func chars(s string) Token {
	return Token{TokenType: characterToken, Data: s}
}

func startTagTok(name string, selfClosing bool, pairs ...string) Token {
	return Token{TokenType: startTagToken, TagName: name, SelfClosing: selfClosing, Attributes: dom.AttributesFrom(pairs...)}
}

func endTagTok(name string) Token {
	return Token{TokenType: endTagToken, TagName: name}
}

func TestTokenStream(t *testing.T) {
	eof := Token{TokenType: endOfFileToken}
	cases := []tokenStreamTestCase{
		{
			name: "element with text",
			in:   "<a href=x>hi</a>",
			want: []Token{startTagTok("a", false, "href", "x"), chars("hi"), endTagTok("a"), eof},
		},
		{
			name: "self closing",
			in:   "<br/>",
			want: []Token{startTagTok("br", true), eof},
		},
		{
			name: "named reference",
			in:   "a&amp;b",
			want: []Token{chars("a&b"), eof},
		},
		{
			name: "legacy reference without semicolon",
			in:   "&notit;",
			want: []Token{chars("\u00ACit;"), eof},
			errs: []parseError{missingSemicolonAfterCharacterReference},
		},
		{
			name: "unknown reference",
			in:   "&zzzz;",
			want: []Token{chars("&zzzz;"), eof},
			errs: []parseError{unknownNamedCharacterReference},
		},
		{
			name: "numeric references",
			in:   "&#x41;&#66;&#0;",
			want: []Token{chars("AB\uFFFD"), eof},
			errs: []parseError{nullCharacterReference},
		},
		{
			name: "windows-1252 remap",
			in:   "&#x80;",
			want: []Token{chars("\u20AC"), eof},
			errs: []parseError{controlCharacterReference},
		},
		{
			name: "comment",
			in:   "<!-- c -->",
			want: []Token{{TokenType: commentToken, Data: " c "}, eof},
		},
		{
			name: "abrupt empty comment",
			in:   "<!-->x",
			want: []Token{{TokenType: commentToken}, chars("x"), eof},
			errs: []parseError{abruptClosingOfEmptyComment},
		},
		{
			name: "doctype",
			in:   "<!DOCTYPE html>",
			want: []Token{{TokenType: docTypeToken, TagName: "html"}, eof},
		},
		{
			name: "doctype with identifiers",
			in:   `<!doctype html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`,
			want: []Token{{
				TokenType:        docTypeToken,
				TagName:          "html",
				PublicIdentifier: "-//W3C//DTD HTML 4.01//EN",
				SystemIdentifier: "http://www.w3.org/TR/html4/strict.dtd",
				HasPublicID:      true,
				HasSystemID:      true,
			}, eof},
		},
		{
			name: "cdata outside foreign content",
			in:   "<![CDATA[x]]>",
			want: []Token{{TokenType: commentToken, Data: "[CDATA[x]]"}, eof},
			errs: []parseError{cdataInHTMLContent},
		},
		{
			name:         "script data",
			in:           "if (a < b) {}</script>",
			state:        scriptDataState,
			lastStartTag: "script",
			want:         []Token{chars("if (a < b) {}"), endTagTok("script"), eof},
		},
		{
			name:         "script data keeps inappropriate end tags",
			in:           "</p></script>",
			state:        scriptDataState,
			lastStartTag: "script",
			want:         []Token{chars("</p>"), endTagTok("script"), eof},
		},
		{
			name:         "rcdata decodes references",
			in:           "a&lt;b</title>",
			state:        rcDataState,
			lastStartTag: "title",
			want:         []Token{chars("a<b"), endTagTok("title"), eof},
		},
		{
			name:         "rawtext",
			in:           "<b>&amp;</style>",
			state:        rawTextState,
			lastStartTag: "style",
			want:         []Token{chars("<b>&amp;"), endTagTok("style"), eof},
		},
		{
			name:  "plaintext",
			in:    "</plaintext>",
			state: plaintextState,
			want:  []Token{chars("</plaintext>"), eof},
		},
		{
			name: "null in data",
			in:   "a\u0000b",
			want: []Token{chars("a\u0000b"), eof},
			errs: []parseError{unexpectedNullCharacter},
		},
		{
			name: "ignore nulls",
			in:   "a\u0000b",
			opts: []Option{WithIgnoreNulls(true)},
			want: []Token{chars("ab"), eof},
		},
		{
			name: "ignore character references",
			in:   "a&amp;b<a title='&lt;'>",
			opts: []Option{WithIgnoreCharRefs(true)},
			want: []Token{chars("a&amp;b"), startTagTok("a", false, "title", "&lt;"), eof},
		},
		{
			name: "newline normalization",
			in:   "\uFEFFa\r\nb\rc",
			want: []Token{chars("a\nb\nc"), eof},
		},
		{
			name: "skip preprocess",
			in:   "a\r\nb",
			opts: []Option{WithSkipPreprocess(true)},
			want: []Token{chars("a\r\nb"), eof},
		},
		{
			name: "duplicate attribute",
			in:   "<a x=1 x=2>",
			want: []Token{startTagTok("a", false, "x", "1"), eof},
			errs: []parseError{duplicateAttribute},
		},
		{
			name: "end tag with attributes",
			in:   "</a x=1>",
			want: []Token{endTagTok("a"), eof},
			errs: []parseError{endTagWithAttributes},
		},
		{
			name: "eof in tag",
			in:   "a<div",
			want: []Token{chars("a"), eof},
			errs: []parseError{eofInTag},
		},
		{
			name: "lone less-than",
			in:   "1 < 2",
			want: []Token{chars("1 < 2"), eof},
			errs: []parseError{invalidFirstCharacterOfTagName},
		},
	}
	for _, tt := range cases {
		runTokenStreamTest(tt, t)
	}
}

func runTokenStreamTest(tt tokenStreamTestCase, t *testing.T) {
	t.Run(tt.name, func(t *testing.T) {
		t.Parallel()
		got, errs := tokenize(t, tt.in, tt.state, tt.lastStartTag, tt.opts...)
		if diff := cmp.Diff(tt.want, got, tokenCmp); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, tt.errs, errs)
	})
}

func TestTokenPositions(t *testing.T) {
	t.Parallel()
	in := "ab<p class=x>c</p>"
	tokens, _ := tokenize(t, in, dataState, "")
	require.Len(t, tokens, 5)
	for _, tok := range tokens[:4] {
		switch tok.TokenType {
		case characterToken:
			assert.Equal(t, tok.Data, in[tok.Pos:tok.Pos+tok.Len])
		default:
			assert.True(t, strings.HasPrefix(in[tok.Pos:], "<"), "token %s at %d", tok.TokenType, tok.Pos)
			assert.True(t, strings.HasSuffix(in[:tok.Pos+tok.Len], ">"), "token %s ends at %d", tok.TokenType, tok.Pos+tok.Len)
		}
	}
	assert.Equal(t, len(in), tokens[4].Pos)
}

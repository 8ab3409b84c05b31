package parser

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/heathj/gotidy/parser/dom"
	"github.com/heathj/gotidy/parser/serializer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type normalizeTest struct {
	name     string
	in       string
	opts     []Option
	document bool
	expected string
}

func compat() Option {
	return func(c *htmlParserConfig) {
		WithFormatter(serializer.NewCompatFormatter(false))(c)
		WithIgnoreCharRefs(true)(c)
	}
}

var normalizeTests = []normalizeTest{
	{name: "implied p end", in: "<p>One<p>Two", expected: "<p>One</p><p>Two</p>"},
	{name: "misnested formatting", in: "<b>1<p>2</b>3</p>", expected: "<b>1</b><p><b>2</b>3</p>"},
	{name: "foster parenting", in: "<table><b>X</b></table>", expected: "<b>X</b><table></table>"},
	{name: "implied tbody", in: "<table><tr><td>1</table>", expected: "<table><tbody><tr><td>1</td></tr></tbody></table>"},
	{name: "reconstruction", in: "<p><b>x</p><div>y</div>z", expected: "<p><b>x</b></p><div><b>y</b></div><b>z</b>"},
	{
		name:     "reconstruction guard",
		in:       "<p><b>x</p><div>y</div>z",
		opts:     []Option{WithReconstructionGuard(SuppressInside("div"))},
		expected: "<p><b>x</b></p><div>y</div><b>z</b>",
	},
	{name: "void elements", in: "a<br>b<img src=x>", expected: `a<br>b<img src="x">`},
	{name: "escaping", in: `<a title='"1" & 2'>x &lt; y &amp;&nbsp;z</a>`, expected: `<a title="&quot;1&quot; &amp; 2">x &lt; y &amp;&nbsp;z</a>`},
	{name: "raw text round trip", in: "<script>if (a < b && c) {}</script><style>p > a {}</style>", expected: "<script>if (a < b && c) {}</script><style>p > a {}</style>"},
	{name: "comment", in: "a<!-- b -->c", expected: "a<!-- b -->c"},
	{name: "svg", in: `<svg viewbox="0 0 1 1"><path/></svg>`, expected: `<svg viewBox="0 0 1 1"><path/></svg>`},
	{name: "pre keeps leading newline", in: "<pre>\n\nx</pre>", expected: "<pre>\n\nx</pre>"},
	{name: "duplicate attribute keeps first", in: "<p a=1 a=2>x", expected: `<p a="1">x</p>`},
	{
		name:     "whole document",
		in:       "<!DOCTYPE html><title>t</title>x",
		document: true,
		expected: "<!DOCTYPE html><html><head><title>t</title></head><body>x</body></html>",
	},
	{
		name:     "empty document",
		document: true,
		expected: "<html><head></head><body></body></html>",
	},
	{
		name:     "depth limit",
		in:       "<div><div><div><div>x",
		opts:     []Option{WithMaxDepth(3)},
		expected: "<div><div>x</div></div>",
	},
	{
		name:     "paragraph wrapping",
		in:       "a<div>b</div>c",
		opts:     []Option{WithParagraphWrapping()},
		expected: "<p>a</p><div>b</div><p>c</p>",
	},
	{
		name:     "paragraph wrapping skips blank text",
		in:       " <div>b</div> ",
		opts:     []Option{WithParagraphWrapping()},
		expected: " <div>b</div> ",
	},
	{
		name:     "paragraph wrapping in blockquote",
		in:       "<blockquote>a<p>b</p></blockquote>",
		opts:     []Option{WithParagraphWrapping()},
		expected: "<blockquote><p>a</p><p>b</p></blockquote>",
	},
	{
		name:     "compat marks empty elements",
		in:       "<p></p><p>x</p><ul><li> </ul>",
		opts:     []Option{compat()},
		expected: `<p class="empty"></p><p>x</p><ul><li class="empty"> </li></ul>`,
	},
	{
		name:     "compat keeps references",
		in:       "a &amp; b\u00a0c",
		opts:     []Option{compat()},
		expected: "a &amp; b&#160;c",
	},
	{
		name:     "compat drops wrapper around blocks",
		in:       "<b><div>x</div></b>",
		opts:     []Option{compat(), WithParagraphWrapping()},
		expected: "<b><div>x</div></b>",
	},
	{
		name:     "wrapper around blocks without compat",
		in:       "<b><div>x</div></b>",
		opts:     []Option{WithParagraphWrapping()},
		expected: "<b><div>x</div></b>",
	},
	{
		name:     "wrapper for foster parented content",
		in:       "<table>foo<tr>bar<td>baz</table>",
		opts:     []Option{WithParagraphWrapping()},
		expected: "<p>foobar</p><table><tbody><tr><td>baz</td></tr></tbody></table>",
	},
	{
		name:     "wrapper moved by adoption",
		in:       "<b><blockquote>x</b>y",
		opts:     []Option{WithParagraphWrapping()},
		expected: "<p><b></b></p><blockquote><p><b>x</b>y</p></blockquote>",
	},
	{
		name:     "plaintext runs to the end",
		in:       "<div><plaintext>a</b>&amp;",
		expected: "<div><plaintext>a</b>&amp;",
	},
	{
		name:     "ignore nulls",
		in:       "a\x00b",
		opts:     []Option{WithIgnoreNulls(true)},
		expected: "ab",
	},
}

func TestNormalize(t *testing.T) {
	for _, test := range normalizeTests {
		runNormalizeTest(test, t)
	}
}

func runNormalizeTest(test normalizeTest, t *testing.T) {
	t.Run(test.name, func(t *testing.T) {
		t.Parallel()
		var (
			out string
			err error
		)
		if test.document {
			out, err = NormalizeDocument(test.in, test.opts...)
		} else {
			out, err = Normalize(test.in, test.opts...)
		}
		require.NoError(t, err)
		assert.Equal(t, test.expected, out)
	})
}

var idempotentInputs = []string{
	"<p>One<p>Two",
	"<b>1<p>2</b>3</p>",
	"<table><b>X</b><tr><td>a<td>b</table>",
	"<table><b>X</b></table>",
	"<table>foo<tr>bar<td>baz</table>",
	"<table><input>",
	"<table><tbody><td>x</tbody>y",
	"<table><caption>c</caption><colgroup><col></colgroup><tr><td>x</table>",
	"<table><tr><td>a</td></tr></table><b>x</b>",
	"<a><p>X<a>Y</a>Z</p></a>",
	"<a>1<div>2</a>3</div>",
	"<i>a<b>b</i>c</b>",
	"<b><blockquote>x</b>y",
	"<b><div>x</div></b>",
	"<p><b>x</p><div>y</div>z",
	"<button><p>a</button>b",
	"<object><p>x</object>y",
	`<svg><foreignObject><p>x</svg>`,
	`<svg><path/><circle r=1></circle></svg>`,
	"<math><mi>x</mi></math>",
	"<ul><li>a<li>b<li><ol><li>c</ol></ul>",
	"<li>a<li>b",
	"<dl><dt>a<dd>b</dl>",
	"<h1>a<h2>b",
	"<select><option>a<option>b</select>",
	"<form><input></form>",
	"<template><td>x</template>",
	"<ruby>a<rt>b</ruby>",
	"<pre>\n\nx</pre>",
	"<textarea>\nx</textarea>",
	"<div><plaintext>a</b>",
	"a<div>b</div>c",
	" <div>b</div> ",
	"<blockquote>a<p>b</p></blockquote>",
	"x<!--c-->y",
	"<p></p><ul><li> </ul>",
	`<a href="&amp;x">&lt;y</a>`,
}

func TestNormalizeIdempotent(t *testing.T) {
	optionSets := []struct {
		name string
		opts []Option
	}{
		{"html", nil},
		{"wrapped", []Option{WithParagraphWrapping()}},
		{"compat", []Option{compat()}},
		{"compat wrapped", []Option{compat(), WithParagraphWrapping()}},
	}
	for _, set := range optionSets {
		set := set
		for _, in := range idempotentInputs {
			in := in
			t.Run(set.name+"/"+in, func(t *testing.T) {
				t.Parallel()
				once, err := Normalize(in, set.opts...)
				require.NoError(t, err)
				twice, err := Normalize(once, set.opts...)
				require.NoError(t, err)
				assert.Equal(t, once, twice)
			})
		}
	}
}

func TestDeepFormattingStaysBalanced(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("<b><i>", 10000) + "x"
	out, err := Normalize(in, WithMaxDepth(0))
	require.NoError(t, err)
	assert.Equal(t, 10000, strings.Count(out, "<b>"))
	assert.Equal(t, 10000, strings.Count(out, "</b>"))
	assert.Equal(t, 10000, strings.Count(out, "<i>"))
	assert.Equal(t, 10000, strings.Count(out, "</i>"))
	assert.True(t, strings.HasSuffix(out, "x"+strings.Repeat("</i></b>", 10000)))
}

func TestManyMisnestedAnchors(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("<a>x<div>", 2000)
	out, err := Normalize(in, WithMaxDepth(0))
	require.NoError(t, err)
	assert.Equal(t, strings.Count(out, "<a>"), strings.Count(out, "</a>"))
	assert.Equal(t, 2000, strings.Count(out, "<div>"))
}

func TestDefaultDepthLimit(t *testing.T) {
	t.Parallel()
	p, out := parseWith(t, strings.Repeat("<div>", DefaultMaxDepth+10))
	// The fragment root takes one level.
	assert.Equal(t, DefaultMaxDepth-1, strings.Count(out, "<div>"))
	assert.Equal(t, DefaultMaxDepth-1, strings.Count(out, "</div>"))
	assert.Equal(t, 11, count(p.Diagnostics(), nestingTooDeep))
}

// normalizeTime returns the best of three runs.
func normalizeTime(t *testing.T, in string) time.Duration {
	t.Helper()
	best := time.Duration(math.MaxInt64)
	for k := 0; k < 3; k++ {
		start := time.Now()
		_, err := Normalize(in, WithMaxDepth(0))
		require.NoError(t, err)
		if d := time.Since(start); d < best {
			best = d
		}
	}
	return best
}

func TestDeepInputsScaleLinearly(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	units := []struct {
		name string
		unit string
	}{
		{"blocks", "<div>"},
		{"inline", "<span>"},
		{"paragraphs", "<p><span>x"},
		{"misnested", "<a>1<b>2<div>3<i>4</a>5</b>6</i>"},
	}
	const n = 2000
	for _, u := range units {
		small := normalizeTime(t, strings.Repeat(u.unit, n))
		large := normalizeTime(t, strings.Repeat(u.unit, 4*n))
		assert.Less(t, int64(large), int64(10*small+10*time.Millisecond), u.name)
	}
}

func parseWith(t *testing.T, in string, opts ...Option) (*Parser, string) {
	t.Helper()
	p, err := NewParser(in, append([]Option{WithFragmentContext("html", "body")}, opts...)...)
	require.NoError(t, err)
	s := serializer.New(serializer.NewHTMLFormatter(false))
	require.NoError(t, p.Parse(s))
	return p, s.String()
}

func codes(ds []Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func count(ds []Diagnostic, code parseError) int {
	n := 0
	for _, d := range ds {
		if d.Code == string(code) {
			n++
		}
	}
	return n
}

func TestUnexpectedToken(t *testing.T) {
	cases := []struct {
		name string
		tok  Token
		want parseError
	}{
		{"start tag", Token{TokenType: startTagToken}, unexpectedStartTag},
		{"end tag", Token{TokenType: endTagToken}, unexpectedEndTag},
		{"character", Token{TokenType: characterToken}, unexpectedCharacter},
		{"comment", Token{TokenType: commentToken}, unexpectedComment},
		{"doctype", Token{TokenType: docTypeToken}, unexpectedDoctype},
		{"end of file", Token{TokenType: endOfFileToken}, noError},
	}
	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, unexpectedToken(&tt.tok))
		})
	}
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()
	p, out := parseWith(t, "<p a=1 a=2>x")
	assert.Equal(t, `<p a="1">x</p>`, out)
	assert.Equal(t, 1, count(p.Diagnostics(), duplicateAttribute))
	for _, d := range p.Diagnostics() {
		assert.Contains(t, d.String(), d.Code)
	}
}

func TestDiagnosticsFromBothStages(t *testing.T) {
	t.Parallel()
	p, _ := parseWith(t, "</b>a\x00<p a a>")
	assert.Subset(t, codes(p.Diagnostics()), []string{
		string(unexpectedEndTag),
		string(unexpectedNullCharacter),
		string(duplicateAttribute),
	})
}

func TestIgnoreErrors(t *testing.T) {
	t.Parallel()
	in := "<table><b>X</b><p a a></table></i>"
	loud, loudOut := parseWith(t, in)
	quiet, quietOut := parseWith(t, in, WithIgnoreErrors(true))
	assert.NotEmpty(t, loud.Diagnostics())
	assert.Empty(t, quiet.Diagnostics())
	assert.Equal(t, loudOut, quietOut)
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()
	var seen []Diagnostic
	p, _ := parseWith(t, "<p a a></i>", WithErrorHandler(func(d Diagnostic) {
		seen = append(seen, d)
	}))
	assert.Equal(t, p.Diagnostics(), seen)
}

func TestDepthLimitReported(t *testing.T) {
	t.Parallel()
	p, _ := parseWith(t, "<div><div><div><div>x", WithMaxDepth(3))
	assert.Equal(t, 2, count(p.Diagnostics(), nestingTooDeep))
}

func TestParserErrors(t *testing.T) {
	t.Parallel()
	p, err := NewParser("x")
	require.NoError(t, err)
	assert.Equal(t, ErrNilHandler, p.Parse(nil))
	require.NoError(t, p.Parse(dom.NewBuilder()))
	assert.Equal(t, ErrAlreadyParsed, p.Parse(dom.NewBuilder()))
}

func TestInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
	}{
		{"unknown namespace", []Option{WithFragmentContext("bogus", "div")}},
		{"empty context", []Option{WithFragmentContext("html", "")}},
		{"negative depth", []Option{WithMaxDepth(-1)}},
		{"nil logger", []Option{WithLogger(nil)}},
		{"references escaped twice", []Option{WithIgnoreCharRefs(true)}},
		{"compat with decoded references", []Option{WithFormatter(serializer.NewCompatFormatter(false))}},
	}
	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize("x", tt.opts...)
			require.Error(t, err)
			assert.Equal(t, ErrInvalidConfig, errors.Cause(err))
		})
	}
}

func TestIgnoreCharRefsWithoutFormatter(t *testing.T) {
	t.Parallel()
	doc, err := ParseFragment("a &amp; b", "div", WithIgnoreCharRefs(true))
	require.NoError(t, err)
	assert.Equal(t, dump("#document-fragment", `| "a &amp; b"`), doc.String())
}

func TestParseFragmentContexts(t *testing.T) {
	t.Parallel()
	doc, err := ParseFragment("<td>x", "tr")
	require.NoError(t, err)
	assert.Equal(t, dump("#document-fragment", "| <td>", `|   "x"`), doc.String())

	doc, err = ParseFragment("<option>a<option>b", "select")
	require.NoError(t, err)
	assert.Equal(t, dump(
		"#document-fragment",
		"| <option>",
		`|   "a"`,
		"| <option>",
		`|   "b"`,
	), doc.String())
}

func TestDebugLogging(t *testing.T) {
	t.Parallel()
	log := logrus.New()
	log.SetLevel(logrus.TraceLevel)
	var sb strings.Builder
	log.SetOutput(&sb)
	_, err := Normalize("<p a a>", WithLogger(log))
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "parse error")
	assert.Contains(t, sb.String(), "duplicate-attribute")
}

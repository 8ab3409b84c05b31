package parser

import (
	"github.com/heathj/gotidy/parser/dom"
	"github.com/heathj/gotidy/parser/serializer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Parser runs one parse of a buffered input. It is not safe for concurrent
// use and cannot be reused.
type Parser struct {
	config      htmlParserConfig
	input       string
	diagnostics []Diagnostic
	parsed      bool
}

// NewParser validates opts and returns a parser for input. No input is read
// until Parse.
func NewParser(input string, opts ...Option) (*Parser, error) {
	return newParser(input, newConfig(opts))
}

func newParser(input string, cfg htmlParserConfig) (*Parser, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Parser{config: cfg, input: input}, nil
}

// Progress is what the tree constructor hands back to the tokenizer after
// each token: an optional content model switch, and whether CDATA sections
// are recognized.
type Progress struct {
	TokenizerState *tokenizerState
	AllowCDATA     bool
}

// Parse tokenizes the input and sends the resulting tree mutations to h.
// Parse errors never stop the parse; they are collected as diagnostics.
func (p *Parser) Parse(h dom.TreeHandler) error {
	if h == nil {
		return ErrNilHandler
	}
	if p.parsed {
		return ErrAlreadyParsed
	}
	p.parsed = true

	tokenizer := NewHTMLTokenizer(p.input, &p.config, func(code parseError, pos int) {
		p.report(code, pos, "")
	})
	treeConstructor := NewHTMLTreeConstructor(&p.config, h, p.report)
	progress := treeConstructor.Start()
	for tokenizer.Next() {
		t := tokenizer.Token(progress)
		if t == nil {
			break
		}
		progress = treeConstructor.ProcessToken(t)
	}
	return nil
}

// Diagnostics returns the parse errors seen so far, in input order.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.diagnostics
}

func (p *Parser) report(code parseError, pos int, detail string) {
	if p.config.ignoreErrors {
		return
	}
	d := newDiagnostic(code, pos, detail)
	p.diagnostics = append(p.diagnostics, d)
	if p.config.onError != nil {
		p.config.onError(d)
	}
	if log := p.config.logger; log.IsLevelEnabled(logrus.DebugLevel) {
		log.WithFields(logrus.Fields{
			"code": d.Code,
			"pos":  d.Pos,
		}).Debug("parse error")
	}
}

// ParseDocument parses a whole document into a node tree.
func ParseDocument(input string, opts ...Option) (*dom.Node, error) {
	p, err := NewParser(input, opts...)
	if err != nil {
		return nil, err
	}
	b := dom.NewBuilder()
	if err := p.Parse(b); err != nil {
		return nil, err
	}
	return b.Document, nil
}

// ParseFragment parses input as the contents of an HTML element named
// context.
func ParseFragment(input, context string, opts ...Option) (*dom.Node, error) {
	return ParseDocument(input, append([]Option{WithFragmentContext("html", context)}, opts...)...)
}

// Normalize parses input as the contents of <body> and serializes the result
// with the configured formatter, an HTMLFormatter by default.
func Normalize(input string, opts ...Option) (string, error) {
	return normalize(input, append([]Option{WithFragmentContext("html", "body")}, opts...))
}

// NormalizeDocument is Normalize for a whole document.
func NormalizeDocument(input string, opts ...Option) (string, error) {
	return normalize(input, opts)
}

func normalize(input string, opts []Option) (string, error) {
	cfg := newConfig(opts)
	if cfg.formatter == nil {
		cfg.formatter = serializer.NewHTMLFormatter(cfg.scripting)
	}
	p, err := newParser(input, cfg)
	if err != nil {
		return "", err
	}
	s := serializer.New(cfg.formatter)
	var h dom.TreeHandler = s
	if len(cfg.wrapIn) > 0 {
		h = serializer.NewPWrapHandler(s, cfg.wrapIn...)
	}
	if err := p.Parse(h); err != nil {
		return "", errors.Wrap(err, "normalize")
	}
	return s.String(), nil
}

package parser

import (
	"github.com/heathj/gotidy/parser/dom"
	"github.com/heathj/gotidy/parser/serializer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type htmlParserConfig struct {
	ignoreErrors   bool
	ignoreNulls    bool
	ignoreCharRefs bool
	skipPreprocess bool
	scripting      bool
	fragment       *fragmentContext
	guard          ReconstructionGuard
	maxDepth       int
	logger         *logrus.Logger
	onError        func(Diagnostic)
	formatter      serializer.Formatter
	wrapIn         []string
}

type fragmentContext struct {
	namespace dom.Namespace
	name      string
	rawNS     string
}

// Option configures a Parser.
type Option func(*htmlParserConfig)

// WithIgnoreErrors suppresses diagnostics. Recovery is unchanged.
func WithIgnoreErrors(v bool) Option {
	return func(c *htmlParserConfig) { c.ignoreErrors = v }
}

// WithIgnoreNulls drops NUL code points from the input instead of
// replacing or reporting them.
func WithIgnoreNulls(v bool) Option {
	return func(c *htmlParserConfig) { c.ignoreNulls = v }
}

// WithIgnoreCharRefs leaves character references undecoded, for callers
// that decode them in a later pass.
func WithIgnoreCharRefs(v bool) Option {
	return func(c *htmlParserConfig) { c.ignoreCharRefs = v }
}

// WithSkipPreprocess skips newline normalization and BOM removal.
func WithSkipPreprocess(v bool) Option {
	return func(c *htmlParserConfig) { c.skipPreprocess = v }
}

// WithScripting sets the scripting flag, which changes how <noscript> parses.
func WithScripting(v bool) Option {
	return func(c *htmlParserConfig) { c.scripting = v }
}

// WithFragmentContext parses the input as the children of a context element.
// ns is "html", "svg", "math" or a namespace URI.
func WithFragmentContext(ns, name string) Option {
	return func(c *htmlParserConfig) {
		n, _ := dom.ParseNamespace(ns)
		c.fragment = &fragmentContext{namespace: n, name: name, rawNS: ns}
	}
}

// WithReconstructionGuard installs a predicate that defers reconstruction
// of active formatting elements while it returns true.
func WithReconstructionGuard(g ReconstructionGuard) Option {
	return func(c *htmlParserConfig) { c.guard = g }
}

// DefaultMaxDepth caps the stack of open elements unless WithMaxDepth says
// otherwise.
const DefaultMaxDepth = 4096

// WithMaxDepth caps the depth of the stack of open elements. Start tags that
// would exceed it are dropped. Zero means no limit.
func WithMaxDepth(n int) Option {
	return func(c *htmlParserConfig) { c.maxDepth = n }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *htmlParserConfig) { c.logger = l }
}

// WithErrorHandler is called with every diagnostic as it is produced.
func WithErrorHandler(f func(Diagnostic)) Option {
	return func(c *htmlParserConfig) { c.onError = f }
}

// WithFormatter selects the formatter used by Normalize.
func WithFormatter(f serializer.Formatter) Option {
	return func(c *htmlParserConfig) { c.formatter = f }
}

// WithParagraphWrapping makes Normalize wrap inline content of the given
// containers in paragraph wrappers. With no names, body and blockquote are
// used.
func WithParagraphWrapping(containers ...string) Option {
	return func(c *htmlParserConfig) {
		if len(containers) == 0 {
			containers = serializer.DefaultWrapContainers
		}
		c.wrapIn = containers
	}
}

func newConfig(opts []Option) htmlParserConfig {
	c := htmlParserConfig{logger: logrus.StandardLogger(), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// validate rejects option combinations that cannot work, before any input
// is read.
func (c *htmlParserConfig) validate() error {
	if c.fragment != nil {
		if c.fragment.name == "" {
			return errors.Wrap(ErrInvalidConfig, "fragment context needs an element name")
		}
		if c.fragment.namespace == dom.NoNamespace {
			return errors.Wrapf(ErrInvalidConfig, "unknown fragment namespace %q", c.fragment.rawNS)
		}
	}
	if c.maxDepth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative max depth %d", c.maxDepth)
	}
	if c.formatter != nil {
		if c.ignoreCharRefs && serializer.EscapesAmpersand(c.formatter) {
			return errors.Wrap(ErrInvalidConfig, "undecoded character references would be escaped twice; use a formatter that leaves & alone")
		}
		if !c.ignoreCharRefs && serializer.KeepsAmpersand(c.formatter) {
			return errors.Wrap(ErrInvalidConfig, "decoded text would be written with a bare &; enable IgnoreCharRefs or escape &")
		}
	}
	if c.logger == nil {
		return errors.Wrap(ErrInvalidConfig, "nil logger")
	}
	return nil
}

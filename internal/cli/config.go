package cli

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/gotidy/parser"
	"github.com/heathj/gotidy/parser/serializer"
)

// Output formats.
const (
	formatHTML   = "html"
	formatCompat = "compat"
	formatTree   = "tree"
	formatXML    = "xml"
)

// Config is the contents of a gotidy config file. Flags given on the
// command line override it.
type Config struct {
	Format         string   `toml:"format"`
	Document       bool     `toml:"document"`
	Fragment       string   `toml:"fragment"`
	Wrap           []string `toml:"wrap"`
	IgnoreErrors   bool     `toml:"ignore_errors"`
	IgnoreNulls    bool     `toml:"ignore_nulls"`
	IgnoreCharRefs bool     `toml:"ignore_char_refs"`
	SkipPreprocess bool     `toml:"skip_preprocess"`
	Scripting      bool     `toml:"scripting"`
	MaxDepth       int      `toml:"max_depth"`
	// SuppressReconstructionIn lists elements inside which active
	// formatting elements are not reopened.
	SuppressReconstructionIn []string `toml:"suppress_reconstruction_in"`
	EmptyMarker              string   `toml:"empty_marker"`
}

func defaultConfig() Config {
	return Config{
		Format:      formatHTML,
		MaxDepth:    parser.DefaultMaxDepth,
		EmptyMarker: serializer.DefaultEmptyMarker,
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// splitContext parses a fragment context of the form "name" or "ns:name".
func splitContext(s string) (ns, name string) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "html", s
}

// Options turns the config into parser options. Unless Document is set the
// input is parsed as a fragment, in body when no context is configured.
// The compat format always leaves character references undecoded.
func (c Config) Options(log *logrus.Logger) ([]parser.Option, error) {
	opts := []parser.Option{
		parser.WithLogger(log),
		parser.WithIgnoreErrors(c.IgnoreErrors),
		parser.WithIgnoreNulls(c.IgnoreNulls),
		parser.WithIgnoreCharRefs(c.IgnoreCharRefs),
		parser.WithSkipPreprocess(c.SkipPreprocess),
		parser.WithScripting(c.Scripting),
		parser.WithMaxDepth(c.MaxDepth),
	}
	if !c.Document {
		fragment := c.Fragment
		if fragment == "" {
			fragment = "body"
		}
		opts = append(opts, parser.WithFragmentContext(splitContext(fragment)))
	}
	if len(c.SuppressReconstructionIn) > 0 {
		opts = append(opts, parser.WithReconstructionGuard(parser.SuppressInside(c.SuppressReconstructionIn...)))
	}
	switch c.Format {
	case formatHTML, formatTree, formatXML:
	case formatCompat:
		f := serializer.NewCompatFormatter(c.Scripting)
		f.EmptyMarker = c.EmptyMarker
		opts = append(opts, parser.WithFormatter(f), parser.WithIgnoreCharRefs(true))
	default:
		return nil, errors.Errorf("unknown format %q", c.Format)
	}
	if len(c.Wrap) > 0 {
		opts = append(opts, parser.WithParagraphWrapping(c.Wrap...))
	}
	return opts, nil
}

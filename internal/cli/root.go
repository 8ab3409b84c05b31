// Package cli implements the gotidy command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heathj/gotidy/parser"
	"github.com/heathj/gotidy/parser/xmltree"
)

var (
	configPath  string
	verbose     bool
	diagnostics bool
	flagConfig  = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "gotidy [file]",
	Short: "Parse and normalize HTML",
	Long: `Parses HTML the way a browser does and writes it back out as clean,
well-formed markup. Reads standard input when no file is given.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML config file")
	f.BoolVarP(&verbose, "verbose", "v", false, "log parse errors and progress to stderr")
	f.BoolVar(&diagnostics, "diagnostics", false, "print parse errors to stderr")
	f.StringVarP(&flagConfig.Format, "format", "f", flagConfig.Format, "output format: html, compat, tree or xml")
	f.BoolVar(&flagConfig.Document, "document", false, "parse a whole document instead of a body fragment")
	f.StringVar(&flagConfig.Fragment, "fragment", "", "fragment context element, as name or ns:name")
	f.StringSliceVar(&flagConfig.Wrap, "wrap", nil, "wrap inline content of these elements in paragraphs")
	f.BoolVar(&flagConfig.IgnoreErrors, "ignore-errors", false, "do not collect parse errors")
	f.BoolVar(&flagConfig.IgnoreNulls, "ignore-nulls", false, "drop NUL characters")
	f.BoolVar(&flagConfig.IgnoreCharRefs, "ignore-char-refs", false, "leave character references undecoded")
	f.BoolVar(&flagConfig.SkipPreprocess, "skip-preprocess", false, "keep CR characters and a leading BOM")
	f.BoolVar(&flagConfig.Scripting, "scripting", false, "parse noscript as raw text")
	f.IntVar(&flagConfig.MaxDepth, "max-depth", flagConfig.MaxDepth, "maximum element nesting depth, 0 for none")
	f.StringSliceVar(&flagConfig.SuppressReconstructionIn, "suppress-reconstruction-in", nil,
		"elements inside which formatting elements are not reopened")
	f.StringVar(&flagConfig.EmptyMarker, "empty-marker", flagConfig.EmptyMarker, "class for blank p, li and tr in compat output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveConfig applies the flags that were set on top of the config file.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	if configPath == "" {
		return flagConfig, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("format", func() { cfg.Format = flagConfig.Format })
	set("document", func() { cfg.Document = flagConfig.Document })
	set("fragment", func() { cfg.Fragment = flagConfig.Fragment })
	set("wrap", func() { cfg.Wrap = flagConfig.Wrap })
	set("ignore-errors", func() { cfg.IgnoreErrors = flagConfig.IgnoreErrors })
	set("ignore-nulls", func() { cfg.IgnoreNulls = flagConfig.IgnoreNulls })
	set("ignore-char-refs", func() { cfg.IgnoreCharRefs = flagConfig.IgnoreCharRefs })
	set("skip-preprocess", func() { cfg.SkipPreprocess = flagConfig.SkipPreprocess })
	set("scripting", func() { cfg.Scripting = flagConfig.Scripting })
	set("max-depth", func() { cfg.MaxDepth = flagConfig.MaxDepth })
	set("suppress-reconstruction-in", func() { cfg.SuppressReconstructionIn = flagConfig.SuppressReconstructionIn })
	set("empty-marker", func() { cfg.EmptyMarker = flagConfig.EmptyMarker })
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return string(data), nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd)
	opts, err := cfg.Options(log)
	if err != nil {
		return err
	}
	if diagnostics {
		opts = append(opts, parser.WithErrorHandler(func(d parser.Diagnostic) {
			cmd.PrintErrln(d.String())
		}))
	}
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	out, err := render(cfg, input, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func render(cfg Config, input string, opts []parser.Option) (string, error) {
	switch cfg.Format {
	case formatTree:
		doc, err := parser.ParseDocument(input, opts...)
		if err != nil {
			return "", err
		}
		return doc.String(), nil
	case formatXML:
		p, err := parser.NewParser(input, opts...)
		if err != nil {
			return "", err
		}
		h := xmltree.New()
		if err := p.Parse(h); err != nil {
			return "", err
		}
		return h.String()
	}
	if cfg.Document {
		return parser.NormalizeDocument(input, opts...)
	}
	return parser.Normalize(input, opts...)
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/heathj/gotidy/parser"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with fresh flag state.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	flagConfig = defaultConfig()
	configPath, verbose, diagnostics = "", false, false
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "gotidy [file]", rootCmd.Use)
}

func TestRootCmd_NormalizesStdin(t *testing.T) {
	out, _, err := execute(t, "<p>One<p>Two")
	require.NoError(t, err)
	assert.Equal(t, "<p>One</p><p>Two</p>\n", out)
}

func TestRootCmd_Document(t *testing.T) {
	out, _, err := execute(t, "<title>t</title>x", "--document")
	require.NoError(t, err)
	assert.Equal(t, "<html><head><title>t</title></head><body>x</body></html>\n", out)
}

func TestRootCmd_TreeFromFile(t *testing.T) {
	path := writeFile(t, "in.html", "<td>x")
	out, _, err := execute(t, "", "--format", "tree", "--fragment", "tr", path)
	require.NoError(t, err)
	assert.Equal(t, "#document-fragment\n| <td>\n|   \"x\"\n", out)
}

func TestRootCmd_ForeignFragment(t *testing.T) {
	out, _, err := execute(t, "<path/>", "-f", "tree", "--fragment", "svg:svg")
	require.NoError(t, err)
	assert.Equal(t, "#document-fragment\n| <svg path>\n", out)
}

func TestRootCmd_Compat(t *testing.T) {
	out, _, err := execute(t, "a<p></p>", "-f", "compat", "--empty-marker", "blank")
	require.NoError(t, err)
	assert.Equal(t, "a<p class=\"blank\"></p>\n", out)
}

func TestRootCmd_CompatKeepsReferences(t *testing.T) {
	out, _, err := execute(t, "<p>&amp;amp;</p>", "-f", "compat")
	require.NoError(t, err)
	assert.Equal(t, "<p>&amp;amp;</p>\n", out)
}

func TestRootCmd_MaxDepthDefault(t *testing.T) {
	assert.Equal(t, strconv.Itoa(parser.DefaultMaxDepth), rootCmd.Flags().Lookup("max-depth").DefValue)
	assert.Equal(t, parser.DefaultMaxDepth, defaultConfig().MaxDepth)
}

func TestRootCmd_Wrap(t *testing.T) {
	out, _, err := execute(t, "a<div>b</div>", "--wrap", "body")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p><div>b</div>\n", out)
}

func TestRootCmd_XML(t *testing.T) {
	out, _, err := execute(t, "<p>x", "-f", "xml", "--document")
	require.NoError(t, err)
	assert.Contains(t, out, `<html xmlns="http://www.w3.org/1999/xhtml">`)
	assert.Contains(t, out, "<p>x</p>")
}

func TestRootCmd_Guard(t *testing.T) {
	out, _, err := execute(t, "<p><b>x</p><div>y</div>z", "--suppress-reconstruction-in", "div")
	require.NoError(t, err)
	assert.Equal(t, "<p><b>x</b></p><div>y</div><b>z</b>\n", out)
}

func TestRootCmd_Diagnostics(t *testing.T) {
	_, errOut, err := execute(t, "<p a a>", "--diagnostics")
	require.NoError(t, err)
	assert.Contains(t, errOut, "duplicate-attribute")

	_, errOut, err = execute(t, "<p a a>", "--diagnostics", "--ignore-errors")
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	path := writeFile(t, "gotidy.toml", `
format = "compat"
wrap = ["body"]
empty_marker = "nothing"
`)
	out, _, err := execute(t, "a<p></p>", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p><p class=\"nothing\"></p>\n", out)

	out, _, err = execute(t, "a<p></p>", "--config", path, "--format", "html")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p><p></p>\n", out)
}

func TestRootCmd_Errors(t *testing.T) {
	_, _, err := execute(t, "x", "--format", "pdf")
	assert.ErrorContains(t, err, `unknown format "pdf"`)

	_, _, err = execute(t, "x", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	_, _, err = execute(t, "x", "--max-depth=-1")
	assert.ErrorContains(t, err, "invalid parser configuration")

	_, _, err = execute(t, "", "a", "b")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "gotidy.toml", `
document = true
max_depth = 64
suppress_reconstruction_in = ["div", "td"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	want := defaultConfig()
	want.Document = true
	want.MaxDepth = 64
	want.SuppressReconstructionIn = []string{"div", "td"}
	assert.Equal(t, want, cfg)

	bad := writeFile(t, "bad.toml", "format = ")
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "parse config")
}

func TestSplitContext(t *testing.T) {
	ns, name := splitContext("svg:foreignObject")
	assert.Equal(t, "svg", ns)
	assert.Equal(t, "foreignObject", name)

	ns, name = splitContext("td")
	assert.Equal(t, "html", ns)
	assert.Equal(t, "td", name)
}

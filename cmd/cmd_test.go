package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/cmd"
	"github.com/storacha/redirector/pkg/build"
	"github.com/storacha/redirector/pkg/redirect"
)

const doc = `{
  "docs": {"target": "https://example.com/docs", "type": "permanent"},
  "odd": {"target": "https://example.com/odd", "type": "sideways"}
}`

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	app := &cli.App{
		Name:   "redirector",
		Writer: &out,
		Commands: []*cli.Command{
			cmd.ResolveCmd,
			cmd.ValidateCmd,
			cmd.ImportCmd,
			cmd.VersionCmd,
		},
	}
	err := app.Run(append([]string{"redirector"}, args...))
	return out.String(), err
}

func writeDoc(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "redirects.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCmd(t *testing.T) {
	path := writeDoc(t, doc)

	out, err := run(t, "validate", path)
	require.NoError(t, err)
	require.Contains(t, out, `slug "odd" has unrecognised type "sideways"`)
	require.Contains(t, out, "ok: 2 slugs")

	_, err = run(t, "validate", "--strict", path)
	require.Error(t, err)

	_, err = run(t, "validate", writeDoc(t, `{"docs": {}}`))
	require.ErrorIs(t, err, redirect.ErrMalformedMapping)
}

func TestResolveCmd(t *testing.T) {
	path := writeDoc(t, doc)

	out, err := run(t, "resolve", "--source", "file", "--file", path, "/docs", "/odd", "/missing", "/")
	require.NoError(t, err)
	require.Contains(t, out, "/docs\n301 Moved Permanently\nCache-Control: max-age=300\nLocation: https://example.com/docs\n")
	require.Contains(t, out, "/odd\n302 Found\n")
	require.Contains(t, out, "/missing\n404 Not Found\n")
	require.Contains(t, out, "Personal Redirect Service")

	_, err = run(t, "resolve", "--source", "file", "--file", path)
	require.Error(t, err)
}

func TestImportCmd(t *testing.T) {
	path := writeDoc(t, doc)
	dataDir := filepath.Join(t.TempDir(), "datastore")

	out, err := run(t, "import", "--data-dir", dataDir, path)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2 slugs")

	out, err = run(t, "resolve", "--source", "datastore", "--data-dir", dataDir, "/docs")
	require.NoError(t, err)
	require.Contains(t, out, "301 Moved Permanently")

	_, err = run(t, "import", "--data-dir", dataDir, writeDoc(t, `[]`))
	require.ErrorIs(t, err, redirect.ErrMalformedMapping)
}

func TestUnknownTypes(t *testing.T) {
	m := redirect.Mapping{
		"a": {Target: "/a", Type: "weird"},
		"b": {Target: "/b"},
		"c": {Target: "/c", Type: "PERMANENT"},
		"d": {Target: "/d", Type: "999"},
	}
	require.Equal(t, []string{"a", "d"}, cmd.UnknownTypes(m))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "redirector "+build.Version)
	require.Contains(t, out, "/"+build.ConfigKey)

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	require.Equal(t, build.Version+"\n", out)
}
